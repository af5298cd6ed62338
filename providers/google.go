package providers

import (
	"context"
	"net/http"
	"net/url"
	"os"
	"strings"

	"golang.org/x/oauth2/google"

	"github.com/panyam/authcode"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// GoogleExtension adds Google's scopes to the authorization redirect and
// fetches the userinfo profile.
type GoogleExtension struct {
	authcode.BaseExtension

	Scopes []string

	// UserInfoURL defaults to Google's userinfo endpoint. Overridable for
	// testing.
	UserInfoURL string

	HTTPClient *http.Client
}

func (g *GoogleExtension) AuthorizationParams(*http.Request) url.Values {
	if len(g.Scopes) == 0 {
		return nil
	}
	return url.Values{"scope": {strings.Join(g.Scopes, " ")}}
}

func (g *GoogleExtension) FetchProfile(ctx context.Context, token *authcode.TokenResult) (*authcode.Profile, error) {
	userInfo, err := fetchUserInfo(ctx, g.HTTPClient, g.UserInfoURL, token.AccessToken)
	if err != nil {
		return nil, err
	}

	profile := &authcode.Profile{
		Provider:    "google",
		ID:          stringField(userInfo, "id"),
		DisplayName: stringField(userInfo, "name"),
		Raw:         userInfo,
	}
	if profile.ID == "" {
		profile.ID = stringField(userInfo, "sub")
	}
	if email := stringField(userInfo, "email"); email != "" {
		profile.Emails = []authcode.ProfileEmail{{Value: email, Type: "account"}}
	}
	if picture := stringField(userInfo, "picture"); picture != "" {
		profile.Photos = []authcode.ProfilePhoto{{Value: picture}}
	}
	return profile, nil
}

// NewGoogle builds a Google strategy. Empty credentials fall back to the
// OAUTH2_GOOGLE_* environment variables.
func NewGoogle(clientId string, clientSecret string, callbackUrl string, verify authcode.VerifyFunc) *authcode.Strategy {
	if clientId == "" {
		clientId = strings.TrimSpace(os.Getenv("OAUTH2_GOOGLE_CLIENT_ID"))
	}
	if clientSecret == "" {
		clientSecret = strings.TrimSpace(os.Getenv("OAUTH2_GOOGLE_CLIENT_SECRET"))
	}
	if callbackUrl == "" {
		callbackUrl = strings.TrimSpace(os.Getenv("OAUTH2_GOOGLE_CALLBACK_URL"))
	}

	strategy := authcode.NewStrategy(authcode.Config{
		AuthorizationURL: google.Endpoint.AuthURL,
		TokenURL:         google.Endpoint.TokenURL,
		ClientID:         clientId,
		ClientSecret:     clientSecret,
		CallbackURL:      callbackUrl,
	}, verify)
	strategy.Name = "google"
	strategy.Extension = &GoogleExtension{
		Scopes: []string{
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		UserInfoURL: googleUserInfoURL,
	}
	return strategy
}
