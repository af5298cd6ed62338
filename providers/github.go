package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"

	"golang.org/x/oauth2/github"

	"github.com/panyam/authcode"
)

const githubUserInfoURL = "https://api.github.com/user"

// GithubExtension adds GitHub's scopes to the authorization redirect and
// fetches the user profile from the GitHub API.
type GithubExtension struct {
	authcode.BaseExtension

	Scopes []string

	// UserInfoURL defaults to GitHub's user endpoint. Overridable for
	// testing.
	UserInfoURL string

	HTTPClient *http.Client
}

func (g *GithubExtension) AuthorizationParams(*http.Request) url.Values {
	if len(g.Scopes) == 0 {
		return nil
	}
	return url.Values{"scope": {strings.Join(g.Scopes, " ")}}
}

func (g *GithubExtension) FetchProfile(ctx context.Context, token *authcode.TokenResult) (*authcode.Profile, error) {
	userInfo, err := fetchUserInfo(ctx, g.HTTPClient, g.UserInfoURL, token.AccessToken)
	if err != nil {
		return nil, err
	}

	profile := &authcode.Profile{
		Provider:    "github",
		DisplayName: stringField(userInfo, "name"),
		Name:        stringField(userInfo, "login"),
		Raw:         userInfo,
	}
	// GitHub ids are numbers; normalize to a string subject.
	if id, ok := userInfo["id"]; ok {
		profile.ID = fmt.Sprintf("%v", id)
	}
	if email := stringField(userInfo, "email"); email != "" {
		profile.Emails = []authcode.ProfileEmail{{Value: email}}
	}
	if avatar := stringField(userInfo, "avatar_url"); avatar != "" {
		profile.Photos = []authcode.ProfilePhoto{{Value: avatar}}
	}
	return profile, nil
}

// NewGithub builds a GitHub strategy. Empty credentials fall back to the
// OAUTH2_GITHUB_* environment variables.
func NewGithub(clientId string, clientSecret string, callbackUrl string, verify authcode.VerifyFunc) *authcode.Strategy {
	if clientId == "" {
		clientId = strings.TrimSpace(os.Getenv("OAUTH2_GITHUB_CLIENT_ID"))
	}
	if clientSecret == "" {
		clientSecret = strings.TrimSpace(os.Getenv("OAUTH2_GITHUB_CLIENT_SECRET"))
	}
	if callbackUrl == "" {
		callbackUrl = strings.TrimSpace(os.Getenv("OAUTH2_GITHUB_CALLBACK_URL"))
	}

	strategy := authcode.NewStrategy(authcode.Config{
		AuthorizationURL: github.Endpoint.AuthURL,
		TokenURL:         github.Endpoint.TokenURL,
		ClientID:         clientId,
		ClientSecret:     clientSecret,
		CallbackURL:      callbackUrl,
	}, verify)
	strategy.Name = "github"
	strategy.Extension = &GithubExtension{
		Scopes:      []string{"read:user", "user:email"},
		UserInfoURL: githubUserInfoURL,
	}
	return strategy
}
