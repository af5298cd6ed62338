package authcode

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"
)

// Auth mounts authentication strategies on a router and owns what happens
// after a strategy resolves a user in-process: writing the logged-in user
// into the session, issuing a signed auth-token cookie, and logout.
type Auth struct {
	router *mux.Router

	// Sessions resolves the Session capability for each request. Must be
	// set before any strategy handles traffic.
	Sessions SessionProvider

	Middleware Middleware

	// Optional name used as a prefix for the derived defaults below.
	AppName string

	// Name of the session variable (and cookie) where the auth token is
	// stored.
	AuthTokenSessionVar string

	// All the domains the auth token cookies are set on at login/logout.
	CookieDomains []string

	// JWT related fields
	JwtIssuer    string
	JWTSecretKey string

	// How long a login is valid for. Defaults to 1 day.
	SessionTimeoutInSeconds int
}

func New(appName string) *Auth {
	return (&Auth{AppName: appName}).EnsureDefaults()
}

func (a *Auth) EnsureDefaults() *Auth {
	if a.AppName == "" {
		a.AppName = "Authcode"
	}
	if a.SessionTimeoutInSeconds <= 0 {
		a.SessionTimeoutInSeconds = 86400
	}
	if a.JwtIssuer == "" {
		a.JwtIssuer = fmt.Sprintf("%s-Issuer", a.AppName)
	}
	if a.AuthTokenSessionVar == "" {
		a.AuthTokenSessionVar = fmt.Sprintf("%sAuthToken", a.AppName)
	}
	if a.JWTSecretKey == "" {
		a.JWTSecretKey = strings.TrimSpace(os.Getenv("AUTHCODE_JWT_SECRET_KEY"))
	}
	if a.Middleware.AuthTokenCookieName == "" {
		a.Middleware.AuthTokenCookieName = a.AuthTokenSessionVar
	}
	if a.Middleware.VerifyToken == nil {
		a.Middleware.VerifyToken = a.verifyJWT
	}
	if a.Middleware.SessionGetter == nil && a.Sessions != nil {
		a.Middleware.SessionGetter = func(r *http.Request, param string) any {
			v, _ := a.Sessions(r).Get(param)
			return v
		}
	}
	a.Middleware.EnsureReasonableDefaults()
	return a
}

// Handler returns the root handler serving every mounted strategy plus
// /logout.
func (a *Auth) Handler() http.Handler {
	return a.setupRoutes().router
}

// AddStrategy mounts a strategy under the given path prefix, e.g.
// AddStrategy("/google", strategy) serves /google and /google/callback. The
// strategy's redirect and error outcomes go straight to the response; a user
// outcome finishes the login here.
func (a *Auth) AddStrategy(prefix string, strategy *Strategy) *Auth {
	a.setupRoutes()
	a.EnsureDefaults()
	prefix = strings.TrimSuffix(prefix, "/")
	a.router.PathPrefix(prefix).HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.Sessions == nil {
			http.Error(w, "no session provider configured", http.StatusInternalServerError)
			return
		}
		sess := a.Sessions(r)
		outcome := strategy.Authenticate(r, sess)
		if outcome.Write(w, r) {
			return
		}
		a.finishLogin(outcome.User, sess, w, r)
	})
	return a
}

func (a *Auth) setupRoutes() *Auth {
	if a.router == nil {
		a.router = mux.NewRouter()
		a.router.HandleFunc("/logout", a.onLogout)
	}
	return a
}

// finishLogin handles a user outcome from a strategy with no
// SuccessRedirect configured: issue the auth token, then send the browser
// back to where it wanted to be.
func (a *Auth) finishLogin(user User, sess Session, w http.ResponseWriter, r *http.Request) {
	to := r.URL.Query().Get("to")
	if to == "" {
		if v, ok := sess.Get(SessionKeyReturnTo); ok {
			to, _ = v.(string)
			sess.Unset(SessionKeyReturnTo)
		}
	}
	if to == "" {
		to = "/"
	}
	a.setLoggedInUser(user, w, r)
	http.Redirect(w, r, to, http.StatusFound)
}

func (a *Auth) onLogout(w http.ResponseWriter, r *http.Request) {
	a.setLoggedInUser(nil, w, r)
	to := r.URL.Query().Get("to")
	if to == "" {
		fmt.Fprintf(w, "Logged Out")
		return
	}
	http.Redirect(w, r, to, http.StatusFound)
}

func (a *Auth) verifyJWT(tokenString string) (loggedInUserId string, t any, err error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		return []byte(a.JWTSecretKey), nil
	})
	if err != nil {
		return "", nil, err
	}
	if !token.Valid {
		return "", nil, fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || claims == nil {
		return "", nil, fmt.Errorf("claims is not a map")
	}
	sub, err := claims.GetSubject()
	if sub == "" {
		return "", nil, fmt.Errorf("subject not found")
	} else if err != nil {
		return "", nil, err
	}
	return sub, token, nil
}

// setLoggedInUser writes the login (or, for a nil user, the logout) into the
// session and onto the auth token cookies for every configured cookie
// domain. Returns the signed token on login.
func (a *Auth) setLoggedInUser(user User, w http.ResponseWriter, r *http.Request) string {
	a.EnsureDefaults()
	var sess Session
	if a.Sessions != nil {
		sess = a.Sessions(r)
	}
	domains := a.CookieDomains
	if !slices.Contains(domains, "") { // default domain
		domains = append(domains, "")
	}

	if user == nil {
		if sess != nil {
			sess.Unset(a.Middleware.UserParamName)
			sess.Unset(a.AuthTokenSessionVar)
			sess.Unset(SessionKeyState)
			if cookie, err := sess.Commit(); err == nil && cookie != nil {
				http.SetCookie(w, cookie)
			} else if err != nil {
				slog.Warn("error committing session on logout", "err", err)
			}
		}
		for _, cookieDomain := range domains {
			http.SetCookie(w, &http.Cookie{
				Name:    "loggedInUserId",
				Domain:  cookieDomain,
				Path:    "/",
				MaxAge:  -1,
				Expires: time.Now(),
			})
			http.SetCookie(w, &http.Cookie{
				Name:    a.AuthTokenSessionVar,
				Domain:  cookieDomain,
				Path:    "/",
				MaxAge:  -1,
				Expires: time.Now(),
			})
		}
		return ""
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": user.Id(),
		"iss": a.JwtIssuer,
		"aud": "user",
		"exp": time.Now().Add(time.Second * time.Duration(a.SessionTimeoutInSeconds)).Unix(),
		"iat": time.Now().Unix(),
	})
	tokenString, err := token.SignedString([]byte(a.JWTSecretKey))
	if err != nil {
		slog.Warn("error signing token", "err", err)
	}

	if sess != nil {
		sess.Set(a.Middleware.UserParamName, user.Id())
		sess.Set(a.AuthTokenSessionVar, tokenString)
		if cookie, err := sess.Commit(); err == nil && cookie != nil {
			http.SetCookie(w, cookie)
		} else if err != nil {
			slog.Warn("error committing session on login", "err", err)
		}
	}

	expires := time.Now().Add(time.Second * time.Duration(a.SessionTimeoutInSeconds))
	for _, cookieDomain := range domains {
		http.SetCookie(w, &http.Cookie{
			Name:    "loggedInUserId",
			Value:   user.Id(),
			Domain:  cookieDomain,
			Path:    "/",
			Expires: expires, MaxAge: a.SessionTimeoutInSeconds,
		})
		http.SetCookie(w, &http.Cookie{
			Name:    a.AuthTokenSessionVar,
			Value:   tokenString,
			Domain:  cookieDomain,
			Path:    "/",
			Expires: expires, MaxAge: a.SessionTimeoutInSeconds,
		})
	}
	return tokenString
}
