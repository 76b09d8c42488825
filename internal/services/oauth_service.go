package services

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	oauthgithub "golang.org/x/oauth2/github"
)

// OAuthService wraps the GitHub authorization-code flow for the web login
// path: the dashboard redirects to GitHub, GitHub calls back with a code,
// and the server exchanges the code for an access token using the client
// secret. The token never reaches the browser directly; it travels inside
// the signed web token instead.
type OAuthService struct {
	config *oauth2.Config
}

// NewOAuthService configures the GitHub OAuth app credentials. The repo
// scope is required because deployments push metadata repositories on the
// user's behalf.
func NewOAuthService(clientID, clientSecret, callbackURL string) *OAuthService {
	return &OAuthService{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  callbackURL,
			Scopes:       []string{"repo", "user:email"},
			Endpoint:     oauthgithub.Endpoint,
		},
	}
}

// AuthURL returns the GitHub authorization URL to redirect the user to.
func (s *OAuthService) AuthURL(state string) string {
	return s.config.AuthCodeURL(state,
		oauth2.SetAuthURLParam("allow_signup", "true"))
}

// Exchange trades an authorization code for a GitHub access token.
func (s *OAuthService) Exchange(ctx context.Context, code string) (string, error) {
	token, err := s.config.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("GitHub OAuth exchange failed: %w", err)
	}
	if token.AccessToken == "" {
		return "", fmt.Errorf("GitHub OAuth returned no access token")
	}
	return token.AccessToken, nil
}
