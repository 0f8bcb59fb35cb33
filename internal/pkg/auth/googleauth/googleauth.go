/*
Package googleauth handles the Google-delegated login flow: building the
consent redirect, exchanging the authorization code, and fetching the
verified profile.
*/
package googleauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// userInfoEndpoint returns the profile of the account the access token
// belongs to.
const userInfoEndpoint = "https://www.googleapis.com/oauth2/v2/userinfo"

// suggestedUsernameCleaner strips characters the username format disallows
// from a Google display name.
var suggestedUsernameCleaner = regexp.MustCompile(`[^a-zA-Z0-9_\- ]`)

// Config holds the OAuth application credentials.
type Config struct {
	ClientID     string
	ClientSecret string
	CallbackURL  string
}

// Profile is the verified identity returned by Google.
type Profile struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// Client performs the OAuth exchange against Google.
type Client struct {
	oauth *oauth2.Config
}

// New builds a Client for the given application credentials.
func New(cfg Config) *Client {
	return &Client{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.CallbackURL,
			Scopes:       []string{"openid", "profile", "email"},
			Endpoint:     google.Endpoint,
		},
	}
}

// AuthCodeURL returns the consent page URL carrying the CSRF state value.
func (c *Client) AuthCodeURL(state string) string {
	return c.oauth.AuthCodeURL(state)
}

// FetchProfile exchanges the authorization code and retrieves the verified
// profile of the authenticated Google account.
func (c *Client) FetchProfile(ctx context.Context, code string) (*Profile, error) {
	token, err := c.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("code exchange failed: %w", err)
	}

	resp, err := c.oauth.Client(ctx, token).Get(userInfoEndpoint)
	if err != nil {
		return nil, fmt.Errorf("userinfo request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo request returned status %d", resp.StatusCode)
	}

	var profile Profile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("failed to decode userinfo response: %w", err)
	}

	if profile.ID == "" || profile.Email == "" {
		return nil, fmt.Errorf("userinfo response missing id or email")
	}

	return &profile, nil
}

// SuggestedUsername derives a username suggestion from a display name,
// restricted to the characters the username format allows and capped at the
// maximum length.
func SuggestedUsername(displayName string) string {
	cleaned := strings.TrimSpace(suggestedUsernameCleaner.ReplaceAllString(displayName, ""))
	if cleaned == "" {
		cleaned = "user"
	}

	if len(cleaned) > 30 {
		cleaned = cleaned[:30]
	}

	return cleaned
}
