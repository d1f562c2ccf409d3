// Package oauth signs accounts in with Google.
package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/vadimbarashkov/shortlink-analytics/internal/entity"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

var errEmptySubject = errors.New("identity provider returned empty subject")

type googleUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// GoogleProvider runs the authorization code flow against Google.
type GoogleProvider struct {
	cfg         *oauth2.Config
	userInfoURL string
}

func NewGoogleProvider(clientID, clientSecret, redirectURL string) *GoogleProvider {
	return &GoogleProvider{
		cfg: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
		userInfoURL: googleUserInfoURL,
	}
}

// AuthCodeURL returns the consent page URL carrying state.
func (p *GoogleProvider) AuthCodeURL(state string) string {
	return p.cfg.AuthCodeURL(state)
}

// Identify exchanges an authorization code and fetches the profile of its owner.
func (p *GoogleProvider) Identify(ctx context.Context, code string) (*entity.Identity, error) {
	const op = "adapter.oauth.GoogleProvider.Identify"

	token, err := p.cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to exchange code: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build userinfo request: %w", op, err)
	}

	resp, err := p.cfg.Client(ctx, token).Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to fetch userinfo: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: userinfo responded with status %d", op, resp.StatusCode)
	}

	var user googleUser

	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("%s: failed to decode userinfo: %w", op, err)
	}

	if user.ID == "" {
		return nil, fmt.Errorf("%s: %w", op, errEmptySubject)
	}

	return &entity.Identity{
		Subject: user.ID,
		Email:   user.Email,
		Name:    user.Name,
	}, nil
}
