package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ministryofjustice/operations-engineering-reports/internal/domain"
	"github.com/ministryofjustice/operations-engineering-reports/internal/port"
)

// Auth0Provider implements port.IdentityProvider for an Auth0 tenant.
type Auth0Provider struct {
	baseURL      string
	clientID     string
	clientSecret string
	redirectURL  string
	httpClient   *http.Client
}

var _ port.IdentityProvider = (*Auth0Provider)(nil)

// NewAuth0Provider creates a provider for the tenant at domain, given either
// as a bare host ("tenant.eu.auth0.com") or as a full base URL.
func NewAuth0Provider(domain, clientID, clientSecret, redirectURL string) *Auth0Provider {
	base := strings.TrimRight(domain, "/")
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "https://" + base
	}
	return &Auth0Provider{
		baseURL:      base,
		clientID:     clientID,
		clientSecret: clientSecret,
		redirectURL:  redirectURL,
		httpClient:   &http.Client{Timeout: 10 * time.Second},
	}
}

// ProviderName returns "auth0".
func (a *Auth0Provider) ProviderName() string {
	return "auth0"
}

// AuthURL returns the Auth0 universal login URL.
func (a *Auth0Provider) AuthURL(state string) string {
	params := url.Values{
		"client_id":     {a.clientID},
		"redirect_uri":  {a.redirectURL},
		"response_type": {"code"},
		"scope":         {"openid email profile"},
		"state":         {state},
	}
	return fmt.Sprintf("%s/authorize?%s", a.baseURL, params.Encode())
}

// ExchangeCode exchanges an authorization code for tokens.
func (a *Auth0Provider) ExchangeCode(ctx context.Context, code string) (*domain.TokenPair, error) {
	data := url.Values{
		"code":          {code},
		"client_id":     {a.clientID},
		"client_secret": {a.clientSecret},
		"redirect_uri":  {a.redirectURL},
		"grant_type":    {"authorization_code"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/oauth/token", strings.NewReader(data.Encode()))
	if err != nil {
		return nil, fmt.Errorf("auth0: create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("auth0: token exchange: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("auth0: token exchange failed (%d): %s", resp.StatusCode, string(body))
	}

	var tokens domain.TokenPair
	if err := json.NewDecoder(resp.Body).Decode(&tokens); err != nil {
		return nil, fmt.Errorf("auth0: decode token response: %w", err)
	}
	return &tokens, nil
}

// GetUserProfile fetches the OpenID userinfo for an access token.
func (a *Auth0Provider) GetUserProfile(ctx context.Context, accessToken string) (*domain.User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/userinfo", nil)
	if err != nil {
		return nil, fmt.Errorf("auth0: create userinfo request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("auth0: fetch userinfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("auth0: userinfo failed (%d): %s", resp.StatusCode, string(body))
	}

	var profile struct {
		Sub           string `json:"sub"`
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
		Name          string `json:"name"`
		Picture       string `json:"picture"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("auth0: decode userinfo: %w", err)
	}

	return &domain.User{
		ID:            profile.Sub,
		Email:         profile.Email,
		EmailVerified: profile.EmailVerified,
		Name:          profile.Name,
		AvatarURL:     profile.Picture,
		Provider:      a.ProviderName(),
	}, nil
}

// LogoutURL returns the Auth0 logout endpoint redirecting back to returnTo.
func (a *Auth0Provider) LogoutURL(returnTo string) string {
	params := url.Values{
		"returnTo":  {returnTo},
		"client_id": {a.clientID},
	}
	return fmt.Sprintf("%s/v2/logout?%s", a.baseURL, params.Encode())
}
