package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ministryofjustice/operations-engineering-reports/internal/domain"
	"github.com/ministryofjustice/operations-engineering-reports/internal/middleware"
	"github.com/ministryofjustice/operations-engineering-reports/internal/port"
)

// IsAuthorized reports whether email belongs to one of the allowed domains.
// A domain matches exactly or as a parent of the email's domain, ignoring
// case: "justice.gov.uk" admits "a@justice.gov.uk" and
// "a@digital.justice.gov.uk" but not "a@evil-justice.gov.uk".
func IsAuthorized(email string, allowed []string) bool {
	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 {
		return false
	}
	host := strings.ToLower(strings.TrimSpace(email[at+1:]))

	for _, d := range allowed {
		d = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(d), "@"))
		if d == "" {
			continue
		}
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

// AuthService handles the login flow against the identity provider.
type AuthService struct {
	provider       port.IdentityProvider
	allowedDomains []string
	sessionCfg     middleware.SessionConfig
}

// NewAuthService creates a new authentication service.
func NewAuthService(provider port.IdentityProvider, allowedDomains []string, sessionCfg middleware.SessionConfig) *AuthService {
	return &AuthService{
		provider:       provider,
		allowedDomains: allowedDomains,
		sessionCfg:     sessionCfg,
	}
}

// AuthURL returns the provider authorization URL.
func (s *AuthService) AuthURL(state string) string {
	return s.provider.AuthURL(state)
}

// LogoutURL returns the provider logout URL.
func (s *AuthService) LogoutURL(returnTo string) string {
	return s.provider.LogoutURL(returnTo)
}

// SessionConfig returns the session settings used to sign tokens.
func (s *AuthService) SessionConfig() middleware.SessionConfig {
	return s.sessionCfg
}

// HandleCallback exchanges the code, checks the user's email against the
// allow-list and returns a signed session token.
func (s *AuthService) HandleCallback(ctx context.Context, code string) (string, *domain.User, error) {
	tokens, err := s.provider.ExchangeCode(ctx, code)
	if err != nil {
		return "", nil, fmt.Errorf("exchange code: %w", err)
	}

	user, err := s.provider.GetUserProfile(ctx, tokens.AccessToken)
	if err != nil {
		return "", nil, fmt.Errorf("get profile: %w", err)
	}

	if !user.EmailVerified {
		slog.Warn("login refused", "email", user.Email, "reason", "email not verified")
		return "", user, port.ErrEmailNotVerified
	}
	if !IsAuthorized(user.Email, s.allowedDomains) {
		slog.Warn("login refused", "email", user.Email, "reason", "domain not allowed")
		return "", user, port.ErrDomainNotAllowed
	}

	session, err := middleware.GenerateSession(user, s.sessionCfg)
	if err != nil {
		return "", nil, fmt.Errorf("generate session: %w", err)
	}

	slog.Info("user authenticated", "email", user.Email, "provider", s.provider.ProviderName())
	return session, user, nil
}
