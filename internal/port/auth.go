package port

import (
	"context"

	"github.com/ministryofjustice/operations-engineering-reports/internal/domain"
)

// IdentityProvider abstracts the OpenID-Connect provider users log in with.
type IdentityProvider interface {
	// ProviderName returns the name of this provider (e.g. "auth0").
	ProviderName() string

	// AuthURL returns the full authorization URL for redirecting the user.
	AuthURL(state string) string

	// ExchangeCode exchanges an authorization code for an access/refresh token pair.
	ExchangeCode(ctx context.Context, code string) (*domain.TokenPair, error)

	// GetUserProfile fetches the authenticated user's profile from the provider.
	GetUserProfile(ctx context.Context, accessToken string) (*domain.User, error)

	// LogoutURL returns the provider logout URL that redirects back to returnTo.
	LogoutURL(returnTo string) string
}
