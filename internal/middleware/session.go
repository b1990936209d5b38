package middleware

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/golang-jwt/jwt/v5"

	"github.com/ministryofjustice/operations-engineering-reports/internal/domain"
	"github.com/ministryofjustice/operations-engineering-reports/internal/port"
)

// SessionCookie is the cookie carrying the signed session token.
const SessionCookie = "opseng_session"

const userLocal = "user"

// errNoSecret is returned when sessions are used without a signing key.
var errNoSecret = errors.New("session secret not configured")

// SessionConfig holds session token settings. A config with an empty
// Secret issues no sessions and rejects every token.
type SessionConfig struct {
	Secret    string
	Issuer    string
	ExpiresIn time.Duration
}

// Claims represents the session token payload.
type Claims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

// GenerateSession creates a signed HS256 session token for user.
func GenerateSession(user *domain.User, cfg SessionConfig) (string, error) {
	if cfg.Secret == "" {
		return "", errNoSecret
	}
	now := time.Now()
	claims := Claims{
		Email: user.Email,
		Name:  user.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.ExpiresIn)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("sign session: %w", err)
	}
	return signed, nil
}

// ValidateSession parses and verifies a session token.
func ValidateSession(token string, cfg SessionConfig) (*Claims, error) {
	if cfg.Secret == "" {
		return nil, fmt.Errorf("%w: %v", port.ErrTokenInvalid, errNoSecret)
	}
	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return []byte(cfg.Secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(cfg.Issuer),
		jwt.WithExpirationRequired(),
	)
	switch {
	case err == nil:
		return &claims, nil
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, port.ErrTokenExpired
	default:
		return nil, fmt.Errorf("%w: %v", port.ErrTokenInvalid, err)
	}
}

// SessionMiddleware reads the session from the cookie or a bearer token and
// injects a UserContext. When required is false, requests without a valid
// session pass through anonymously.
func SessionMiddleware(cfg SessionConfig, required bool) fiber.Handler {
	return func(c fiber.Ctx) error {
		token := c.Cookies(SessionCookie)

		if token == "" {
			parts := strings.SplitN(c.Get("Authorization"), " ", 2)
			if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
				token = parts[1]
			}
		}

		if token == "" {
			if !required {
				return c.Next()
			}
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing session",
			})
		}

		claims, err := ValidateSession(token, cfg)
		if err != nil {
			if !required {
				return c.Next()
			}
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		c.Locals(userLocal, &domain.UserContext{
			UserID: claims.Subject,
			Email:  claims.Email,
			Name:   claims.Name,
		})
		return c.Next()
	}
}

// GetUserContext extracts the UserContext from Fiber locals.
func GetUserContext(c fiber.Ctx) *domain.UserContext {
	u, ok := c.Locals(userLocal).(*domain.UserContext)
	if !ok {
		return nil
	}
	return u
}
