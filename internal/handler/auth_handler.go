package handler

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/ministryofjustice/operations-engineering-reports/internal/middleware"
	"github.com/ministryofjustice/operations-engineering-reports/internal/service"
)

const stateCookie = "opseng_oauth_state"

// AuthHandler handles the login, callback and logout routes.
type AuthHandler struct {
	authService *service.AuthService
	secure      bool
}

// NewAuthHandler creates a new auth handler. secure marks cookies Secure.
func NewAuthHandler(authService *service.AuthService, secure bool) *AuthHandler {
	return &AuthHandler{authService: authService, secure: secure}
}

// Register sets up auth routes.
func (h *AuthHandler) Register(app fiber.Router) {
	auth := app.Group("/auth")
	auth.Get("/login", h.Login)
	auth.Get("/callback", h.Callback)
	auth.Get("/logout", h.Logout)
}

// Login redirects to the identity provider.
func (h *AuthHandler) Login(c fiber.Ctx) error {
	state := generateState()
	c.Cookie(&fiber.Cookie{
		Name:     stateCookie,
		Value:    state,
		Expires:  time.Now().Add(10 * time.Minute),
		HTTPOnly: true,
		Secure:   h.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.Redirect().To(h.authService.AuthURL(state))
}

// Callback completes the login and sets the session cookie.
func (h *AuthHandler) Callback(c fiber.Ctx) error {
	code := c.Query("code")
	if code == "" {
		return badRequest(c, "missing authorization code")
	}

	expected := c.Cookies(stateCookie)
	state := c.Query("state")
	if expected == "" || subtle.ConstantTimeCompare([]byte(expected), []byte(state)) != 1 {
		return badRequest(c, "invalid login state")
	}
	c.ClearCookie(stateCookie)

	session, _, err := h.authService.HandleCallback(c.Context(), code)
	if err != nil {
		return respondError(c, err)
	}

	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    session,
		Expires:  time.Now().Add(h.authService.SessionConfig().ExpiresIn),
		HTTPOnly: true,
		Secure:   h.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.Redirect().To("/")
}

// Logout clears the session and ends the provider session.
func (h *AuthHandler) Logout(c fiber.Ctx) error {
	c.ClearCookie(middleware.SessionCookie)
	return c.Redirect().To(h.authService.LogoutURL(c.BaseURL() + "/"))
}

func generateState() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
