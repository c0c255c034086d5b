// Package sessionguard is Fiber middleware that accepts a request only when
// its bearer token validates and the session behind it is still live. Token
// validation alone is not enough: a structurally valid access token whose
// session was revoked (logout, refresh rotation, admin action) must be
// rejected here.
package sessionguard

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

var ErrMissingOrMalformedToken = errors.New("missing or malformed bearer token")

// AuthClaims mirrors the root package's claims interface so the middleware
// has no hard dependency on it.
type AuthClaims interface {
	Subject() string
	PrincipalID() string
	PrincipalType() string
	TokenUse() string
	Expires() time.Time
	IssuedAt() time.Time
}

// TokenValidator validates raw access tokens.
type TokenValidator interface {
	Validate(tokenString string) (AuthClaims, error)
}

// SessionChecker confirms the session behind an access token has not been
// revoked or expired.
type SessionChecker interface {
	EnsureLive(ctx context.Context, accessToken string, at time.Time) error
}

type Config struct {
	// Filter skips the guard for matching requests.
	Filter func(*fiber.Ctx) bool
	// ErrorHandler renders rejections; defaults to a JSON 401.
	ErrorHandler fiber.ErrorHandler
	// ContextKey is the fiber.Locals key the claims are stored under.
	ContextKey string
	// AuthScheme defaults to Bearer.
	AuthScheme string
	// TokenValidator is required.
	TokenValidator TokenValidator
	// Sessions is required.
	Sessions SessionChecker
	// Clock defaults to time.Now.
	Clock func() time.Time
}

// New returns the guard handler for the given configuration.
func New(config Config) fiber.Handler {
	cfg := withDefaults(config)

	return func(c *fiber.Ctx) error {
		if cfg.Filter != nil && cfg.Filter(c) {
			return c.Next()
		}

		raw, err := tokenFromHeader(c.Get(fiber.HeaderAuthorization), cfg.AuthScheme)
		if err != nil {
			return cfg.ErrorHandler(c, err)
		}

		claims, err := cfg.TokenValidator.Validate(raw)
		if err != nil {
			return cfg.ErrorHandler(c, err)
		}

		if err := cfg.Sessions.EnsureLive(c.UserContext(), raw, cfg.Clock()); err != nil {
			return cfg.ErrorHandler(c, err)
		}

		c.Locals(cfg.ContextKey, claims)

		return c.Next()
	}
}

func withDefaults(cfg Config) Config {
	if cfg.TokenValidator == nil {
		panic("AUTH: sessionguard configuration: TokenValidator is required.")
	}
	if cfg.Sessions == nil {
		panic("AUTH: sessionguard configuration: Sessions is required.")
	}

	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = func(c *fiber.Ctx, err error) error {
			status := fiber.StatusUnauthorized
			if errors.Is(err, ErrMissingOrMalformedToken) {
				status = fiber.StatusBadRequest
			}
			return c.Status(status).JSON(fiber.Map{
				"error": "Invalid or expired session",
			})
		}
	}

	if cfg.ContextKey == "" {
		cfg.ContextKey = "claims"
	}

	if cfg.AuthScheme == "" {
		cfg.AuthScheme = "Bearer"
	}

	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}

	return cfg
}

func tokenFromHeader(header, authScheme string) (string, error) {
	l := len(authScheme)
	if len(header) > l+1 && strings.EqualFold(header[:l], authScheme) {
		return strings.TrimSpace(header[l:]), nil
	}
	return "", ErrMissingOrMalformedToken
}
