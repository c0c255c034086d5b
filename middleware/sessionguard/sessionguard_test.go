package sessionguard_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ashby-lab/go-authflow/middleware/sessionguard"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubClaims struct {
	subject string
}

func (s stubClaims) Subject() string       { return s.subject }
func (s stubClaims) PrincipalID() string   { return s.subject }
func (s stubClaims) PrincipalType() string { return "admin" }
func (s stubClaims) TokenUse() string      { return "access" }
func (s stubClaims) Expires() time.Time    { return time.Now().Add(time.Hour) }
func (s stubClaims) IssuedAt() time.Time   { return time.Now() }

type stubValidator struct {
	claims sessionguard.AuthClaims
	err    error
	seen   []string
}

func (s *stubValidator) Validate(tokenString string) (sessionguard.AuthClaims, error) {
	s.seen = append(s.seen, tokenString)
	if s.err != nil {
		return nil, s.err
	}
	return s.claims, nil
}

type stubSessionChecker struct {
	err  error
	seen []string
}

func (s *stubSessionChecker) EnsureLive(_ context.Context, accessToken string, _ time.Time) error {
	s.seen = append(s.seen, accessToken)
	return s.err
}

func newGuardedApp(cfg sessionguard.Config) *fiber.App {
	app := fiber.New()
	app.Use(sessionguard.New(cfg))
	app.Get("/protected", func(c *fiber.Ctx) error {
		claims, ok := c.Locals("claims").(sessionguard.AuthClaims)
		if !ok {
			return c.SendStatus(fiber.StatusInternalServerError)
		}
		return c.SendString(claims.PrincipalID())
	})
	return app
}

func TestGuardAcceptsLiveSession(t *testing.T) {
	validator := &stubValidator{claims: stubClaims{subject: "principal-1"}}
	checker := &stubSessionChecker{}

	app := newGuardedApp(sessionguard.Config{
		TokenValidator: validator,
		Sessions:       checker,
	})

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer good-token")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	require.Equal(t, []string{"good-token"}, validator.seen)
	require.Equal(t, []string{"good-token"}, checker.seen)
}

func TestGuardRejectsMissingHeader(t *testing.T) {
	validator := &stubValidator{claims: stubClaims{subject: "principal-1"}}

	app := newGuardedApp(sessionguard.Config{
		TokenValidator: validator,
		Sessions:       &stubSessionChecker{},
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/protected", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Empty(t, validator.seen)
}

func TestGuardRejectsInvalidToken(t *testing.T) {
	validator := &stubValidator{err: errors.New("token is malformed")}
	checker := &stubSessionChecker{}

	app := newGuardedApp(sessionguard.Config{
		TokenValidator: validator,
		Sessions:       checker,
	})

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer bad-token")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Empty(t, checker.seen)
}

func TestGuardRejectsRevokedSession(t *testing.T) {
	// The token itself validates; the session behind it is gone.
	validator := &stubValidator{claims: stubClaims{subject: "principal-1"}}
	checker := &stubSessionChecker{err: errors.New("session revoked or expired")}

	app := newGuardedApp(sessionguard.Config{
		TokenValidator: validator,
		Sessions:       checker,
	})

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer stale-token")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, []string{"stale-token"}, checker.seen)
}

func TestGuardFilterSkipsCheck(t *testing.T) {
	validator := &stubValidator{claims: stubClaims{subject: "principal-1"}}

	app := fiber.New()
	app.Use(sessionguard.New(sessionguard.Config{
		Filter:         func(c *fiber.Ctx) bool { return c.Path() == "/health" },
		TokenValidator: validator,
		Sessions:       &stubSessionChecker{},
	}))
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Empty(t, validator.seen)
}

func TestGuardRequiresConfiguration(t *testing.T) {
	assert.Panics(t, func() {
		sessionguard.New(sessionguard.Config{Sessions: &stubSessionChecker{}})
	})
	assert.Panics(t, func() {
		sessionguard.New(sessionguard.Config{TokenValidator: &stubValidator{}})
	})
}
