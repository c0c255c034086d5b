package authflow

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Clock returns the current time; inject a fixed clock in tests.
type Clock func() time.Time

// Principal is the authenticated entity (admin, member, patient, etc.)
// independent of login mechanism. Domain modules own the full record; the
// authentication subsystem only needs the public profile returned to callers.
type Principal interface {
	ID() string
	Email() string
	DisplayName() string
	Type() PrincipalType
}

// PrincipalDirectory resolves live principals for one principal type, scoped
// to non-deleted rows.
type PrincipalDirectory interface {
	FindActiveByID(ctx context.Context, id uuid.UUID) (Principal, error)
}

// CredentialStore looks up stored authentication records and advances their
// advisory last-authenticated timestamp.
type CredentialStore interface {
	FindActive(ctx context.Context, provider, providerKey string, principalType PrincipalType) (*AuthenticationRecord, error)
	TouchLastAuthenticated(ctx context.Context, id uuid.UUID, at time.Time) error
}

// SessionStore persists one session per successful login and supports
// revocation and liveness lookups.
type SessionStore interface {
	Create(ctx context.Context, session *Session) (*Session, error)
	Revoke(ctx context.Context, id uuid.UUID, at time.Time) error
	FindLiveByAccessToken(ctx context.Context, accessToken string, at time.Time) (*Session, error)
	FindLiveByRefreshToken(ctx context.Context, refreshToken string) (*Session, error)
}

// Authenticator holds methods to deal with authentication
type Authenticator interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResult, error)
	Refresh(ctx context.Context, refreshToken string) (*LoginResult, error)
	Logout(ctx context.Context, accessToken string) error
}

// TokenIssuer mints and validates the access/refresh token pair.
type TokenIssuer interface {
	Issue(principalID string, principalType PrincipalType) (*TokenBundle, error)
	Validate(raw string) (AuthClaims, error)
	ValidateRefresh(raw string) (AuthClaims, error)
}

// PasswordAuthenticator authenticates passwords
type PasswordAuthenticator interface {
	HashPassword(password string) (string, error)
	ComparePasswordAndHash(password, hash string) error
}

// Config holds auth options
type Config interface {
	GetSigningKey() string
	GetIssuer() string
	GetAudience() []string
	GetAccessTokenTTL() time.Duration
	GetRefreshTokenTTL() time.Duration
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] AUTH "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] AUTH "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] AUTH "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] AUTH "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
