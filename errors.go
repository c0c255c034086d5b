package authflow

import (
	"errors"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	textCodeInvalidCredentials = "INVALID_CREDENTIALS"
	textCodeAccountInactive    = "ACCOUNT_INACTIVE"
	textCodeTokenExpired       = "TOKEN_EXPIRED"
	textCodeTokenMalformed     = "TOKEN_MALFORMED"
	textCodeSessionRevoked     = "SESSION_REVOKED"
	textCodeSignupDisabled     = "SIGNUP_DISABLED"
)

// ErrInvalidCredentials is the single caller-visible error for every
// credential-shaped failure: unknown (provider, provider_key, principal_type)
// triple, missing password, or password mismatch. The branches are merged on
// purpose so callers cannot enumerate accounts or providers; the real cause
// only reaches the SecurityIncident trail.
var ErrInvalidCredentials = goerrors.New("Invalid credentials", goerrors.CategoryAuth).
	WithTextCode(textCodeInvalidCredentials).
	WithCode(goerrors.CodeUnauthorized)

// ErrAccountInactive is returned when the credential resolves but the
// referenced principal is missing or soft-deleted.
var ErrAccountInactive = goerrors.New("Account is not active", goerrors.CategoryAuth).
	WithTextCode(textCodeAccountInactive).
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenExpired is returned for tokens past their exp claim.
var ErrTokenExpired = goerrors.New("Authentication token expired", goerrors.CategoryAuth).
	WithTextCode(textCodeTokenExpired).
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenMalformed is returned for tokens that fail parsing, signature, or
// token-use checks.
var ErrTokenMalformed = goerrors.New("Authentication token malformed", goerrors.CategoryAuth).
	WithTextCode(textCodeTokenMalformed).
	WithCode(goerrors.CodeUnauthorized)

// ErrSessionNotLive is returned when a structurally valid token no longer has
// a live session behind it (revoked, expired, or replaced on refresh).
var ErrSessionNotLive = goerrors.New("Session revoked or expired", goerrors.CategoryAuth).
	WithTextCode(textCodeSessionRevoked).
	WithCode(goerrors.CodeUnauthorized)

// ErrSignupDisabled is returned when the credential provisioning feature gate
// is off.
var ErrSignupDisabled = goerrors.New("Signup is disabled", goerrors.CategoryAuthz).
	WithTextCode(textCodeSignupDisabled).
	WithCode(goerrors.CodeForbidden)

// ErrNoEmptyString guards hashing of empty passwords.
var ErrNoEmptyString = errors.New("password must not be empty")

// ErrMismatchedHashAndPassword is the internal comparison failure; callers of
// Login only ever see ErrInvalidCredentials.
var ErrMismatchedHashAndPassword = errors.New("mismatched password and hash")

// ErrUnknownPrincipalType indicates the orchestrator has no directory
// registered for the requested principal type. This is a wiring mistake in
// the embedding application, not a client failure.
var ErrUnknownPrincipalType = errors.New("unknown principal type")

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	if hasTextCode(err, textCodeTokenExpired) {
		return true
	}
	return strings.Contains(err.Error(), "token is expired") ||
		strings.Contains(err.Error(), "token expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	if hasTextCode(err, textCodeTokenMalformed) {
		return true
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}

func hasTextCode(err error, code string) bool {
	var rich *goerrors.Error
	if errors.As(err, &rich) {
		return rich.TextCode == code
	}
	return false
}
