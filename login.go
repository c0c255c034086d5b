package authflow

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// LoginRequest is one login attempt. Email is informational context for the
// audit trail; the lookup key is (Provider, ProviderKey, PrincipalType).
type LoginRequest struct {
	Provider      string        `json:"provider"`
	ProviderKey   string        `json:"provider_key"`
	PrincipalType PrincipalType `json:"principal_type"`
	Email         string        `json:"email,omitempty"`
	Password      string        `json:"password,omitempty"`
	UserAgent     string        `json:"-"`
	IPAddress     string        `json:"-"`
}

// Validate checks the request shape before the orchestrator runs.
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Provider, validation.Required),
		validation.Field(&r.ProviderKey, validation.Required),
		validation.Field(&r.PrincipalType, validation.Required),
		validation.Field(&r.Email, is.Email),
	)
}

// TokenBundle is the caller-facing token pair. The expiry timestamps are
// returned verbatim so clients can schedule renewal.
type TokenBundle struct {
	Access           string    `json:"access"`
	Refresh          string    `json:"refresh"`
	ExpiredAt        time.Time `json:"expired_at"`
	RefreshableUntil time.Time `json:"refreshable_until"`
}

// LoginResult is the success payload: the principal's public profile plus the
// token bundle and the session that backs it.
type LoginResult struct {
	Principal Principal    `json:"principal"`
	Tokens    *TokenBundle `json:"tokens"`
	Session   *Session     `json:"session,omitempty"`
}
