package authflow

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token-use markers. A refresh token carries TokenUseRefresh so it can never
// pass an access-token validation.
const (
	TokenUseAccess  = "access"
	TokenUseRefresh = "refresh"
)

// AuthClaims represents the structured claims carried by issued tokens.
type AuthClaims interface {
	Subject() string
	PrincipalID() string
	PrincipalType() PrincipalType
	TokenUse() string
	Expires() time.Time
	IssuedAt() time.Time
}

// JWTClaims is the concrete implementation of AuthClaims
type JWTClaims struct {
	jwt.RegisteredClaims
	PID   string `json:"pid,omitempty"`
	PType string `json:"ptype,omitempty"`
	Use   string `json:"use,omitempty"`
}

// Verify interface compliance
var _ AuthClaims = (*JWTClaims)(nil)

// Subject returns the subject claim
func (c *JWTClaims) Subject() string {
	return c.RegisteredClaims.Subject
}

// PrincipalID returns the principal identifier, falling back to the subject.
func (c *JWTClaims) PrincipalID() string {
	if c.PID != "" {
		return c.PID
	}
	return c.Subject()
}

// PrincipalType returns the principal type tag
func (c *JWTClaims) PrincipalType() PrincipalType {
	return c.PType
}

// TokenUse returns the token-use marker, defaulting to access for tokens
// minted before the marker existed.
func (c *JWTClaims) TokenUse() string {
	if c.Use == "" {
		return TokenUseAccess
	}
	return c.Use
}

// Expires returns the expiration time
func (c *JWTClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedAt returns the issued at time
func (c *JWTClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}

// ensureTokenID assigns a jti when the claims do not carry one yet.
func ensureTokenID(claims *jwt.RegisteredClaims) {
	if claims.ID == "" {
		claims.ID = uuid.NewString()
	}
}
