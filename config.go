package authflow

import "time"

// Default token lifetimes. Access tokens are short-lived; refresh tokens give
// clients a seven-day renewal window.
const (
	DefaultAccessTokenTTL  = time.Hour
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour
)

// SimpleConfig is a concrete Config. Construct it explicitly and hand it to
// NewAuthenticator / NewTokenService; nothing in this package reads ambient
// global state, so tests can inject deterministic secrets and expiries.
type SimpleConfig struct {
	SigningKey      string
	Issuer          string
	Audience        []string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

var _ Config = (*SimpleConfig)(nil)

func (c SimpleConfig) GetSigningKey() string {
	return c.SigningKey
}

func (c SimpleConfig) GetIssuer() string {
	return c.Issuer
}

func (c SimpleConfig) GetAudience() []string {
	return c.Audience
}

func (c SimpleConfig) GetAccessTokenTTL() time.Duration {
	if c.AccessTokenTTL <= 0 {
		return DefaultAccessTokenTTL
	}
	return c.AccessTokenTTL
}

func (c SimpleConfig) GetRefreshTokenTTL() time.Duration {
	if c.RefreshTokenTTL <= 0 {
		return DefaultRefreshTokenTTL
	}
	return c.RefreshTokenTTL
}
