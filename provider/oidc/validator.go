// Package oidc validates assertions issued by external identity providers.
// For federated logins the orchestrator never sees a password; the caller
// first validates the provider's JWT here and uses its subject as the
// provider_key of the stored AuthenticationRecord.
package oidc

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
)

// Assertion is the verified identity statement extracted from a provider
// token.
type Assertion struct {
	Subject  string
	Issuer   string
	Email    string
	IssuedAt time.Time
	Expires  time.Time
}

// Config holds the provider's verification parameters.
type Config struct {
	// JWKSetURL is the provider's JWKS endpoint.
	JWKSetURL string
	// Issuer is required and matched against the iss claim.
	Issuer string
	// Audience is optional; when set it is matched against aud.
	Audience []string
	// RefreshInterval for the JWKS cache; defaults to one hour.
	RefreshInterval time.Duration
	// RefreshErrorHandler receives background JWKS refresh failures.
	RefreshErrorHandler func(error)
}

// AssertionValidator verifies provider-issued JWTs against a JWKS.
type AssertionValidator struct {
	cfg  Config
	jwks *keyfunc.JWKS
}

// NewAssertionValidator fetches the JWKS and keeps it refreshed in the
// background.
func NewAssertionValidator(cfg Config) (*AssertionValidator, error) {
	if cfg.JWKSetURL == "" {
		return nil, fmt.Errorf("oidc: JWKSetURL is required")
	}
	if cfg.Issuer == "" {
		return nil, fmt.Errorf("oidc: issuer is required")
	}

	refreshInterval := cfg.RefreshInterval
	if refreshInterval == 0 {
		refreshInterval = time.Hour
	}

	jwks, err := keyfunc.Get(cfg.JWKSetURL, keyfunc.Options{
		RefreshInterval:     refreshInterval,
		RefreshErrorHandler: cfg.RefreshErrorHandler,
		RefreshUnknownKID:   true,
	})
	if err != nil {
		return nil, fmt.Errorf("oidc: failed to load JWK set: %w", err)
	}

	return &AssertionValidator{cfg: cfg, jwks: jwks}, nil
}

// NewAssertionValidatorFromJSON builds a validator from a static JWK set,
// useful for tests and for providers with pinned keys.
func NewAssertionValidatorFromJSON(raw json.RawMessage, cfg Config) (*AssertionValidator, error) {
	if cfg.Issuer == "" {
		return nil, fmt.Errorf("oidc: issuer is required")
	}

	jwks, err := keyfunc.NewJSON(raw)
	if err != nil {
		return nil, fmt.Errorf("oidc: failed to parse JWK set: %w", err)
	}

	return &AssertionValidator{cfg: cfg, jwks: jwks}, nil
}

// Validate verifies the raw token and returns the assertion it carries.
func (v *AssertionValidator) Validate(raw string) (*Assertion, error) {
	parserOptions := []jwt.ParserOption{
		jwt.WithIssuer(v.cfg.Issuer),
		jwt.WithExpirationRequired(),
	}
	if len(v.cfg.Audience) > 0 {
		parserOptions = append(parserOptions, jwt.WithAudience(v.cfg.Audience...))
	}

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, v.jwks.Keyfunc, parserOptions...)
	if err != nil {
		return nil, fmt.Errorf("oidc: token validation failed: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("oidc: token is not valid")
	}

	subject, err := claims.GetSubject()
	if err != nil || subject == "" {
		return nil, fmt.Errorf("oidc: token has no subject")
	}

	assertion := &Assertion{
		Subject: subject,
		Issuer:  v.cfg.Issuer,
	}

	if email, ok := claims["email"].(string); ok {
		assertion.Email = email
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		assertion.IssuedAt = iat.Time
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		assertion.Expires = exp.Time
	}

	return assertion, nil
}
