package oidc_test

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/ashby-lab/go-authflow/provider/oidc"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKeyID = "test-key-1"

func newSigningKey(t *testing.T) (*rsa.PrivateKey, json.RawMessage) {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	jwks := fmt.Sprintf(`{"keys":[{"kty":"RSA","kid":%q,"use":"sig","alg":"RS256","n":%q,"e":"AQAB"}]}`,
		testKeyID,
		base64.RawURLEncoding.EncodeToString(key.N.Bytes()),
	)

	return key, json.RawMessage(jwks)
}

func signAssertion(t *testing.T, key *rsa.PrivateKey, claims jwt.MapClaims) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = testKeyID

	raw, err := token.SignedString(key)
	require.NoError(t, err)
	return raw
}

func TestAssertionValidatorAccepts(t *testing.T) {
	key, jwks := newSigningKey(t)

	validator, err := oidc.NewAssertionValidatorFromJSON(jwks, oidc.Config{
		Issuer:   "https://issuer.example.com",
		Audience: []string{"authflow"},
	})
	require.NoError(t, err)

	now := time.Now()
	raw := signAssertion(t, key, jwt.MapClaims{
		"iss":   "https://issuer.example.com",
		"aud":   "authflow",
		"sub":   "oidc|10958",
		"email": "member@example.com",
		"iat":   now.Unix(),
		"exp":   now.Add(time.Hour).Unix(),
	})

	assertion, err := validator.Validate(raw)
	require.NoError(t, err)
	assert.Equal(t, "oidc|10958", assertion.Subject)
	assert.Equal(t, "https://issuer.example.com", assertion.Issuer)
	assert.Equal(t, "member@example.com", assertion.Email)
	assert.WithinDuration(t, now.Add(time.Hour), assertion.Expires, time.Second)
}

func TestAssertionValidatorRejectsWrongIssuer(t *testing.T) {
	key, jwks := newSigningKey(t)

	validator, err := oidc.NewAssertionValidatorFromJSON(jwks, oidc.Config{
		Issuer: "https://issuer.example.com",
	})
	require.NoError(t, err)

	raw := signAssertion(t, key, jwt.MapClaims{
		"iss": "https://not-the-issuer.example.com",
		"sub": "oidc|10958",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	_, err = validator.Validate(raw)
	require.Error(t, err)
}

func TestAssertionValidatorRejectsExpired(t *testing.T) {
	key, jwks := newSigningKey(t)

	validator, err := oidc.NewAssertionValidatorFromJSON(jwks, oidc.Config{
		Issuer: "https://issuer.example.com",
	})
	require.NoError(t, err)

	raw := signAssertion(t, key, jwt.MapClaims{
		"iss": "https://issuer.example.com",
		"sub": "oidc|10958",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})

	_, err = validator.Validate(raw)
	require.Error(t, err)
}

func TestAssertionValidatorRejectsMissingExpiry(t *testing.T) {
	key, jwks := newSigningKey(t)

	validator, err := oidc.NewAssertionValidatorFromJSON(jwks, oidc.Config{
		Issuer: "https://issuer.example.com",
	})
	require.NoError(t, err)

	raw := signAssertion(t, key, jwt.MapClaims{
		"iss": "https://issuer.example.com",
		"sub": "oidc|10958",
	})

	_, err = validator.Validate(raw)
	require.Error(t, err)
}

func TestAssertionValidatorRejectsMissingSubject(t *testing.T) {
	key, jwks := newSigningKey(t)

	validator, err := oidc.NewAssertionValidatorFromJSON(jwks, oidc.Config{
		Issuer: "https://issuer.example.com",
	})
	require.NoError(t, err)

	raw := signAssertion(t, key, jwt.MapClaims{
		"iss": "https://issuer.example.com",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	_, err = validator.Validate(raw)
	require.Error(t, err)
}

func TestAssertionValidatorRejectsUnknownKey(t *testing.T) {
	_, jwks := newSigningKey(t)

	validator, err := oidc.NewAssertionValidatorFromJSON(jwks, oidc.Config{
		Issuer: "https://issuer.example.com",
	})
	require.NoError(t, err)

	other, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	raw := signAssertion(t, other, jwt.MapClaims{
		"iss": "https://issuer.example.com",
		"sub": "oidc|10958",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	_, err = validator.Validate(raw)
	require.Error(t, err)
}

func TestAssertionValidatorRequiresIssuer(t *testing.T) {
	_, jwks := newSigningKey(t)

	_, err := oidc.NewAssertionValidatorFromJSON(jwks, oidc.Config{})
	require.Error(t, err)
}
