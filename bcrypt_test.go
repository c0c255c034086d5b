package authflow_test

import (
	"testing"

	authflow "github.com/ashby-lab/go-authflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	hash, err := authflow.HashPassword("sup3r-s3cret")
	require.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.NotEqual(t, "sup3r-s3cret", hash)

	require.NoError(t, authflow.ComparePasswordAndHash("sup3r-s3cret", hash))

	err = authflow.ComparePasswordAndHash("not-the-password", hash)
	require.ErrorIs(t, err, authflow.ErrMismatchedHashAndPassword)
}

func TestHashPasswordRejectsEmpty(t *testing.T) {
	_, err := authflow.HashPassword("")
	require.ErrorIs(t, err, authflow.ErrNoEmptyString)
}

func TestComparePasswordAndHashGarbageHash(t *testing.T) {
	err := authflow.ComparePasswordAndHash("anything", "not-a-bcrypt-hash")
	require.Error(t, err)
	assert.NotErrorIs(t, err, authflow.ErrMismatchedHashAndPassword)
}

func TestRandomPasswordHash(t *testing.T) {
	hash := authflow.RandomPasswordHash()
	assert.NotEmpty(t, hash)

	// Random hashes never verify against a known password.
	err := authflow.ComparePasswordAndHash("password", hash)
	require.Error(t, err)
}
