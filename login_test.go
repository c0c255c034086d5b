package authflow_test

import (
	"testing"

	authflow "github.com/ashby-lab/go-authflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginRequestValidate(t *testing.T) {
	valid := authflow.LoginRequest{
		Provider:      authflow.ProviderLocal,
		ProviderKey:   "admin@example.com",
		PrincipalType: authflow.PrincipalTypeAdmin,
		Email:         "admin@example.com",
		Password:      "password123!",
	}
	require.NoError(t, valid.Validate())

	// Password is optional at the request level so federated logins pass.
	federated := authflow.LoginRequest{
		Provider:      "google",
		ProviderKey:   "oidc|10958",
		PrincipalType: authflow.PrincipalTypeMember,
	}
	require.NoError(t, federated.Validate())

	cases := map[string]authflow.LoginRequest{
		"missing provider": {
			ProviderKey:   "admin@example.com",
			PrincipalType: authflow.PrincipalTypeAdmin,
		},
		"missing provider key": {
			Provider:      authflow.ProviderLocal,
			PrincipalType: authflow.PrincipalTypeAdmin,
		},
		"missing principal type": {
			Provider:    authflow.ProviderLocal,
			ProviderKey: "admin@example.com",
		},
		"malformed email": {
			Provider:      authflow.ProviderLocal,
			ProviderKey:   "admin@example.com",
			PrincipalType: authflow.PrincipalTypeAdmin,
			Email:         "not-an-email",
		},
	}

	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, req.Validate())
		})
	}
}
