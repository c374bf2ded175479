package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "unit-test-secret"

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken(testSecret, time.Hour, 42, "provider")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateToken(testSecret, token)
	require.NoError(t, err)

	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "provider", claims.Role)
	assert.Equal(t, "42", claims.Subject)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	token, err := GenerateToken(testSecret, time.Hour, 42, "customer")
	require.NoError(t, err)

	_, err = ValidateToken("other-secret", token)
	assert.Error(t, err)
}

func TestValidateTokenExpired(t *testing.T) {
	token, err := GenerateToken(testSecret, -time.Minute, 42, "customer")
	require.NoError(t, err)

	_, err = ValidateToken(testSecret, token)
	assert.Error(t, err)
}

func TestValidateTokenGarbage(t *testing.T) {
	_, err := ValidateToken(testSecret, "not.a.token")
	assert.Error(t, err)
}
