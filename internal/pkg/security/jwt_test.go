package security

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateToken(t *testing.T) {
	token, err := GenerateToken(42, "someone@linkup.dev")
	require.NoError(t, err)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	require.Equal(t, uint64(42), claims.UserID)
	require.Equal(t, "someone@linkup.dev", claims.Email)
}

func TestValidateExpiredToken(t *testing.T) {
	claims := &UserClaims{
		UserID: 42,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret())
	require.NoError(t, err)

	_, err = ValidateToken(token)
	require.Error(t, err)
}

func TestValidateTamperedToken(t *testing.T) {
	token, err := GenerateToken(42, "someone@linkup.dev")
	require.NoError(t, err)

	_, err = ValidateToken(token + "x")
	require.Error(t, err)
}

func TestExtractSignature(t *testing.T) {
	token, err := GenerateToken(42, "someone@linkup.dev")
	require.NoError(t, err)

	sig, err := ExtractSignature(token)
	require.NoError(t, err)
	require.Equal(t, strings.Split(token, ".")[2], sig)

	_, err = ExtractSignature("not-a-token")
	require.Error(t, err)
}
