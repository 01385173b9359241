package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestSessionTokenRoundTrip(t *testing.T) {
	token, expiresAt, err := GenerateSessionToken("google-123", "Ana", "ana@example.com", "https://img/ana.png", testSecret, time.Hour)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := ValidateSessionToken(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "google-123", claims.Subject)
	assert.Equal(t, "Ana", claims.Name)
	assert.Equal(t, "ana@example.com", claims.Email)
	assert.Equal(t, "https://img/ana.png", claims.Image)
}

func TestValidateSessionTokenRejects(t *testing.T) {
	valid, _, err := GenerateSessionToken("u1", "U", "u@example.com", "", testSecret, time.Hour)
	require.NoError(t, err)

	t.Run("wrong secret", func(t *testing.T) {
		_, err := ValidateSessionToken(valid, "other-secret")
		assert.Error(t, err)
	})

	t.Run("expired", func(t *testing.T) {
		expired, _, err := GenerateSessionToken("u1", "U", "u@example.com", "", testSecret, -time.Minute)
		require.NoError(t, err)
		_, err = ValidateSessionToken(expired, testSecret)
		assert.Error(t, err)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := ValidateSessionToken("not-a-token", testSecret)
		assert.Error(t, err)
	})

	t.Run("missing subject", func(t *testing.T) {
		token, _, err := GenerateSessionToken("", "U", "u@example.com", "", testSecret, time.Hour)
		require.NoError(t, err)
		_, err = ValidateSessionToken(token, testSecret)
		assert.Error(t, err)
	})

	t.Run("foreign issuer", func(t *testing.T) {
		claims := jwt.RegisteredClaims{
			Subject:   "u1",
			Issuer:    "someone-else",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
		require.NoError(t, err)
		_, err = ValidateSessionToken(token, testSecret)
		assert.Error(t, err)
	})

	t.Run("none algorithm", func(t *testing.T) {
		claims := SessionClaims{RegisteredClaims: jwt.RegisteredClaims{Subject: "u1", Issuer: sessionIssuer}}
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = ValidateSessionToken(token, testSecret)
		assert.Error(t, err)
	})
}

func TestGenerateRandomString(t *testing.T) {
	a, err := GenerateRandomString(16)
	require.NoError(t, err)
	b, err := GenerateRandomString(16)
	require.NoError(t, err)

	assert.Len(t, a, 32)
	assert.NotEqual(t, a, b)
}
