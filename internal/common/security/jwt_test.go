package security

import (
	"context"
	"testing"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateToken_CarriesIdentityAndRole(t *testing.T) {
	svc := NewTokenService([]byte("test-secret"), time.Hour)

	tokenString, err := svc.GenerateToken("user-1", "alice", "teacher")
	require.NoError(t, err)

	token, err := jwtauth.VerifyToken(svc.TokenAuth(), tokenString)
	require.NoError(t, err)

	claims, err := token.AsMap(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims["user_id"])
	assert.Equal(t, "alice", claims["username"])
	assert.Equal(t, "teacher", claims["role"])
}

func TestVerifyToken_AcceptsUnexpired(t *testing.T) {
	svc := NewTokenService([]byte("test-secret"), time.Hour)

	// Issued with a 1h lifetime; still short of expiry.
	now := time.Now()
	_, tokenString, err := svc.TokenAuth().Encode(jwt.MapClaims{
		"user_id":  "user-1",
		"username": "alice",
		"role":     "teacher",
		"iat":      now.Add(-59 * time.Minute).Unix(),
		"exp":      now.Add(time.Minute).Unix(),
	})
	require.NoError(t, err)

	_, err = jwtauth.VerifyToken(svc.TokenAuth(), tokenString)
	assert.NoError(t, err)
}

func TestVerifyToken_RejectsExpired(t *testing.T) {
	svc := NewTokenService([]byte("test-secret"), time.Hour)

	// Issued with a 1h lifetime; past expiry.
	now := time.Now()
	_, tokenString, err := svc.TokenAuth().Encode(jwt.MapClaims{
		"user_id":  "user-1",
		"username": "alice",
		"role":     "teacher",
		"iat":      now.Add(-61 * time.Minute).Unix(),
		"exp":      now.Add(-time.Minute).Unix(),
	})
	require.NoError(t, err)

	_, err = jwtauth.VerifyToken(svc.TokenAuth(), tokenString)
	assert.Error(t, err)
}

func TestVerifyToken_RejectsWrongKey(t *testing.T) {
	issuer := NewTokenService([]byte("issuer-secret"), time.Hour)
	verifier := NewTokenService([]byte("other-secret"), time.Hour)

	tokenString, err := issuer.GenerateToken("user-1", "alice", "student")
	require.NoError(t, err)

	_, err = jwtauth.VerifyToken(verifier.TokenAuth(), tokenString)
	assert.Error(t, err)
}

func TestGetClaims_MissingOrWrongType(t *testing.T) {
	claims := map[string]interface{}{"user_id": 42}

	_, err := GetUserIDFromClaims(claims)
	assert.Error(t, err)
	_, err = GetUsernameFromClaims(claims)
	assert.Error(t, err)
	_, err = GetUserRoleFromClaims(claims)
	assert.Error(t, err)
}
