package security

import (
	"errors"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/golang-jwt/jwt/v5"
)

// TokenService issues HS256 session tokens carrying identity and role.
// The signing key is injected once at construction; tokens are
// stateless and stay valid for their full lifetime.
type TokenService struct {
	tokenAuth *jwtauth.JWTAuth
	expiry    time.Duration
}

func NewTokenService(key []byte, expiry time.Duration) *TokenService {
	return &TokenService{
		tokenAuth: jwtauth.New("HS256", key, nil),
		expiry:    expiry,
	}
}

// TokenAuth exposes the verifier for the router middleware.
func (s *TokenService) TokenAuth() *jwtauth.JWTAuth {
	return s.tokenAuth
}

func (s *TokenService) GenerateToken(userID, username, role string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id":  userID,
		"username": username,
		"role":     role,
		"exp":      now.Add(s.expiry).Unix(),
		"iat":      now.Unix(),
	}
	_, tokenString, err := s.tokenAuth.Encode(claims)
	return tokenString, err
}

// Helper functions to extract claims, used by the auth middleware.
func GetUserIDFromClaims(claims map[string]interface{}) (string, error) {
	id, ok := claims["user_id"].(string)
	if !ok {
		return "", errors.New("user_id claim is missing or not a string")
	}
	return id, nil
}

func GetUsernameFromClaims(claims map[string]interface{}) (string, error) {
	username, ok := claims["username"].(string)
	if !ok {
		return "", errors.New("username claim is missing or not a string")
	}
	return username, nil
}

func GetUserRoleFromClaims(claims map[string]interface{}) (string, error) {
	role, ok := claims["role"].(string)
	if !ok {
		return "", errors.New("role claim is missing or not a string")
	}
	return role, nil
}
