package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"school_journal/internal/common/security"
	"school_journal/internal/domain/model"
)

func protectedRouter(tokens *security.TokenService) http.Handler {
	r := chi.NewRouter()
	r.Use(jwtauth.Verifier(tokens.TokenAuth()))
	r.Use(Authenticator)

	r.Get("/any", func(w http.ResponseWriter, r *http.Request) {
		userID, _ := GetUserIDFromContext(r.Context())
		w.Write([]byte(userID))
	})

	r.Group(func(teacherOnly chi.Router) {
		teacherOnly.Use(RequireRole(model.RoleTeacher))
		teacherOnly.Get("/teacher", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
	})
	return r
}

func doRequest(t *testing.T, router http.Handler, path, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestAuthenticator_MissingToken(t *testing.T) {
	tokens := security.NewTokenService([]byte("test-secret"), time.Hour)
	router := protectedRouter(tokens)

	rec := doRequest(t, router, "/any", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticator_ValidTokenAttachesIdentity(t *testing.T) {
	tokens := security.NewTokenService([]byte("test-secret"), time.Hour)
	router := protectedRouter(tokens)

	token, err := tokens.GenerateToken("user-1", "alice", model.RoleStudent)
	require.NoError(t, err)

	rec := doRequest(t, router, "/any", token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1", rec.Body.String())
}

func TestAuthenticator_ExpiredToken(t *testing.T) {
	tokens := security.NewTokenService([]byte("test-secret"), time.Hour)
	router := protectedRouter(tokens)

	now := time.Now()
	_, token, err := tokens.TokenAuth().Encode(jwt.MapClaims{
		"user_id":  "user-1",
		"username": "alice",
		"role":     model.RoleStudent,
		"iat":      now.Add(-2 * time.Hour).Unix(),
		"exp":      now.Add(-time.Hour).Unix(),
	})
	require.NoError(t, err)

	rec := doRequest(t, router, "/any", token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticator_TamperedToken(t *testing.T) {
	tokens := security.NewTokenService([]byte("test-secret"), time.Hour)
	foreign := security.NewTokenService([]byte("other-secret"), time.Hour)
	router := protectedRouter(tokens)

	token, err := foreign.GenerateToken("user-1", "alice", model.RoleTeacher)
	require.NoError(t, err)

	rec := doRequest(t, router, "/teacher", token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// A wrong role answers 401, deliberately identical to a failed
// authentication.
func TestRequireRole_WrongRoleIs401(t *testing.T) {
	tokens := security.NewTokenService([]byte("test-secret"), time.Hour)
	router := protectedRouter(tokens)

	token, err := tokens.GenerateToken("user-1", "bob", model.RoleStudent)
	require.NoError(t, err)

	rec := doRequest(t, router, "/teacher", token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRole_MatchPasses(t *testing.T) {
	tokens := security.NewTokenService([]byte("test-secret"), time.Hour)
	router := protectedRouter(tokens)

	token, err := tokens.GenerateToken("user-1", "alice", model.RoleTeacher)
	require.NoError(t, err)

	rec := doRequest(t, router, "/teacher", token)
	assert.Equal(t, http.StatusOK, rec.Code)
}
