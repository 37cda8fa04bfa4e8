package middleware

import (
	"context"
	"net/http"

	"github.com/go-chi/jwtauth/v5"

	"school_journal/internal/common"
	"school_journal/internal/common/security"
)

type contextKey string

const (
	UserIDCtxKey   contextKey = "userID"
	UsernameCtxKey contextKey = "username"
	UserRoleCtxKey contextKey = "userRole"
)

// Authenticator rejects requests whose bearer token is missing,
// invalid or expired, and attaches the token's identity and role to
// the request context. jwtauth.Verifier must run earlier in the chain.
func Authenticator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, claims, err := jwtauth.FromContext(r.Context())
		if err != nil || token == nil {
			common.RespondWithError(w, http.StatusUnauthorized, "invalid or missing token")
			return
		}

		userID, err := security.GetUserIDFromClaims(claims)
		if err != nil {
			common.RespondWithError(w, http.StatusUnauthorized, "invalid token claims: "+err.Error())
			return
		}
		username, err := security.GetUsernameFromClaims(claims)
		if err != nil {
			common.RespondWithError(w, http.StatusUnauthorized, "invalid token claims: "+err.Error())
			return
		}
		role, err := security.GetUserRoleFromClaims(claims)
		if err != nil {
			common.RespondWithError(w, http.StatusUnauthorized, "invalid token claims: "+err.Error())
			return
		}

		ctx := context.WithValue(r.Context(), UserIDCtxKey, userID)
		ctx = context.WithValue(ctx, UsernameCtxKey, username)
		ctx = context.WithValue(ctx, UserRoleCtxKey, role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole gates a route on an exact role match. A mismatch answers
// 401, not 403, so it cannot be told apart from a failed
// authentication.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got, ok := r.Context().Value(UserRoleCtxKey).(string)
			if !ok || got != role {
				common.RespondWithError(w, http.StatusUnauthorized, "access denied")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Helpers to read the authenticated identity from the context.
func GetUserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDCtxKey).(string)
	return userID, ok
}

func GetUserRoleFromContext(ctx context.Context) (string, bool) {
	role, ok := ctx.Value(UserRoleCtxKey).(string)
	return role, ok
}
