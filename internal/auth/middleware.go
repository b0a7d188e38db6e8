// Package auth trusts bearer tokens issued by the identity provider and exposes the
// caller's user id to handlers.
package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/taiwoajasa245/reading-engine-api/pkg/response"
	"github.com/taiwoajasa245/reading-engine-api/pkg/util"
)

type contextKey string

const userIDContextKey contextKey = "user_id"

// AuthMiddleware rejects requests without a valid HS256 bearer token whose subject is a uuid.
func AuthMiddleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				response.Error(w, http.StatusUnauthorized, "Missing Authorization header", "user not logged in")
				return
			}

			// Must start with "Bearer "
			if !strings.HasPrefix(authHeader, "Bearer ") {
				response.Error(w, http.StatusUnauthorized, "Invalid token format", "")
				return
			}

			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
			claims, err := util.ValidateJWT(tokenStr, secret)
			if err != nil {
				response.Error(w, http.StatusUnauthorized, "Invalid or expired token", err.Error())
				return
			}

			userID, err := claims.UserID()
			if err != nil {
				response.Error(w, http.StatusUnauthorized, "Invalid token subject", err.Error())
				return
			}

			ctx := context.WithValue(r.Context(), userIDContextKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetUserIDFromContext(r *http.Request) (uuid.UUID, bool) {
	id, ok := r.Context().Value(userIDContextKey).(uuid.UUID)
	return id, ok
}
