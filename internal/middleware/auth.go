package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/studybuddy/studybuddy-api/internal/auth"
	"github.com/studybuddy/studybuddy-api/internal/config"
)

// contextKey avoids collisions with other packages' context values.
type contextKey string

const (
	userIDKey   contextKey = "userID"
	usernameKey contextKey = "username"
)

// Auth validates the bearer token and injects the verified identity into
// the request context. Everything behind it can treat the user ID as
// authenticated.
func Auth(next http.Handler, authCfg config.AuthConfig) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			writeAuthError(w, "missing authorization header")
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			writeAuthError(w, "authorization header must be of form: Bearer <token>")
			return
		}

		claims, err := auth.ValidateToken(parts[1], authCfg)
		if err != nil {
			writeAuthError(w, "invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, claims.UserID)
		ctx = context.WithValue(ctx, usernameKey, claims.Username)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserID returns the authenticated user ID from the request context.
func UserID(ctx context.Context) (uint64, bool) {
	id, ok := ctx.Value(userIDKey).(uint64)
	return id, ok
}

// Username returns the authenticated username from the request context.
func Username(ctx context.Context) (string, bool) {
	name, ok := ctx.Value(usernameKey).(string)
	return name, ok
}

func writeAuthError(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
