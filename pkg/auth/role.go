package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"slices"
)

const roleKey contextKey = "role"

// RoleLookup returns the role of userID.
type RoleLookup func(ctx context.Context, userID string) (string, error)

// WithRole stores the caller's role in the context.
func WithRole(ctx context.Context, role string) context.Context {
	return context.WithValue(ctx, roleKey, role)
}

// RoleFromContext returns the caller's role, or "" when not set.
func RoleFromContext(ctx context.Context) string {
	v, _ := ctx.Value(roleKey).(string)
	return v
}

// RoleMiddleware はログイン中ユーザーのロールを context にセットする。
// userID が無い場合や lookup に失敗した場合はロールを付与しない
func RoleMiddleware(lookup RoleLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := UserIDFromContext(r.Context())
			if !ok || userID == "" {
				next.ServeHTTP(w, r)
				return
			}
			role, err := lookup(r.Context(), userID)
			if err != nil || role == "" {
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithRole(r.Context(), role)))
		})
	}
}

// RequireRole rejects callers whose role is not in allowed with 403.
// It must run after RoleMiddleware.
func RequireRole(allowed ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !slices.Contains(allowed, RoleFromContext(r.Context())) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": "forbidden"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
