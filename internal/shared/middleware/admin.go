package middleware

import (
	"errors"
	"net/http"

	"smsledger/internal/shared/auth"
)

// AdminKeyHeader carries the admin key for privileged endpoints.
const AdminKeyHeader = "X-Admin-Key"

// AdminKey rejects requests whose X-Admin-Key does not match the bcrypt hash.
func AdminKey(hash string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch err := auth.VerifyAdminKey(hash, r.Header.Get(AdminKeyHeader)); {
			case errors.Is(err, auth.ErrEmptyKey):
				http.Error(w, "Admin key required", http.StatusUnauthorized)
				return
			case err != nil:
				http.Error(w, "Invalid admin key", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
