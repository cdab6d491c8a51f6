package middleware

import (
	"net/http"

	"library-catalog/internal/authz"
)

// RequireCapability gates a route group on a capability. Anonymous
// requests go to the login page; logged-in users without the capability
// get 403. The guarded handlers are never invoked without it.
func RequireCapability(caps authz.Checker, capability authz.Capability) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := GetSessionFromContext(r.Context())
			if sess == nil {
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}

			if !caps.HasCapability(sess.User, capability) {
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
