package middleware

import (
	"context"
	"net/http"

	"library-catalog/internal/models"
	"library-catalog/internal/session"
)

type contextKey string

const sessionContextKey contextKey = "session"

// SessionMiddleware attaches the request's session to the context when a
// valid session cookie is present.
func SessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, exists := session.GetSessionFromRequest(r)
		if exists {
			ctx := context.WithValue(r.Context(), sessionContextKey, sess)
			r = r.WithContext(ctx)
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAuth redirects anonymous requests to the login page.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := GetSessionFromContext(r.Context())
		if sess == nil {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetSessionFromContext returns the request's session, or nil.
func GetSessionFromContext(ctx context.Context) *session.Session {
	sess, ok := ctx.Value(sessionContextKey).(*session.Session)
	if !ok {
		return nil
	}
	return sess
}

// UserFromContext returns the logged-in user, or nil for anonymous
// requests.
func UserFromContext(ctx context.Context) *models.User {
	sess := GetSessionFromContext(ctx)
	if sess == nil {
		return nil
	}
	return sess.User
}
