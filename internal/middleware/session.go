package middleware

import (
	"net/http"

	"github.com/ayush/realestate-site/internal/auth"
	"github.com/ayush/realestate-site/internal/logging"
)

// LoadSession resolves the visitor's session and injects the identity into
// the request context. It never rejects a request: an unreadable session is
// treated as anonymous.
func LoadSession(sessions *auth.Sessions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := sessions.Load(r)
			if err != nil {
				logging.FromContext(r.Context()).Debug("ignoring unusable session", "error", err)
				id = auth.Identity{}
			}

			ctx := auth.ContextWithIdentity(r.Context(), id)
			if id.IsAuthenticated() {
				ctx = logging.WithLogger(ctx, logging.FromContext(ctx).With("user_id", id.UserID))
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
