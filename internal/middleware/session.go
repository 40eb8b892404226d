package middleware

import (
	"log/slog"
	"net/http"

	"github.com/templui/securedocs/internal/ctxkeys"
	"github.com/templui/securedocs/internal/session"
)

// Sessions loads or starts the visitor session and puts it on the context.
// A broken session store degrades to session-less requests.
func Sessions(manager *session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, err := manager.Load(w, r)
			if err != nil {
				slog.ErrorContext(r.Context(), "failed to start session", "error", err)
				next.ServeHTTP(w, r)
				return
			}

			ctx := ctxkeys.WithSession(r.Context(), sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
