package middleware

import (
	"fmt"
	"net/http"

	"github.com/templui/securedocs/internal/ctxkeys"
)

// SecurityHeaders sets the baseline browser protections. Must run after
// NonceMiddleware so the CSP can allow the page's own inline styles.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()

		csp := "default-src 'self'; img-src 'self' data: https:; object-src 'none'; base-uri 'self'; frame-ancestors 'none'; form-action 'self'"
		if nonce := GetNonce(r.Context()); nonce != "" {
			csp += fmt.Sprintf("; style-src 'self' 'nonce-%s'; script-src 'self' 'nonce-%s'", nonce, nonce)
		}
		h.Set("Content-Security-Policy", csp)
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")

		cfg := ctxkeys.Config(r.Context())
		if cfg != nil && cfg.IsProduction() {
			h.Set("Strict-Transport-Security", "max-age=63072000; includeSubDomains")
		}

		next.ServeHTTP(w, r)
	})
}
