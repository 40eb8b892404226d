package middleware

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"log/slog"
	"net/http"

	"github.com/templui/securedocs/internal/ctxkeys"
)

const (
	csrfCookieName = "csrf_token"
	CSRFFormField  = "csrf_token"
	CSRFHeader     = "X-CSRF-Token"
	csrfTokenLen   = 32
)

// CSRFProtection uses the double-submit cookie pattern. Safe methods get a
// token on the context for forms; unsafe methods must echo it back in the
// X-CSRF-Token header or the csrf_token form field.
func CSRFProtection(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := getOrGenerateCSRFToken(w, r)
		ctx := ctxkeys.WithCSRFToken(r.Context(), token)

		if safeMethod(r.Method) {
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		// Header first (JSON API clients), then the form field.
		// PostFormValue parses urlencoded and multipart bodies alike.
		submitted := r.Header.Get(CSRFHeader)
		if submitted == "" {
			submitted = r.PostFormValue(CSRFFormField)
		}

		// A missing cookie means token was just generated, so this fails too
		if !validCSRFToken(token, submitted) {
			slog.Warn("csrf validation failed",
				"path", r.URL.Path,
				"method", r.Method,
				"ip", ClientIP(r),
			)
			http.Error(w, "Invalid CSRF token", http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func safeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

// getOrGenerateCSRFToken reuses the cookie token when it has the expected
// length and issues a fresh one otherwise.
func getOrGenerateCSRFToken(w http.ResponseWriter, r *http.Request) string {
	cookie, err := r.Cookie(csrfCookieName)
	if err == nil && len(cookie.Value) == base64.RawURLEncoding.EncodedLen(csrfTokenLen) {
		return cookie.Value
	}

	token := generateCSRFToken()

	cfg := ctxkeys.Config(r.Context())
	isProduction := cfg != nil && cfg.IsProduction()

	http.SetCookie(w, &http.Cookie{
		Name:     csrfCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   isProduction, // From APP_ENV, r.TLS is unset behind a TLS-terminating proxy
		SameSite: http.SameSiteLaxMode,
		MaxAge:   86400 * 7, // 7 days
	})

	return token
}

func generateCSRFToken() string {
	bytes := make([]byte, csrfTokenLen)
	_, err := rand.Read(bytes)
	if err != nil {
		// crypto/rand only fails if the OS entropy source is broken
		panic("failed to generate csrf token: " + err.Error())
	}
	return base64.RawURLEncoding.EncodeToString(bytes)
}

// validCSRFToken compares in constant time.
func validCSRFToken(expected, actual string) bool {
	if expected == "" || actual == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(actual)) == 1
}
