package ui

import (
	"log/slog"
	"net/http"

	"github.com/a-h/templ"
)

// Render writes c with status. Pages are never cached: they can carry
// freshly minted secure links.
func Render(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)

	err := c.Render(r.Context(), w)
	if err != nil {
		slog.Error("render failed", "error", err, "path", r.URL.Path)
	}
}
