package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/templui/securedocs/internal/middleware"
	"github.com/templui/securedocs/internal/service"
	"github.com/templui/securedocs/internal/ui"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)

	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		slog.Error("failed to encode json response", "error", err)
	}
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// accessStatus maps a pipeline error to the HTTP status and a message that
// is safe to show.
func accessStatus(err error) (int, string) {
	switch service.Classify(err) {
	case service.ClassSuccess:
		return http.StatusOK, ""
	case service.ClassPermissionDenied:
		if service.IsTokenError(err) {
			return http.StatusForbidden, service.PublicTokenMessage
		}
		var denied *service.PolicyDeniedError
		if errors.As(err, &denied) {
			if denied.Reason == service.ReasonLoginRequired {
				return http.StatusUnauthorized, denied.Message()
			}
			return http.StatusForbidden, denied.Message()
		}
		return http.StatusForbidden, "Access denied."
	case service.ClassNotFound:
		return http.StatusNotFound, "Document not found."
	}

	if errors.Is(err, service.ErrUnavailable) {
		return http.StatusBadGateway, "The file is temporarily unavailable. Please try again later."
	}
	return http.StatusInternalServerError, "Something went wrong."
}

func renderAccessError(w http.ResponseWriter, r *http.Request, err error) {
	status, message := accessStatus(err)
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "secure access failed", "error", err, "path", r.URL.Path)
	}

	title := "Access denied"
	switch status {
	case http.StatusNotFound:
		title = "Not found"
	case http.StatusBadGateway, http.StatusInternalServerError:
		title = "Unavailable"
	}
	if service.IsTokenError(err) {
		title = "Link unavailable"
	}

	ui.Render(w, r, status, ui.AccessDenied(title, message))
}

func requestMeta(r *http.Request) service.RequestMeta {
	return service.RequestMeta{
		IPAddress: middleware.ClientIP(r),
		UserAgent: r.UserAgent(),
	}
}

func passwordDenied(err error) bool {
	var denied *service.PolicyDeniedError
	return errors.As(err, &denied) && denied.Reason == service.ReasonPassword
}
