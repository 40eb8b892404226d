package handler

import (
	"net/http"

	"github.com/jmoiron/sqlx"
	"github.com/templui/securedocs/internal/db"
)

type healthHandler struct {
	db *sqlx.DB
}

func NewHealthHandler(database *sqlx.DB) *healthHandler {
	return &healthHandler{db: database}
}

func (h *healthHandler) Health(w http.ResponseWriter, r *http.Request) {
	err := db.Healthy(r.Context(), h.db)
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
