package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/templui/securedocs/internal/ctxkeys"
	"github.com/templui/securedocs/internal/model"
	"github.com/templui/securedocs/internal/service"
	"github.com/templui/securedocs/internal/ui"
	"github.com/templui/securedocs/internal/validation"
)

type secureHandler struct {
	pipeline         *service.AccessPipeline
	analyticsService *service.AnalyticsService
}

func NewSecureHandler(pipeline *service.AccessPipeline, analyticsService *service.AnalyticsService) *secureHandler {
	return &secureHandler{
		pipeline:         pipeline,
		analyticsService: analyticsService,
	}
}

func (h *secureHandler) caller(r *http.Request) service.Caller {
	return h.pipeline.Caller(ctxkeys.User(r.Context()), ctxkeys.Session(r.Context()))
}

// View serves GET /secure/view?token= and the password form POST.
func (h *secureHandler) View(w http.ResponseWriter, r *http.Request) {
	token := r.FormValue("token")
	password := r.PostFormValue("password")

	result, err := h.pipeline.SecureView(r.Context(), service.ViewRequest{
		Token:    token,
		Password: password,
		Caller:   h.caller(r),
		Meta:     requestMeta(r),
	})
	if passwordDenied(err) {
		ui.Render(w, r, http.StatusForbidden, ui.PasswordPrompt(ui.PasswordForm{
			Action:    "/secure/view",
			Token:     token,
			CSRFToken: ctxkeys.CSRFToken(r.Context()),
			Failed:    password != "",
		}))
		return
	}
	if err != nil {
		renderAccessError(w, r, err)
		return
	}

	ui.Render(w, r, http.StatusOK, ui.DocumentPage(result))
}

// Download serves GET and HEAD /secure/download?token=.
func (h *secureHandler) Download(w http.ResponseWriter, r *http.Request) {
	err := h.pipeline.SecureDownload(r.Context(), w, service.DownloadRequest{
		Token:       r.URL.Query().Get("token"),
		Caller:      h.caller(r),
		Meta:        requestMeta(r),
		HeadersOnly: r.Method == http.MethodHead,
	})
	if err != nil {
		renderAccessError(w, r, err)
	}
}

// Permalink serves GET and POST /documents/{id}.
func (h *secureHandler) Permalink(w http.ResponseWriter, r *http.Request) {
	documentID := r.PathValue("id")
	password := r.PostFormValue("password")

	result, err := h.pipeline.Permalink(r.Context(), service.PermalinkRequest{
		DocumentID: documentID,
		Password:   password,
		Caller:     h.caller(r),
		Meta:       requestMeta(r),
	})
	if passwordDenied(err) {
		ui.Render(w, r, http.StatusForbidden, ui.PasswordPrompt(ui.PasswordForm{
			Action:    "/documents/" + documentID,
			CSRFToken: ctxkeys.CSRFToken(r.Context()),
			Failed:    password != "",
		}))
		return
	}
	if err != nil {
		renderAccessError(w, r, err)
		return
	}

	ui.Render(w, r, http.StatusOK, ui.DocumentPage(result))
}

type mintRequest struct {
	TTL string `json:"ttl"`
}

type linkResponse struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
	URL   string `json:"url"`
}

type mintResponse struct {
	DocumentID string         `json:"document_id"`
	ViewURL    string         `json:"view_url"`
	Downloads  []linkResponse `json:"downloads"`
	ExpiresAt  time.Time      `json:"expires_at"`
}

// Links serves POST /api/documents/{id}/links.
func (h *secureHandler) Links(w http.ResponseWriter, r *http.Request) {
	var req mintRequest
	err := json.NewDecoder(io.LimitReader(r.Body, 4096)).Decode(&req)
	if err != nil && !errors.Is(err, io.EOF) {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ttl, err := validation.ParseLinkTTL(req.TTL)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	links, err := h.pipeline.MintLinks(r.Context(), h.caller(r), r.PathValue("id"), ttl)
	if err != nil {
		status, message := accessStatus(err)
		writeJSONError(w, status, message)
		return
	}

	resp := mintResponse{
		DocumentID: links.DocumentID,
		ViewURL:    links.View,
		Downloads:  make([]linkResponse, 0, len(links.Downloads)),
		ExpiresAt:  links.ExpiresAt,
	}
	for _, dl := range links.Downloads {
		resp.Downloads = append(resp.Downloads, linkResponse{Index: dl.Index, Name: dl.Name, URL: dl.URL})
	}

	writeJSON(w, http.StatusCreated, resp)
}

type statsResponse struct {
	DocumentID string                 `json:"document_id"`
	Views      int64                  `json:"views"`
	Downloads  int64                  `json:"downloads"`
	Allowed    map[model.Action]int64 `json:"allowed"`
	Denied     map[model.Action]int64 `json:"denied"`
	UniqueIPs  int64                  `json:"unique_ips"`
	LastAccess *time.Time             `json:"last_access,omitempty"`
	Events     []eventResponse        `json:"events"`
}

type eventResponse struct {
	Action    model.Action `json:"action"`
	Outcome   string       `json:"outcome"`
	Reason    string       `json:"reason,omitempty"`
	UserID    *string      `json:"user_id,omitempty"`
	IPAddress string       `json:"ip_address"`
	CreatedAt time.Time    `json:"created_at"`
}

// Stats serves GET /api/documents/{id}/stats?since=24h&limit=50.
func (h *secureHandler) Stats(w http.ResponseWriter, r *http.Request) {
	if !h.caller(r).Elevated {
		writeJSONError(w, http.StatusForbidden, "You do not have permission to view statistics.")
		return
	}

	documentID := r.PathValue("id")
	q := r.URL.Query()

	var since time.Time
	if v := q.Get("since"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			writeJSONError(w, http.StatusBadRequest, "since must be a positive duration")
			return
		}
		since = time.Now().Add(-d)
	}

	limit := uint64(50)
	if v := q.Get("limit"); v != "" {
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil || n == 0 || n > 500 {
			writeJSONError(w, http.StatusBadRequest, "limit must be between 1 and 500")
			return
		}
		limit = n
	}

	summary, err := h.analyticsService.Summary(documentID, since)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to load statistics")
		return
	}

	events, err := h.analyticsService.Events(model.EventFilter{
		DocumentID: documentID,
		Action:     model.Action(q.Get("action")),
		Outcome:    q.Get("outcome"),
		Since:      since,
		Limit:      limit,
	})
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to load statistics")
		return
	}

	resp := statsResponse{
		DocumentID: documentID,
		Views:      summary.Counters.Views,
		Downloads:  summary.Counters.Downloads,
		Allowed:    summary.Allowed,
		Denied:     summary.Denied,
		UniqueIPs:  summary.UniqueIPs,
		LastAccess: summary.LastAccess,
		Events:     make([]eventResponse, 0, len(events)),
	}
	for _, e := range events {
		resp.Events = append(resp.Events, eventResponse{
			Action:    e.Action,
			Outcome:   e.Outcome,
			Reason:    e.Reason,
			UserID:    e.UserID,
			IPAddress: e.IPAddress,
			CreatedAt: e.CreatedAt,
		})
	}

	writeJSON(w, http.StatusOK, resp)
}
