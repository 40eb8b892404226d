package handler

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/templui/securedocs/internal/service"
)

type seoHandler struct {
	sitemapService *service.SitemapService
}

func NewSEOHandler(sitemapService *service.SitemapService) *seoHandler {
	return &seoHandler{
		sitemapService: sitemapService,
	}
}

// Robots serves robots.txt
func (h *seoHandler) Robots(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, h.sitemapService.RobotsTxt())
}

// Sitemap generates and serves the sitemap.xml dynamically
func (h *seoHandler) Sitemap(w http.ResponseWriter, r *http.Request) {
	sitemap, err := h.sitemapService.GenerateSitemap()
	if err != nil {
		slog.Error("failed to generate sitemap", "error", err)
		http.Error(w, "Failed to generate sitemap", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	_, _ = w.Write(sitemap)
}
