package service

import (
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/templui/securedocs/internal/model"
	"github.com/templui/securedocs/internal/repository"
)

type SitemapService struct {
	documentRepository repository.DocumentRepository
	baseURL            string
	hidden             bool
}

// NewSitemapService creates a sitemap over unrestricted documents.
// With hidden set the sitemap is always empty.
func NewSitemapService(documentRepository repository.DocumentRepository, baseURL string, hidden bool) *SitemapService {
	// Ensure baseURL doesn't have trailing slash
	baseURL = strings.TrimSuffix(baseURL, "/")

	return &SitemapService{
		documentRepository: documentRepository,
		baseURL:            baseURL,
		hidden:             hidden,
	}
}

// GenerateSitemap lists every published document that anyone may open.
func (s *SitemapService) GenerateSitemap() ([]byte, error) {
	sitemap := model.Sitemap{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  []model.SitemapURL{},
	}

	if !s.hidden {
		docs, err := s.documentRepository.Listed()
		if err != nil {
			return nil, fmt.Errorf("failed to list documents: %w", err)
		}

		for _, doc := range docs {
			sitemap.URLs = append(sitemap.URLs, model.SitemapURL{
				Loc:        s.baseURL + "/documents/" + doc.ID,
				LastMod:    doc.UpdatedAt.Format("2006-01-02"),
				ChangeFreq: "weekly",
				Priority:   "0.6",
			})
		}
	}

	// Generate XML
	output, err := xml.MarshalIndent(sitemap, "", "  ")
	if err != nil {
		return nil, err
	}

	// Add XML header
	result := xml.Header + string(output)
	return []byte(result), nil
}

// RobotsTxt keeps crawlers away from secure link endpoints.
func (s *SitemapService) RobotsTxt() string {
	var b strings.Builder
	b.WriteString("User-agent: *\n")
	b.WriteString("Disallow: /secure/\n")
	b.WriteString("Disallow: /api/\n")
	b.WriteString("Disallow: /auth/\n")
	if s.hidden {
		b.WriteString("Disallow: /documents/\n")
	}
	b.WriteString("\nSitemap: " + s.baseURL + "/sitemap.xml\n")
	return b.String()
}
