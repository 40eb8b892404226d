package service

import (
	"strings"
	"testing"

	"github.com/templui/securedocs/internal/db/dbtest"
	"github.com/templui/securedocs/internal/model"
	"github.com/templui/securedocs/internal/repository"
)

func TestSitemapService(t *testing.T) {
	database := dbtest.New(t)
	documents := repository.NewDocumentRepository(database)

	open := &model.Document{Title: "Open", Published: true}
	locked := &model.Document{Title: "Locked", Published: true, PasswordProtected: true}
	for _, d := range []*model.Document{open, locked} {
		if err := documents.Create(d); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	t.Run("lists unrestricted documents", func(t *testing.T) {
		out, err := NewSitemapService(documents, "https://docs.example.test/", false).GenerateSitemap()
		if err != nil {
			t.Fatalf("GenerateSitemap() error = %v", err)
		}
		xml := string(out)
		if !strings.Contains(xml, "https://docs.example.test/documents/"+open.ID) {
			t.Errorf("sitemap missing open document:\n%s", xml)
		}
		if strings.Contains(xml, locked.ID) {
			t.Errorf("sitemap lists password protected document:\n%s", xml)
		}
	})

	t.Run("hidden", func(t *testing.T) {
		svc := NewSitemapService(documents, "https://docs.example.test", true)
		out, err := svc.GenerateSitemap()
		if err != nil {
			t.Fatalf("GenerateSitemap() error = %v", err)
		}
		if strings.Contains(string(out), "<url>") {
			t.Errorf("hidden sitemap lists documents:\n%s", out)
		}
		if !strings.Contains(svc.RobotsTxt(), "Disallow: /documents/") {
			t.Error("robots.txt does not hide documents")
		}
	})
}
