package ui

import (
	"context"
	"strings"
	"testing"

	"github.com/a-h/templ"
	"github.com/templui/securedocs/internal/markdown"
	"github.com/templui/securedocs/internal/model"
	"github.com/templui/securedocs/internal/service"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var b strings.Builder
	ctx := templ.WithNonce(context.Background(), "n0nce")
	if err := c.Render(ctx, &b); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	return b.String()
}

func TestDocumentPage(t *testing.T) {
	result := &service.ViewResult{
		Document: &model.Document{Title: "Fallback <title>"},
		Content:  &markdown.Rendered{HTML: []byte("<p>Hello</p>")},
		Downloads: []service.DownloadLink{
			{Index: 0, Name: `a "quoted".pdf`, URL: "https://x.test/secure/download?token=a.b&x=1"},
		},
	}

	html := render(t, DocumentPage(result))

	for _, want := range []string{
		"<title>Fallback &lt;title&gt;</title>",
		`<style nonce="n0nce">`,
		"<p>Hello</p>",
		`href="https://x.test/secure/download?token=a.b&amp;x=1"`,
		"a &#34;quoted&#34;.pdf",
		`name="robots" content="noindex, nofollow"`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("page missing %q:\n%s", want, html)
		}
	}
}

func TestPasswordPrompt(t *testing.T) {
	html := render(t, PasswordPrompt(PasswordForm{
		Action:    "/secure/view",
		Token:     "tok.sig",
		CSRFToken: "csrf",
		Failed:    true,
	}))

	for _, want := range []string{
		`action="/secure/view"`,
		`name="token" value="tok.sig"`,
		`name="csrf_token" value="csrf"`,
		"not correct",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestAccessDenied(t *testing.T) {
	html := render(t, AccessDenied("Link unavailable", "invalid or expired link"))
	if !strings.Contains(html, "invalid or expired link") {
		t.Errorf("page = %s", html)
	}
}
