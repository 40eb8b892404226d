package markdown

import (
	"strings"
	"testing"
)

func TestRender(t *testing.T) {
	p := NewParser()

	tests := []struct {
		name      string
		source    string
		wantHTML  string
		wantTitle string
	}{
		{
			name:     "plain markdown",
			source:   "# Heading\n\nSome **bold** text.",
			wantHTML: "<strong>bold</strong>",
		},
		{
			name:      "frontmatter title",
			source:    "---\ntitle: Handbook\n---\n\nBody",
			wantHTML:  "<p>Body</p>",
			wantTitle: "Handbook",
		},
		{
			name:     "raw html is not passed through",
			source:   "<script>alert(1)</script>",
			wantHTML: "<!-- raw HTML omitted -->",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.Render(tt.source)
			if err != nil {
				t.Fatalf("Render() error = %v", err)
			}
			if !strings.Contains(string(got.HTML), tt.wantHTML) {
				t.Errorf("Render() html = %q, want it to contain %q", got.HTML, tt.wantHTML)
			}
			if got.Title() != tt.wantTitle {
				t.Errorf("Title() = %q, want %q", got.Title(), tt.wantTitle)
			}
		})
	}
}
