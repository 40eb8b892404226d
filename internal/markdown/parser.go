package markdown

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"
	"go.abhg.dev/goldmark/frontmatter"
)

// Rendered is document content converted for display.
type Rendered struct {
	HTML []byte
	Meta map[string]any
}

// Title returns the frontmatter title, if any.
func (r *Rendered) Title() string {
	title, _ := r.Meta["title"].(string)
	return title
}

// Parser converts document markdown to HTML. Raw HTML in the source is
// not passed through.
type Parser struct {
	md goldmark.Markdown
}

func NewParser() *Parser {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Footnote,
			extension.Typographer,
			&frontmatter.Extender{},
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			goldmarkhtml.WithHardWraps(),
			goldmarkhtml.WithXHTML(),
		),
	)

	return &Parser{
		md: md,
	}
}

func (p *Parser) Render(source string) (*Rendered, error) {
	context := parser.NewContext()
	var buf bytes.Buffer

	err := p.md.Convert([]byte(source), &buf, parser.WithContext(context))
	if err != nil {
		return nil, err
	}

	meta := make(map[string]any)
	if data := frontmatter.Get(context); data != nil {
		err = data.Decode(&meta)
		if err != nil {
			meta = make(map[string]any)
		}
	}

	return &Rendered{HTML: buf.Bytes(), Meta: meta}, nil
}
