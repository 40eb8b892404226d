package ui

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
	"github.com/templui/securedocs/internal/service"
)

const pageStyle = `body{font-family:system-ui,sans-serif;max-width:46rem;margin:2rem auto;padding:0 1rem;line-height:1.6;color:#1f2933}
.notice{padding:1rem;border-radius:.5rem;background:#fff4e5;border:1px solid #f5c77e}
.downloads{margin-top:2rem;padding-top:1rem;border-top:1px solid #e4e7eb}
form{display:flex;gap:.5rem;margin-top:1rem}input[type=password]{flex:1;padding:.5rem}button{padding:.5rem 1rem}`

// PasswordForm describes where a password prompt posts to.
type PasswordForm struct {
	Action    string
	Token     string
	CSRFToken string
	Failed    bool
}

func layout(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w,
			`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1"><meta name="robots" content="noindex, nofollow"><title>%s</title><style nonce="%s">%s</style></head><body>`,
			templ.EscapeString(title),
			templ.EscapeString(templ.GetNonce(ctx)),
			pageStyle,
		)
		if err != nil {
			return err
		}

		err = body.Render(ctx, w)
		if err != nil {
			return err
		}

		_, err = io.WriteString(w, `</body></html>`)
		return err
	})
}

// DocumentPage shows rendered document content and its download links.
func DocumentPage(result *service.ViewResult) templ.Component {
	title := result.Content.Title()
	if title == "" {
		title = result.Document.Title
	}

	return layout(title, templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<main><h1>%s</h1><article>`, templ.EscapeString(title))
		if err != nil {
			return err
		}

		// Goldmark output; raw HTML in the source is dropped by the parser.
		err = templ.Raw(string(result.Content.HTML)).Render(ctx, w)
		if err != nil {
			return err
		}

		_, err = io.WriteString(w, `</article>`)
		if err != nil {
			return err
		}

		if len(result.Downloads) > 0 {
			_, err = io.WriteString(w, `<section class="downloads"><h2>Downloads</h2><ul>`)
			if err != nil {
				return err
			}
			for _, dl := range result.Downloads {
				_, err = fmt.Fprintf(w, `<li><a href="%s" rel="nofollow noopener">%s</a></li>`,
					templ.EscapeString(dl.URL),
					templ.EscapeString(dl.Name),
				)
				if err != nil {
					return err
				}
			}
			_, err = io.WriteString(w, `</ul></section>`)
			if err != nil {
				return err
			}
		}

		_, err = io.WriteString(w, `</main>`)
		return err
	}))
}

// PasswordPrompt asks for a document password.
func PasswordPrompt(form PasswordForm) templ.Component {
	return layout("Password required", templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<main><h1>Password required</h1><p>This document is password protected.</p>`)
		if err != nil {
			return err
		}

		if form.Failed {
			_, err = io.WriteString(w, `<p class="notice" role="alert">That password was not correct.</p>`)
			if err != nil {
				return err
			}
		}

		_, err = fmt.Fprintf(w, `<form method="post" action="%s"><input type="hidden" name="csrf_token" value="%s">`,
			templ.EscapeString(form.Action),
			templ.EscapeString(form.CSRFToken),
		)
		if err != nil {
			return err
		}

		if form.Token != "" {
			_, err = fmt.Fprintf(w, `<input type="hidden" name="token" value="%s">`, templ.EscapeString(form.Token))
			if err != nil {
				return err
			}
		}

		_, err = io.WriteString(w, `<input type="password" name="password" autocomplete="current-password" required autofocus><button type="submit">Open</button></form></main>`)
		return err
	}))
}

// AccessDenied is the error page for every refused request.
func AccessDenied(title, message string) templ.Component {
	return layout(title, templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<main><h1>%s</h1><p class="notice">%s</p></main>`,
			templ.EscapeString(title),
			templ.EscapeString(message),
		)
		return err
	}))
}
