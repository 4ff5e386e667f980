// Package templates renders the HTML pages of the enrollment dashboard.
//
// Components are templ.Component values built with templ.ComponentFunc;
// every piece of dataset text goes through templ.EscapeString.
package templates

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/enrollview/internal/core"
)

// htmlWriter remembers the first write error so components can emit many
// fragments and check once.
type htmlWriter struct {
	w   io.Writer
	err error
}

func (h *htmlWriter) raw(s string) {
	if h.err != nil {
		return
	}
	_, h.err = io.WriteString(h.w, s)
}

func (h *htmlWriter) rawf(format string, args ...any) {
	if h.err != nil {
		return
	}
	_, h.err = fmt.Fprintf(h.w, format, args...)
}

func (h *htmlWriter) text(s string) {
	h.raw(templ.EscapeString(s))
}

func (h *htmlWriter) component(ctx context.Context, c templ.Component) {
	if h.err != nil || c == nil {
		return
	}
	h.err = c.Render(ctx, h.w)
}

// Page wraps body in the shared document shell.
func Page(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		h.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		h.rawf(`<title>%s</title>`, templ.EscapeString(title))
		h.raw(`</head><body><header><h1><a href="/">Enrollment</a></h1></header><main>`)
		h.component(ctx, body)
		h.raw(`</main></body></html>`)
		return h.err
	})
}

// ErrorAlert renders a user-facing error with its support code.
func ErrorAlert(message, action, code string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<div class="alert alert-error" role="alert"><p class="alert-message">`)
		h.text(message)
		h.raw(`</p>`)
		if action != "" {
			h.raw(`<p class="alert-action">`)
			h.text(action)
			h.raw(`</p>`)
		}
		h.raw(`<p class="alert-code">Code: `)
		h.text(code)
		h.raw(`</p></div>`)
		return h.err
	})
}

// Notice renders an informational empty-result message.
func Notice(n *core.EmptyResultNotice) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if n == nil {
			return nil
		}
		h := &htmlWriter{w: w}
		h.raw(`<div class="alert alert-info" role="status">`)
		h.text(n.Message)
		h.raw(`</div>`)
		return h.err
	})
}

// number formats a nullable count, rendering null as an empty cell.
func number(v pgtype.Float8) string {
	return core.FormatNumber(v)
}

func floatValue(f float64) pgtype.Float8 {
	return pgtype.Float8{Float64: f, Valid: true}
}

func sum(s core.Sum) string {
	return core.FormatNumber(floatValue(s.Total))
}
