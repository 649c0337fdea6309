// Package finalize turns an assembled body into a complete LaTeX document.
package finalize

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/note2tex/internal/latex"
	"github.com/hyperifyio/note2tex/internal/layout"
	"github.com/hyperifyio/note2tex/internal/stylist"
)

// Placeholder marks where the body goes in a preamble template.
const Placeholder = "% ... body goes here ..."

// Preamble is a template read once per run. The zero value means no
// template is available.
type Preamble struct {
	Path string
	Text string
}

// Available reports whether the template has content to splice into.
func (p Preamble) Available() bool {
	return strings.TrimSpace(p.Text) != ""
}

// LoadPreamble reads the template at path. An empty path, a missing file or
// an unreadable one all yield ok=false; none of them is an error for the run.
func LoadPreamble(path string) (Preamble, bool) {
	if strings.TrimSpace(path) == "" {
		return Preamble{}, false
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.Warn().Err(err).Str("path", path).Msg("preamble unreadable; using minimal shell")
		}
		return Preamble{}, false
	}
	p := Preamble{Path: path, Text: string(b)}
	return p, p.Available()
}

// Shell wraps body in the smallest compilable document.
func Shell(body string) string {
	return "\\documentclass[12pt]{article}\n\\begin{document}\n" + body + "\n\\end{document}"
}

// Splice places body into the template: at the placeholder when present,
// otherwise just before \end{document}. Without a usable template the body
// is wrapped in Shell.
func Splice(body string, p Preamble) string {
	if !p.Available() {
		return Shell(body)
	}
	if strings.Contains(p.Text, Placeholder) {
		return strings.ReplaceAll(p.Text, Placeholder, body)
	}
	if i := strings.LastIndex(p.Text, latex.EndDocument); i >= 0 {
		return p.Text[:i] + "\n" + body + "\n" + p.Text[i:]
	}
	log.Warn().Str("path", p.Path).Msg("preamble has neither placeholder nor \\end{document}; using minimal shell")
	return Shell(body)
}

// Document is the finalizer output.
type Document struct {
	// Text is the complete document.
	Text string
	// Body is the styled body before splicing.
	Body  string
	Style stylist.Result
}

// Finalizer runs layout, the optional style pass and the splice.
type Finalizer struct {
	Stylist *stylist.Stylist
}

// Finalize never fails: a failed or missing style pass degrades to the
// deterministic layout and a missing template to the minimal shell.
func (f *Finalizer) Finalize(ctx context.Context, body string, p Preamble) Document {
	cleaned := layout.Prepare(body)
	var st *stylist.Stylist
	if f != nil {
		st = f.Stylist
	}
	res := st.Style(ctx, cleaned)
	final := latex.Normalize(res.Text)
	return Document{Text: Splice(final, p), Body: final, Style: res}
}
