// Package stylist runs the optional model-assisted layout polish over an
// assembled body and falls back to the deterministic layout when the model is
// unavailable, fails, or ignores its instructions.
package stylist

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/note2tex/internal/latex"
	"github.com/hyperifyio/note2tex/internal/layout"
	"github.com/hyperifyio/note2tex/internal/llm"
	"github.com/hyperifyio/note2tex/internal/metrics"
	"github.com/hyperifyio/note2tex/internal/template"
)

// Source names where the styled body came from.
type Source string

const (
	SourceModel    Source = "model"
	SourceFallback Source = "fallback"
)

// ErrFullDocument is recorded when the model echoed a whole document.
var ErrFullDocument = errors.New("stylist returned a full document")

// Result is the outcome of a style pass. Err explains a fallback and is
// informational only.
type Result struct {
	Text   string
	Source Source
	Err    error
}

// Stylist polishes a cleaned body. With no LLM or Model it always uses the
// deterministic boxing pass.
type Stylist struct {
	LLM     llm.TextCompleter
	Model   string
	Metrics *metrics.Recorder
}

// Style takes a body already passed through layout.Prepare. It never fails.
func (s *Stylist) Style(ctx context.Context, cleaned string) Result {
	res := s.style(ctx, cleaned)
	if s != nil {
		s.Metrics.Stylist(string(res.Source))
	}
	if res.Err != nil {
		log.Warn().Err(res.Err).Msg("stylist fell back to deterministic layout")
	}
	return res
}

func (s *Stylist) style(ctx context.Context, cleaned string) Result {
	fallback := func(err error) Result {
		return Result{Text: layout.WrapSectionBoxes(cleaned), Source: SourceFallback, Err: err}
	}
	if s == nil || s.LLM == nil || strings.TrimSpace(s.Model) == "" {
		return Result{Text: layout.WrapSectionBoxes(cleaned), Source: SourceFallback}
	}
	log.Info().Str("model", s.Model).Int("chars", len(cleaned)).Msg("calling stylist for layout polish")
	out, err := s.LLM.Complete(ctx, s.Model, template.StylistSystem, template.StylePrompt(cleaned))
	if err != nil {
		return fallback(err)
	}
	if strings.Contains(out, latex.DocumentClass) {
		return fallback(ErrFullDocument)
	}
	return Result{Text: layout.FlattenNestedFloats(out), Source: SourceModel}
}
