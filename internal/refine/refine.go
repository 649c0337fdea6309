package refine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/note2tex/internal/latex"
	"github.com/hyperifyio/note2tex/internal/llm"
	"github.com/hyperifyio/note2tex/internal/metrics"
	"github.com/hyperifyio/note2tex/internal/section"
	"github.com/hyperifyio/note2tex/internal/template"
)

// MinChars is the shortest normalized correction that replaces the prior text.
const MinChars = 20

// Refiner asks a fixer model to repair a section that failed validation.
type Refiner struct {
	LLM llm.TextCompleter
	// Model is used when Refine is called without one.
	Model   string
	Metrics *metrics.Recorder
}

// Refine returns the corrected body. A correction that normalizes to fewer
// than MinChars characters is discarded and the normalized prior text is
// returned instead; that is not an error. On transport failure the prior
// text is returned together with the error.
func (r *Refiner) Refine(ctx context.Context, key section.Key, current string, issues []string, m template.Materials, model string) (string, error) {
	prior := latex.Normalize(current)
	if r == nil || r.LLM == nil {
		return prior, errors.New("refiner not configured")
	}
	if model == "" {
		model = r.Model
	}
	user := template.RefinePrompt(key, prior, issues, m)
	out, err := r.LLM.Complete(ctx, model, template.FixerSystem, user)
	if err != nil {
		return prior, fmt.Errorf("refine %s: %w", key, err)
	}
	fixed := latex.Normalize(out)
	if Degenerate(fixed) {
		log.Debug().Str("section", string(key)).Int("len", len(fixed)).Msg("discarding degenerate correction")
		r.Metrics.DegenerateRefinement()
		return prior, nil
	}
	return fixed, nil
}

// Degenerate reports whether a normalized correction is too short to keep.
func Degenerate(text string) bool {
	return len(strings.TrimSpace(text)) < MinChars
}
