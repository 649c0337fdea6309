package generate

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/note2tex/internal/latex"
	"github.com/hyperifyio/note2tex/internal/llm"
	"github.com/hyperifyio/note2tex/internal/section"
	"github.com/hyperifyio/note2tex/internal/template"
)

// Materials are the course inputs a section is drafted from.
type Materials = template.Materials

// Generator drafts one section body per call.
type Generator struct {
	LLM llm.TextCompleter
	// Model selects the writer model; empty defers to the completer default.
	Model string
	// SystemPrompt, when non-empty, overrides the default writer system message.
	SystemPrompt string
}

// Generate builds the section prompt from the sliced materials, calls the
// writer model and returns the normalized body. Transport errors propagate.
func (g *Generator) Generate(ctx context.Context, key section.Key, m Materials, v section.Verbosity) (string, error) {
	if g == nil || g.LLM == nil {
		return "", errors.New("generator not configured")
	}
	system := template.WriterSystem
	if g.SystemPrompt != "" {
		system = g.SystemPrompt
	}
	user := template.GeneratePrompt(key, m, v)
	log.Debug().Str("section", string(key)).Str("verbosity", string(v)).Int("prompt_len", len(user)).Msg("drafting section")

	out, err := g.LLM.Complete(ctx, g.Model, system, user)
	if err != nil {
		return "", fmt.Errorf("generate %s: %w", key, err)
	}
	return latex.Normalize(out), nil
}
