package app

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"strings"
	"time"

	"github.com/hyperifyio/note2tex/internal/pipeline"
	"github.com/hyperifyio/note2tex/internal/section"
)

// manifestSection is a compact record of one section outcome.
type manifestSection struct {
	Key      string   `json:"key"`
	Title    string   `json:"title"`
	Status   string   `json:"status"`
	Attempts int      `json:"attempts"`
	Issues   []string `json:"issues,omitempty"`
	Error    string   `json:"error,omitempty"`
	SHA256   string   `json:"sha256,omitempty"`
	Chars    int      `json:"chars"`
}

// manifestMeta captures high-level run details that aid reproducibility.
type manifestMeta struct {
	RunID        string    `json:"run_id"`
	Model        string    `json:"model"`
	RefineModel  string    `json:"refine_model,omitempty"`
	StylistModel string    `json:"stylist_model,omitempty"`
	LLMBaseURL   string    `json:"llm_base_url"`
	Verbosity    string    `json:"verbosity"`
	MaxRefines   int       `json:"max_refines"`
	LLMCache     bool      `json:"llm_cache"`
	Preamble     string    `json:"preamble,omitempty"`
	Stylist      string    `json:"stylist,omitempty"`
	Version      string    `json:"version"`
	Commit       string    `json:"commit"`
	GeneratedAt  time.Time `json:"generated_at"`
}

type manifest struct {
	Meta     manifestMeta      `json:"meta"`
	Sections []manifestSection `json:"sections"`
	Outputs  map[string]string `json:"outputs,omitempty"`
}

// computeSHA256Hex returns a lowercase hex-encoded SHA-256 of the given text.
func computeSHA256Hex(text string) string {
	h := sha256.Sum256([]byte(text))
	return hex.EncodeToString(h[:])
}

// buildManifestSections converts pipeline outcomes in canonical order.
func buildManifestSections(rep pipeline.Report) []manifestSection {
	out := make([]manifestSection, 0, len(rep.Outcomes))
	for _, s := range rep.Outcomes {
		text := strings.TrimSpace(s.Text)
		ms := manifestSection{
			Key:      string(s.Key),
			Title:    section.Title(s.Key),
			Status:   string(s.Status),
			Attempts: s.Attempts,
			Issues:   s.Result.Strings(),
			Chars:    len(text),
		}
		if text != "" {
			ms.SHA256 = computeSHA256Hex(text)
		}
		switch {
		case s.Err != nil:
			ms.Error = s.Err.Error()
		case s.RefineErr != nil:
			ms.Error = s.RefineErr.Error()
		}
		out = append(out, ms)
	}
	return out
}

func writeManifest(path string, m manifest) error {
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(b, '\n'), 0o644)
}
