package section

import "strings"

// Verbosity controls how much prose the writer model is asked for.
type Verbosity string

const (
	// Tiny asks for a one-paragraph summary.
	Tiny Verbosity = "tiny"
	// Medium asks for two or three paragraphs of standard academic depth.
	Medium Verbosity = "medium"
	// Long asks for derivation-level detail.
	Long Verbosity = "long"
)

// ParseVerbosity maps user input to a tier. Unknown or empty values yield Medium.
func ParseVerbosity(s string) Verbosity {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "tiny", "terse", "short":
		return Tiny
	case "long", "exhaustive", "full":
		return Long
	default:
		return Medium
	}
}
