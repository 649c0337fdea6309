package app

import (
    "strconv"
    "strings"
    "time"
)

// appendReproFooter appends a deterministic block of LaTeX comments that
// records the configuration of the run for reproducibility and auditing.
// Comments after \end{document} are ignored by the TeX engine.
func appendReproFooter(tex string, meta manifestMeta, sections int) string {
    var b strings.Builder
    b.WriteString(strings.TrimRight(tex, "\n"))
    b.WriteString("\n\n% ---\n")
    b.WriteString("% Reproducibility: ")
    b.WriteString("run=")
    b.WriteString(meta.RunID)
    b.WriteString("; model=")
    b.WriteString(strings.TrimSpace(meta.Model))
    b.WriteString("; llm_base_url=")
    b.WriteString(strings.TrimSpace(meta.LLMBaseURL))
    b.WriteString("; verbosity=")
    b.WriteString(meta.Verbosity)
    b.WriteString("; sections=")
    b.WriteString(strconv.Itoa(sections))
    b.WriteString("; stylist=")
    b.WriteString(meta.Stylist)
    b.WriteString("; llm_cache=")
    b.WriteString(strconv.FormatBool(meta.LLMCache))
    b.WriteString("\n% Generated by note2tex ")
    b.WriteString(meta.Version)
    b.WriteString(" at ")
    b.WriteString(meta.GeneratedAt.UTC().Format(time.RFC3339))
    b.WriteString("\n")
    return b.String()
}
