package app

import (
    "strings"
    "testing"
    "time"
)

func TestAppendReproFooter_AppendsDeterministicFooter(t *testing.T) {
    base := "\\documentclass{article}\n\\begin{document}\nBody.\n\\end{document}\n"
    meta := manifestMeta{
        RunID:       "run-1",
        Model:       "writer-8b",
        LLMBaseURL:  "http://localhost:11434/v1",
        Verbosity:   "medium",
        Stylist:     "fallback",
        LLMCache:    true,
        Version:     "1.2.3",
        GeneratedAt: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
    }
    out := appendReproFooter(base, meta, 7)
    if !strings.HasPrefix(out, strings.TrimRight(base, "\n")) {
        t.Fatalf("document altered:\n%s", out)
    }
    tail := out[strings.Index(out, `\end{document}`):]
    for _, want := range []string{
        "% Reproducibility:",
        "run=run-1",
        "model=writer-8b",
        "llm_base_url=http://localhost:11434/v1",
        "sections=7",
        "stylist=fallback",
        "llm_cache=true",
        "note2tex 1.2.3 at 2025-01-02T03:04:05Z",
    } {
        if !strings.Contains(tail, want) {
            t.Fatalf("footer missing %q:\n%s", want, out)
        }
    }
    for _, line := range strings.Split(strings.TrimSpace(tail), "\n")[1:] {
        if line != "" && !strings.HasPrefix(line, "%") {
            t.Fatalf("footer line is not a comment: %q", line)
        }
    }
    if appendReproFooter(base, meta, 7) != out {
        t.Fatal("footer is not deterministic")
    }
}
