package app

import (
    "path/filepath"
    "regexp"
    "strings"
)

// outputPaths names every file a run writes under the output directory.
type outputPaths struct {
    Raw         string
    Final       string
    Manifest    string
    Diagnostics string
    Metrics     string
}

var slugRe = regexp.MustCompile(`[^a-z0-9_]+`)

// deriveOutputPaths returns stable output paths for cfg. The base name is
// slugified so a user-supplied name cannot escape the output directory.
func deriveOutputPaths(cfg Config) outputPaths {
    dir := strings.TrimSpace(cfg.OutputDir)
    if dir == "" { dir = DefaultOutputDir }
    base := slugify(cfg.Name)
    join := func(suffix string) string { return filepath.Join(dir, base+suffix) }
    return outputPaths{
        Raw:         join("_raw.tex"),
        Final:       join(".tex"),
        Manifest:    join(".manifest.json"),
        Diagnostics: join(".diagnostics.pdf"),
        Metrics:     join(".prom"),
    }
}

// finalPathFor maps a raw body path to its finished document path:
// "x_raw.tex" becomes "x.tex", anything else gets a "_final.tex" suffix.
func finalPathFor(rawPath string) string {
    ext := filepath.Ext(rawPath)
    stem := strings.TrimSuffix(rawPath, ext)
    if strings.HasSuffix(stem, "_raw") {
        return strings.TrimSuffix(stem, "_raw") + ".tex"
    }
    return stem + "_final.tex"
}

func slugify(s string) string {
    s = strings.ToLower(strings.TrimSpace(s))
    s = slugRe.ReplaceAllString(s, "-")
    s = strings.Trim(s, "-")
    if s == "" { s = DefaultName }
    return s
}
