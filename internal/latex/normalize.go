// Package latex holds the text-level vocabulary shared by every stage that
// touches model output: the normalizer, the forbidden-command list and the
// rule blocks embedded in prompts.
package latex

import (
	"regexp"
	"strings"
)

const (
	Fence         = "```"
	BeginDocument = `\begin{document}`
	EndDocument   = `\end{document}`
	DocumentClass = `\documentclass`
)

var (
	// Everything from the first fence to the last one, newlines included.
	fencedRe        = regexp.MustCompile("(?s)```.*```")
	documentClassRe = regexp.MustCompile(`\\documentclass[^\n]*\n?`)
)

// Normalize strips code fences, document-class lines and begin/end-document
// markers from raw model output and trims surrounding whitespace. It is pure
// and idempotent.
//
// Removing one construct can expose another (e.g. "``\begin{document}`"
// becomes a fence), so passes repeat until nothing changes. A pass that
// changes the text always shortens it, so the loop terminates.
func Normalize(raw string) string {
	cur := raw
	for {
		next := normalizeOnce(cur)
		if next == cur {
			return next
		}
		cur = next
	}
}

func normalizeOnce(s string) string {
	s = fencedRe.ReplaceAllString(s, "")
	s = documentClassRe.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, BeginDocument, "")
	s = strings.ReplaceAll(s, EndDocument, "")
	return strings.TrimSpace(s)
}
