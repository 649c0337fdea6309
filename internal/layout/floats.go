// Package layout holds the deterministic text passes applied to an assembled
// body before and after the style pass. Every pass is pure, line or pattern
// based, and idempotent; none of them parse LaTeX.
package layout

import (
	"regexp"
	"strings"
)

var (
	// A figure opened (with optional placement and \centering) directly
	// around another figure open.
	nestedFigureOpenRe  = regexp.MustCompile(`\\begin\{figure\}(?:\[[^\]\n]*\])?\s*(?:\\centering\s*)?(\\begin\{figure\})`)
	doubleFigureCloseRe = regexp.MustCompile(`\\end\{figure\}\s*\\end\{figure\}`)
)

// maxFlattenPasses bounds the fixed-point loop; each pass removes one level.
const maxFlattenPasses = 16

// FlattenNestedFloats collapses a figure opened directly inside another
// figure to the inner one, and consecutive figure closes to a single close.
func FlattenNestedFloats(tex string) string {
	cur := tex
	for i := 0; i < maxFlattenPasses; i++ {
		next := nestedFigureOpenRe.ReplaceAllString(cur, "$1")
		next = doubleFigureCloseRe.ReplaceAllString(next, `\end{figure}`)
		if next == cur {
			return next
		}
		cur = next
	}
	return cur
}

// ShrinkWideImages narrows three-quarter-width images so two floats fit a page.
func ShrinkWideImages(tex string) string {
	return strings.ReplaceAll(tex, `width=0.75\linewidth`, `width=0.55\linewidth`)
}
