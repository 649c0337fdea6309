package layout

import "github.com/hyperifyio/note2tex/internal/latex"

// Prepare produces the cleaned body handed to the style pass.
func Prepare(tex string) string {
	return ShrinkWideImages(GroupImages(latex.Normalize(tex)))
}

// Deterministic is the full fallback layout: Prepare followed by boxing.
func Deterministic(tex string) string {
	return WrapSectionBoxes(Prepare(tex))
}
