// Package assemble joins section bodies into one document body in canonical
// order.
package assemble

import (
	"strings"

	"github.com/hyperifyio/note2tex/internal/latex"
	"github.com/hyperifyio/note2tex/internal/section"
)

// Heading renders the section command for a key.
func Heading(k section.Key) string {
	return `\section{` + section.Title(k) + `}`
}

// Assemble walks section.Order, skipping keys that are absent or empty after
// normalization. The title/abstract body is emitted as is; every other body
// is preceded by its heading. Blocks are separated by a blank line.
func Assemble(sections map[section.Key]string) string {
	blocks := make([]string, 0, len(section.Order))
	for _, k := range section.Order {
		raw, ok := sections[k]
		if !ok {
			continue
		}
		body := latex.Normalize(raw)
		if body == "" {
			continue
		}
		if k == section.TitleAbstract {
			blocks = append(blocks, body)
			continue
		}
		blocks = append(blocks, Heading(k)+"\n"+body)
	}
	if len(blocks) == 0 {
		return ""
	}
	return strings.Join(blocks, "\n\n") + "\n"
}
