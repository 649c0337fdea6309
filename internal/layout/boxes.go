package layout

import (
	"regexp"
	"strings"
)

const (
	BoxOpen  = `\begin{tcolorbox}[sectionbox]`
	BoxClose = `\end{tcolorbox}`
)

// BoxTargets are the lowercased title words whose sections get boxed.
var BoxTargets = []string{"problem", "results", "conclusion"}

var (
	sectionHeadingRe = regexp.MustCompile(`(?i)^\\section\*?\s*\{(.+?)\}`)
	floatBeginRe     = regexp.MustCompile(`\\begin\{(?:figure\*?|algorithm)\}`)
	floatEndRe       = regexp.MustCompile(`\\end\{(?:figure\*?|algorithm)\}`)
)

type boxState int

const (
	outside boxState = iota
	inBox
)

// boxScanner walks a body line by line, opening a box after each target
// heading and keeping floats outside of it.
type boxScanner struct {
	state  boxState
	target bool
	// floats counts open figure/algorithm environments.
	floats int
	out    []string
}

func (b *boxScanner) open() {
	b.out = append(b.out, BoxOpen)
	b.state = inBox
}

// close ends the open box. A box that received no lines is dropped instead.
func (b *boxScanner) close() {
	if b.state != inBox {
		return
	}
	if n := len(b.out); n > 0 && b.out[n-1] == BoxOpen {
		b.out = b.out[:n-1]
	} else {
		b.out = append(b.out, BoxClose)
	}
	b.state = outside
}

func (b *boxScanner) line(l string) {
	trimmed := strings.TrimSpace(l)
	if trimmed == BoxOpen || trimmed == BoxClose {
		// Existing markers are rebuilt from scratch.
		return
	}
	if m := sectionHeadingRe.FindStringSubmatch(trimmed); m != nil {
		// A section cannot sit inside a float, so any float still open was
		// left unclosed by the model.
		b.floats = 0
		b.close()
		b.out = append(b.out, l)
		b.target = isBoxTarget(m[1])
		if b.target {
			b.open()
		}
		return
	}
	if floatBeginRe.MatchString(trimmed) {
		b.close()
		b.floats += len(floatBeginRe.FindAllStringIndex(trimmed, -1))
		b.floats -= len(floatEndRe.FindAllStringIndex(trimmed, -1))
		b.out = append(b.out, l)
		b.resume()
		return
	}
	if floatEndRe.MatchString(trimmed) {
		b.floats -= len(floatEndRe.FindAllStringIndex(trimmed, -1))
		b.out = append(b.out, l)
		b.resume()
		return
	}
	b.out = append(b.out, l)
}

// resume reopens the box once all floats have closed inside a target section.
func (b *boxScanner) resume() {
	if b.floats < 0 {
		b.floats = 0
	}
	if b.floats == 0 && b.target && b.state == outside {
		b.open()
	}
}

func isBoxTarget(title string) bool {
	t := strings.ToLower(title)
	for _, w := range BoxTargets {
		if strings.Contains(t, w) {
			return true
		}
	}
	return false
}

// WrapSectionBoxes wraps the bodies of problem, results and conclusion
// sections in a decorative box. Figures and algorithms are never placed inside
// a box: the box closes before a float and reopens after it. Existing box
// markers are stripped first so the pass can be re-run safely.
func WrapSectionBoxes(tex string) string {
	b := &boxScanner{}
	for _, l := range strings.Split(tex, "\n") {
		b.line(l)
	}
	b.close()
	return strings.Join(b.out, "\n")
}
