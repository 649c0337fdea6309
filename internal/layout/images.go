package layout

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	// GridWidth is the subfigure width in a 2x2 grid, a little under half to
	// leave a gap.
	GridWidth = "0.45"
	// RowSpan is the share of \textwidth a single row of subfigures fills.
	RowSpan = 0.95
	// MaxGroup is the largest run laid out as one figure; longer runs are
	// split into consecutive groups.
	MaxGroup = 4

	PlaceholderImage = "placeholder"
	GroupCaption     = `\caption{Visual comparison of results.}`
)

const includePrefix = `\includegraphics`

var (
	imageFileRe      = regexp.MustCompile(`\{(.+?)\}`)
	// Environments that already place their images.
	containerBeginRe = regexp.MustCompile(`\\begin\{(?:figure\*?|table\*?|wrapfigure|minipage)\}`)
	containerEndRe   = regexp.MustCompile(`\\end\{(?:figure\*?|table\*?|wrapfigure|minipage)\}`)
)

type scanState int

const (
	idle scanState = iota
	accumulating
)

// imageScanner folds body lines into output lines, buffering runs of
// image-only lines and flushing them into figure blocks.
type imageScanner struct {
	state scanState
	run   []string
	// depth counts open figure, table, wrapfigure and minipage environments;
	// images already inside one are left alone.
	depth int
	out   []string
}

func (s *imageScanner) line(l string) {
	trimmed := strings.TrimSpace(l)
	if s.depth == 0 && strings.HasPrefix(trimmed, includePrefix) {
		s.run = append(s.run, trimmed)
		s.state = accumulating
		return
	}
	if s.state == accumulating {
		s.flush()
	}
	s.depth += len(containerBeginRe.FindAllStringIndex(l, -1))
	s.depth -= len(containerEndRe.FindAllStringIndex(l, -1))
	if s.depth < 0 {
		s.depth = 0
	}
	s.out = append(s.out, l)
}

func (s *imageScanner) flush() {
	for len(s.run) > 0 {
		n := len(s.run)
		if n > MaxGroup {
			n = MaxGroup
		}
		s.out = append(s.out, renderGroup(s.run[:n])...)
		s.run = s.run[n:]
	}
	s.run = nil
	s.state = idle
}

// GroupImages scans tex line by line and lays out each run of consecutive
// \includegraphics lines as one figure: a single image is centered, two or
// three sit side by side, four form a 2x2 grid.
func GroupImages(tex string) string {
	s := &imageScanner{}
	for _, l := range strings.Split(tex, "\n") {
		s.line(l)
	}
	if s.state == accumulating {
		s.flush()
	}
	return strings.Join(s.out, "\n")
}

func renderGroup(images []string) []string {
	if len(images) == 1 {
		return []string{`\begin{figure}[H]`, `\centering`, images[0], `\end{figure}`}
	}
	out := []string{`\begin{figure}[H]`, `\centering`}
	if len(images) == 4 {
		for i, img := range images {
			out = append(out, subfigure(GridWidth, imageFile(img))...)
			switch i {
			case 0, 2:
				out = append(out, `\hfill`)
			case 1:
				// Row break.
				out = append(out, "")
			}
		}
	} else {
		width := fmt.Sprintf("%.2f", RowSpan/float64(len(images)))
		for _, img := range images {
			out = append(out, subfigure(width, imageFile(img))...)
			out = append(out, `\hfill`)
		}
	}
	return append(out, GroupCaption, `\end{figure}`)
}

func subfigure(width, file string) []string {
	return []string{
		`\begin{subfigure}[b]{` + width + `\textwidth}`,
		`\centering`,
		`\includegraphics[width=\linewidth]{` + file + `}`,
		`\caption{}`,
		`\end{subfigure}`,
	}
}

// imageFile extracts the file argument of an \includegraphics line.
func imageFile(line string) string {
	m := imageFileRe.FindStringSubmatch(line)
	if m == nil || strings.TrimSpace(m[1]) == "" {
		return PlaceholderImage
	}
	return strings.TrimSpace(m[1])
}
