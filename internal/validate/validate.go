package validate

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/hyperifyio/note2tex/internal/latex"
	"github.com/hyperifyio/note2tex/internal/section"
)

// Kind tags the reason a section failed validation.
type Kind string

const (
	ForbiddenCommand      Kind = "forbidden-command"
	MarkdownFence         Kind = "markdown-fence"
	UnbalancedBraces      Kind = "unbalanced-braces"
	UnbalancedEnvironment Kind = "unbalanced-environment"
	EmptyFigureReference  Kind = "empty-figure-reference"
	TooShort              Kind = "too-short"
)

// Issue is a single structural problem. Detail carries the context the
// refinement prompt needs (which command, which counts).
type Issue struct {
	Kind   Kind
	Detail string
}

func (i Issue) String() string {
	switch i.Kind {
	case ForbiddenCommand:
		return "forbidden command: " + i.Detail
	case MarkdownFence:
		return "markdown code fences detected"
	case UnbalancedBraces:
		return "unbalanced curly braces { } " + i.Detail
	case UnbalancedEnvironment:
		return "unbalanced environments " + i.Detail
	case EmptyFigureReference:
		return "empty \\includegraphics filename " + i.Detail
	case TooShort:
		return "section too short " + i.Detail
	default:
		return string(i.Kind) + ": " + i.Detail
	}
}

// Result is the outcome of one validation call. OK is true iff Issues is empty.
type Result struct {
	OK     bool
	Issues []Issue
}

// Strings renders the issues in order, for prompts and logs.
func (r Result) Strings() []string {
	out := make([]string, 0, len(r.Issues))
	for _, i := range r.Issues {
		out = append(out, i.String())
	}
	return out
}

// DefaultMinChars is the minimum normalized length of a non-title section.
const DefaultMinChars = 50

// Validator checks a section body for structural problems. The zero value
// uses DefaultMinChars.
type Validator struct {
	MinChars int
}

var includeGraphicsRe = regexp.MustCompile(`\\includegraphics\s*(?:\[[^\]]*\])?\s*\{([^}]*)\}`)

// Validate runs the checks with the default threshold.
func Validate(key section.Key, text string) Result {
	return Validator{}.Validate(key, text)
}

// Validate normalizes text and runs every check in a fixed order, so the same
// input always yields the same issue list.
func (v Validator) Validate(key section.Key, text string) Result {
	clean := latex.Normalize(text)
	var issues []Issue
	add := func(i Issue) {
		for _, have := range issues {
			if have == i {
				return
			}
		}
		issues = append(issues, i)
	}

	isTitle := key == section.TitleAbstract
	for _, cmd := range latex.Forbidden {
		if isTitle && latex.IsTitleCommand(cmd) {
			continue
		}
		if strings.Contains(clean, cmd) {
			add(Issue{Kind: ForbiddenCommand, Detail: cmd})
		}
	}

	if strings.Contains(clean, latex.Fence) {
		add(Issue{Kind: MarkdownFence})
	}

	if open, closed, ok := braceBalance(clean); !ok {
		add(Issue{Kind: UnbalancedBraces, Detail: fmt.Sprintf("(open=%d, close=%d)", open, closed)})
	}

	begins := strings.Count(clean, `\begin{`)
	ends := strings.Count(clean, `\end{`)
	if begins != ends && (begins > 0 || ends > 0) {
		add(Issue{Kind: UnbalancedEnvironment, Detail: fmt.Sprintf("(begin=%d, end=%d)", begins, ends)})
	}

	empty := 0
	for _, m := range includeGraphicsRe.FindAllStringSubmatch(clean, -1) {
		if strings.TrimSpace(m[1]) == "" {
			empty++
		}
	}
	if empty > 0 {
		add(Issue{Kind: EmptyFigureReference, Detail: fmt.Sprintf("(count=%d)", empty)})
	}

	minChars := v.MinChars
	if minChars <= 0 {
		minChars = DefaultMinChars
	}
	if !isTitle {
		if n := len(strings.TrimSpace(clean)); n < minChars {
			add(Issue{Kind: TooShort, Detail: fmt.Sprintf("(%d < %d chars)", n, minChars)})
		}
	}

	return Result{OK: len(issues) == 0, Issues: issues}
}

// braceBalance scans s once. It fails as soon as a closing brace has no
// matching open one, or when braces remain open at the end. Backslash-escaped
// braces (\{ and \}) are literal characters and are not counted.
func braceBalance(s string) (open, closed int, ok bool) {
	depth := 0
	ok = true
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '{' && c != '}' {
			continue
		}
		if escaped(s, i) {
			continue
		}
		if c == '{' {
			open++
			depth++
			continue
		}
		closed++
		depth--
		if depth < 0 {
			ok = false
		}
	}
	if depth != 0 {
		ok = false
	}
	return open, closed, ok
}

// escaped reports whether the byte at i is preceded by an odd run of
// backslashes.
func escaped(s string, i int) bool {
	n := 0
	for j := i - 1; j >= 0 && s[j] == '\\'; j-- {
		n++
	}
	return n%2 == 1
}
