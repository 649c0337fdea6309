package section

import "strings"

// Key identifies one report section.
type Key string

const (
	TitleAbstract Key = "title_abstract"
	Problem       Key = "problem"
	Theory        Key = "theory"
	Method        Key = "method"
	Code          Key = "code"
	Experiments   Key = "experiments"
	Results       Key = "results"
	Figures       Key = "figures"
	Limitations   Key = "limitations"
	Future        Key = "future"
	Conclusion    Key = "conclusion"
)

// Order is the canonical section order. Generation, assembly and any caller
// supplying section content all follow it.
var Order = []Key{
	TitleAbstract,
	Problem,
	Theory,
	Method,
	Code,
	Experiments,
	Results,
	Figures,
	Limitations,
	Future,
	Conclusion,
}

var titles = map[Key]string{
	Problem:     "Problem Description",
	Theory:      "Theoretical Background",
	Method:      "Methodology",
	Code:        "Detailed Code Walkthrough",
	Experiments: "Experimental Setup",
	Results:     "Results and Analysis",
	Figures:     "Figures and Visualizations",
	Limitations: "Limitations",
	Future:      "Future Work",
	Conclusion:  "Conclusion",
}

// Title returns the display heading for a key. Unknown keys are capitalized.
func Title(k Key) string {
	if t, ok := titles[k]; ok {
		return t
	}
	s := string(k)
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

// Valid reports whether k is one of the canonical keys.
func Valid(k Key) bool {
	for _, o := range Order {
		if o == k {
			return true
		}
	}
	return false
}

// Category selects which slice of the course materials a section sees.
type Category string

const (
	CategoryMath    Category = "math"
	CategoryCode    Category = "code"
	CategoryResults Category = "results"
	CategoryGeneral Category = "general"
)

// CategoryOf maps a key to its context category.
func CategoryOf(k Key) Category {
	switch k {
	case Problem, Theory:
		return CategoryMath
	case Code, Method:
		return CategoryCode
	case Results, Experiments, Figures:
		return CategoryResults
	default:
		return CategoryGeneral
	}
}
