package template

import (
	"fmt"
	"strings"

	"github.com/hyperifyio/note2tex/internal/latex"
	"github.com/hyperifyio/note2tex/internal/section"
)

// Context budgets, in characters, for each slice of the materials.
const (
	MathAssignmentChars    = 15000
	CodeChars              = 20000
	CodeAssignmentChars    = 5000
	ResultsOutputChars     = 15000
	GeneralAssignmentChars = 5000
	RefineSummaryChars     = 2000
)

// System prompts, one per model role.
const (
	WriterSystem  = "You are an expert LaTeX Academic Writer. You output ONLY valid LaTeX code."
	FixerSystem   = "You are a LaTeX Code Fixer. Output raw LaTeX only. No explanations."
	StylistSystem = "You are a LaTeX Expert. Never nest figures."
)

// Materials bundles the course inputs a prompt may draw from.
type Materials struct {
	Assignment string
	Code       string
	Outputs    string
	Summary    string
}

var instructions = map[section.Key]string{
	section.TitleAbstract: `Generate \title{}, \author{}, \date{}, and \begin{abstract}. Abstract must be comprehensive.`,
	section.Problem:       `Define the optimization problem formally. Use mathematical notation ($x, W, \eta$). Define every term.`,
	section.Theory:        `Provide the complete theoretical background. Explain the properties the method relies on (e.g. Lipschitz constant, convexity).`,
	section.Method:        `Detail the algorithm. Use \begin{algorithm} for pseudo-code. Explain the update steps $w^{(k)}$ in detail.`,
	section.Code:          `Walk through the code logic. Use \verb|| for variables. Explain how the data flows through the functions.`,
	section.Experiments:   `Describe the setup: datasets, noise levels ($\sigma$), sampling rates, and regularization ($\lambda$).`,
	section.Results:       `Present the results. Compare the reported metrics. Use \ref{...} to refer to figures. Be quantitative.`,
	section.Figures:       `Output ONLY \includegraphics lines for the relevant images mentioned in outputs. Do not add captions yet.`,
	section.Limitations:   `Discuss computational cost, convergence speed, and failure cases.`,
	section.Future:        `Propose specific algorithmic improvements.`,
	section.Conclusion:    `Summarize the entire project impact.`,
}

// Instruction returns the section-specific writing instruction.
func Instruction(k section.Key) string {
	return instructions[k]
}

var verbosityGuides = map[section.Verbosity]string{
	section.Tiny:   "Write a concise summary (1 paragraph). Focus only on the main outcome.",
	section.Medium: "Write 2-3 paragraphs. Explain the 'Why' and 'How'. Use standard academic depth.",
	section.Long: `CRITICAL INSTRUCTION: MAXIMUM DETAIL REQUIRED.
- Write a deep-dive analysis (4-6 paragraphs).
- If explaining Theory: Derive equations step-by-step. Don't just state them.
- If explaining Code: Reference specific variable names and logic flows. Explain why each parameter was chosen.
- If explaining Results: Analyze the metrics deeply. Discuss outliers and visual artifacts in images.
- DO NOT summarize. Expand on every detail provided in the context.`,
}

// VerbosityGuide returns the instruction for a tier, defaulting to medium.
func VerbosityGuide(v section.Verbosity) string {
	if g, ok := verbosityGuides[v]; ok {
		return g
	}
	return verbosityGuides[section.Medium]
}

// Truncate cuts s to at most n characters (runes).
func Truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

// SliceContext picks the part of the materials a section needs, each source
// truncated to its budget.
func SliceContext(k section.Key, m Materials) string {
	switch section.CategoryOf(k) {
	case section.CategoryMath:
		return "ASSIGNMENT MATH:\n" + Truncate(m.Assignment, MathAssignmentChars)
	case section.CategoryCode:
		return "CODE:\n" + Truncate(m.Code, CodeChars) + "\nMETHODOLOGY:\n" + Truncate(m.Assignment, CodeAssignmentChars)
	case section.CategoryResults:
		return "LOGS & OUTPUTS:\n" + Truncate(m.Outputs, ResultsOutputChars) + "\nRAG:\n" + m.Summary
	default:
		return "RAG:\n" + m.Summary + "\nASSIGNMENT:\n" + Truncate(m.Assignment, GeneralAssignmentChars)
	}
}

// GeneratePrompt builds the user message for drafting one section.
func GeneratePrompt(k section.Key, m Materials, v section.Verbosity) string {
	var sb strings.Builder
	sb.WriteString(latex.StrictRules)
	sb.WriteString("\n\nYou are an expert Academic Researcher writing a report.\n")
	sb.WriteString("Current Section: **")
	sb.WriteString(strings.ToUpper(string(k)))
	sb.WriteString("**\n\nVERBOSITY SETTING: ")
	sb.WriteString(strings.ToUpper(string(v)))
	sb.WriteString("\n")
	sb.WriteString(VerbosityGuide(v))
	sb.WriteString("\n\nINSTRUCTION:\n")
	sb.WriteString(Instruction(k))
	sb.WriteString("\n\nCONTEXT:\n")
	sb.WriteString(SliceContext(k, m))
	sb.WriteString("\n\nTASK:\n")
	sb.WriteString("1. Write the LaTeX body for this section.\n")
	sb.WriteString(`2. If the context implies an image (e.g., "Figure 1 shows..."), insert: \includegraphics{images/placeholder.png}`)
	sb.WriteString("\n3. Arrange images near the text describing them.\n\n")
	sb.WriteString("OUTPUT RAW LATEX ONLY.\n")
	return sb.String()
}

// RefinePrompt builds the user message for repairing one section.
func RefinePrompt(k section.Key, current string, issues []string, m Materials) string {
	var sb strings.Builder
	sb.WriteString("You are a LaTeX Debugging Expert.\n")
	sb.WriteString("The user generated a section but it failed validation or requires syntax checking.\n\n")
	sb.WriteString("SECTION NAME: ")
	sb.WriteString(string(k))
	sb.WriteString("\nISSUES DETECTED: ")
	sb.WriteString(formatIssues(issues))
	sb.WriteString("\n\nCURRENT LATEX:\n")
	sb.WriteString(current)
	sb.WriteString("\n\nCONTEXT SUMMARY:\n")
	sb.WriteString(Truncate(m.Summary, RefineSummaryChars))
	sb.WriteString("\n\n")
	sb.WriteString(latex.SyntaxRules)
	sb.WriteString("\n\nTASK:\n- Fix the issues listed.\n- Ensure the syntax matches the rules above.\n- Return ONLY the corrected LaTeX body.\n")
	return sb.String()
}

// StylePrompt builds the user message for the layout polish pass.
func StylePrompt(body string) string {
	return `You are a LaTeX Layout Expert.
Your task is to POLISH the final LaTeX document body.

INPUT DOCUMENT:
` + body + `

CRITICAL SYNTAX RULES (DO NOT VIOLATE):
1. NO NESTING: NEVER put \begin{figure} inside another \begin{figure}.
2. NO FLOATS IN BOXES: NEVER put \begin{figure} or \begin{algorithm} inside \begin{tcolorbox}.
   If a section has a float, close the \end{tcolorbox}, place the float, and then open a new box.
3. MATH FIXES: Ensure \norm{...} and \diag{...} are used correctly.

INSTRUCTIONS:
1. Wrap "Problem Description", "Results", and "Conclusion" in \begin{tcolorbox}[sectionbox].
2. Keep images and algorithms OUTSIDE the tcolorbox.
3. Output ONLY the raw LaTeX body.
`
}

func formatIssues(issues []string) string {
	if len(issues) == 0 {
		return "[]"
	}
	quoted := make([]string, 0, len(issues))
	for _, i := range issues {
		quoted = append(quoted, fmt.Sprintf("%q", i))
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
