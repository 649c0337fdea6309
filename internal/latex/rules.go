package latex

// Forbidden lists top-level commands a single section body must never carry,
// in the order the validator reports them.
var Forbidden = []string{
	DocumentClass,
	`\usepackage`,
	BeginDocument,
	EndDocument,
	`\maketitle`,
	`\author`,
	`\date`,
	`\title`,
	`\chapter`,
	Fence,
}

// TitleCommands are allowed in the title/abstract section only.
var TitleCommands = []string{`\title`, `\author`, `\date`, `\maketitle`}

// IsTitleCommand reports whether cmd belongs to TitleCommands.
func IsTitleCommand(cmd string) bool {
	for _, c := range TitleCommands {
		if c == cmd {
			return true
		}
	}
	return false
}

// StrictRules is prepended to every generation prompt.
const StrictRules = `ABSOLUTE RULES (DO NOT VIOLATE):
- NEVER output \documentclass, \usepackage, \begin{document}, \end{document}.
- NEVER output \maketitle, \title, \author, \date (except in title_abstract).
- NEVER output Markdown code fences (` + "```" + `).
- NEVER output HTML or pseudo-LaTeX.
- ONLY output raw LaTeX for a SINGLE section.
- NEVER include unrelated topics.
- NEVER repeat previous sections.
- Ensure all braces { } and environments \begin{}...\end{} are balanced.
- Avoid placeholders like "Here is...".`

// SyntaxRules is the LaTeX correctness reminder sent with every refinement.
const SyntaxRules = `STRICT SYNTAX RULES:
1. ALGORITHMS: You MUST use the 'algorithmic' package syntax:
   - Use \begin{algorithm} \begin{algorithmic} ... \end{algorithmic} \end{algorithm}
   - Use commands: \STATE, \REQUIRE, \ENSURE, \IF{}, \FOR{}.
   - DO NOT use \SetKwInOut or \RestyleAlgo (these belong to algorithm2e, which is not loaded).
2. MATH: Use \norm{} and \diag{} (these are defined).
3. FIGURES: Ensure \includegraphics has a valid filename (or placeholder).
4. BRACES: Check that every { has a matching }.`
