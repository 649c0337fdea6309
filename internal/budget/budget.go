// Package budget sizes a completion request against the model's context
// window, using a character-count token estimate.
package budget

import (
    "regexp"
    "strconv"
    "strings"
)

const (
    // DefaultContextTokens is assumed for models we know nothing about.
    DefaultContextTokens = 8192
    // MinOutputTokens is the floor handed to the model even when the prompt
    // already fills the window; the server then decides.
    MinOutputTokens = 256
)

// EstimateTokens converts text into an estimated token count using a
// conservative heuristic (~4 chars per token). The result is at least 1 for
// non-empty text.
func EstimateTokens(s string) int {
    return (len(s) + 3) / 4
}

// knownContext contains rough context sizes for model families commonly
// served behind OpenAI-compatible endpoints. Best-effort, not exhaustive.
var knownContext = map[string]int{
    "gpt-4o":        128_000,
    "gpt-4o-mini":   128_000,
    "gpt-4-turbo":   128_000,
    "gpt-3.5-turbo": 16_384,
    "llama3":        8_192,
    "llama-3":       8_192,
    "llama3.1":      128_000,
    "llama-3.1":     128_000,
    "qwen2.5":       32_768,
    "mistral":       32_768,
    "gpt-oss-20b":   4_096,
}

// windowSuffixRe matches a trailing context size such as "-32k" or ":128k".
var windowSuffixRe = regexp.MustCompile(`[-_:](\d+)k$`)

// ContextTokens returns the estimated context window for model. Exact names
// win, then a "-NNk" suffix, then the family prefix before ':' or '/'.
func ContextTokens(model string) int {
    name := strings.ToLower(strings.TrimSpace(model))
    if name == "" {
        return DefaultContextTokens
    }
    if v, ok := knownContext[name]; ok {
        return v
    }
    if m := windowSuffixRe.FindStringSubmatch(name); m != nil {
        if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
            return n * 1024
        }
    }
    if i := strings.LastIndex(name, "/"); i >= 0 {
        name = name[i+1:]
    }
    if i := strings.Index(name, ":"); i >= 0 {
        name = name[:i]
    }
    if v, ok := knownContext[name]; ok {
        return v
    }
    return DefaultContextTokens
}

// Headroom is the margin kept free for tokenizer error and message framing:
// the larger of 5% of the window or 512 tokens.
func Headroom(model string) int {
    dyn := (ContextTokens(model)*5 + 99) / 100
    if dyn < 512 {
        return 512
    }
    return dyn
}

// OutputTokens returns how many completion tokens to request so that the
// system and user messages plus the answer fit in the window. fits is false
// when want had to be reduced.
func OutputTokens(model, system, user string, want int) (n int, fits bool) {
    prompt := EstimateTokens(system) + EstimateTokens(user)
    remaining := ContextTokens(model) - Headroom(model) - prompt
    switch {
    case remaining >= want:
        return want, true
    case remaining >= MinOutputTokens:
        return remaining, false
    default:
        return MinOutputTokens, false
    }
}
