package app

import "time"

// Config holds runtime configuration for the application.
type Config struct {
	// Inputs
	AssignmentPath string
	NotebookPath   string
	SummaryPath    string
	PreamblePath   string

	// Outputs
	OutputDir string
	Name      string

	// LLM
	LLMBaseURL   string
	LLMModel     string
	LLMAPIKey    string
	RefineModel  string
	StylistModel string
	LLMTimeout   time.Duration
	LLMMaxTries  int

	// Pipeline. MaxRefines is taken literally: zero disables refinement.
	Verbosity  string
	MaxRefines int
	Delay      time.Duration

	// Prompts
	WriterSystemPrompt string

	// Behavior
	CacheDir          string
	CacheMaxAge       time.Duration
	CacheClear        bool
	CacheStrictPerms  bool
	LLMCacheOnly      bool
	EnableDiagnostics bool
	EnableMetrics     bool
	Verbose           bool
}
