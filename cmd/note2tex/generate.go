package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/hyperifyio/note2tex/internal/app"
)

func newGenerateCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate, validate, refine and finalize every report section",
		Example: `  note2tex generate --assignment task.txt --notebook lab.ipynb --llm.model qwen2.5
  note2tex generate --config note2tex.yaml --verbosity long --stylist.model llama3.1`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := buildGenerateConfig(cmd.Flags(), root.configPath)
			if err != nil {
				return err
			}
			if root.verbose || cfg.Verbose {
				cfg.Verbose = true
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return runGenerate(ctx, cfg)
		},
	}
	fl := cmd.Flags()
	fl.String("assignment", "", "Path to the assignment text")
	fl.String("notebook", "", "Path to the notebook (.ipynb) or a source file")
	fl.String("summary", "", "Path to a short summary of the work")
	fl.String("preamble", "", "LaTeX preamble template with a body placeholder")
	fl.String("output.dir", app.DefaultOutputDir, "Directory for generated files")
	fl.String("output.name", app.DefaultName, "Base name of generated files")
	fl.String("llm.base", "", "OpenAI-compatible base URL (or LLM_BASE_URL)")
	fl.String("llm.model", "", "Writer model name (or LLM_MODEL)")
	fl.String("llm.key", "", "API key for the model server (or LLM_API_KEY)")
	fl.String("refine.model", "", "Model for refinement; defaults to the writer model")
	fl.String("stylist.model", "", "Model for the layout polish; empty uses the deterministic layout")
	fl.Duration("llm.timeout", 0, "Per-request timeout (default 5m)")
	fl.Int("llm.maxTries", 0, "Attempts per model call including the first (default 5)")
	fl.String("verbosity", app.DefaultVerbosity, "Prose depth: tiny, medium or long")
	fl.Int("max-refines", app.DefaultMaxRefines, "Refinement attempts per section; 0 disables")
	fl.Duration("delay", app.DefaultDelay, "Pause between model calls")
	fl.String("writer.systemPrompt", "", "Override the writer system prompt (inline string)")
	fl.String("writer.systemPromptFile", "", "Path to a file containing the writer system prompt")
	fl.String("cache.dir", app.DefaultCacheDir, "LLM response cache directory; empty disables")
	fl.Duration("cache.maxAge", 0, "Max age for cache entries before purge (e.g. 24h); 0 disables")
	fl.Bool("cache.clear", false, "Clear cache directory before run")
	fl.Bool("cache.strictPerms", false, "Restrict cache permissions (0700 dirs, 0600 files)")
	fl.Bool("cache.only", false, "Serve model calls from cache only; fail on a miss")
	fl.Bool("diagnostics", false, "Write a diagnostics PDF next to the document")
	fl.Bool("metrics", false, "Write Prometheus metrics in text format next to the document")
	return cmd
}

// buildGenerateConfig layers configuration: flag defaults, then the config
// file, then environment, then flags the user actually set.
func buildGenerateConfig(fs *pflag.FlagSet, configPath string) (app.Config, error) {
	cfg := app.Config{
		OutputDir:  app.DefaultOutputDir,
		Name:       app.DefaultName,
		Verbosity:  app.DefaultVerbosity,
		MaxRefines: app.DefaultMaxRefines,
		Delay:      app.DefaultDelay,
		CacheDir:   app.DefaultCacheDir,
	}
	if strings.TrimSpace(configPath) != "" {
		fc, err := app.LoadConfigFile(configPath)
		if err != nil {
			return cfg, fmt.Errorf("load config: %w", err)
		}
		app.ApplyFileConfig(&cfg, fc)
	}
	app.ApplyEnvOverrides(&cfg)

	// Getter errors are impossible here: every name is registered above with
	// the matching type.
	str := func(name string, dst *string) {
		if fs.Changed(name) {
			*dst, _ = fs.GetString(name)
		}
	}
	str("assignment", &cfg.AssignmentPath)
	str("notebook", &cfg.NotebookPath)
	str("summary", &cfg.SummaryPath)
	str("preamble", &cfg.PreamblePath)
	str("output.dir", &cfg.OutputDir)
	str("output.name", &cfg.Name)
	str("llm.base", &cfg.LLMBaseURL)
	str("llm.model", &cfg.LLMModel)
	str("llm.key", &cfg.LLMAPIKey)
	str("refine.model", &cfg.RefineModel)
	str("stylist.model", &cfg.StylistModel)
	str("verbosity", &cfg.Verbosity)
	str("writer.systemPrompt", &cfg.WriterSystemPrompt)
	str("cache.dir", &cfg.CacheDir)

	if fs.Changed("llm.timeout") {
		cfg.LLMTimeout, _ = fs.GetDuration("llm.timeout")
	}
	if fs.Changed("delay") {
		cfg.Delay, _ = fs.GetDuration("delay")
	}
	if fs.Changed("cache.maxAge") {
		cfg.CacheMaxAge, _ = fs.GetDuration("cache.maxAge")
	}
	if fs.Changed("llm.maxTries") {
		cfg.LLMMaxTries, _ = fs.GetInt("llm.maxTries")
	}
	if fs.Changed("max-refines") {
		cfg.MaxRefines, _ = fs.GetInt("max-refines")
	}

	boolean := func(name string, dst *bool) {
		if fs.Changed(name) {
			*dst, _ = fs.GetBool(name)
		}
	}
	boolean("cache.clear", &cfg.CacheClear)
	boolean("cache.strictPerms", &cfg.CacheStrictPerms)
	boolean("cache.only", &cfg.LLMCacheOnly)
	boolean("diagnostics", &cfg.EnableDiagnostics)
	boolean("metrics", &cfg.EnableMetrics)

	// A prompt file takes precedence over an inline prompt.
	if path, _ := fs.GetString("writer.systemPromptFile"); strings.TrimSpace(path) != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read writer prompt: %w", err)
		}
		cfg.WriterSystemPrompt = string(b)
	}
	return cfg, app.ValidateConfig(cfg)
}

func runGenerate(ctx context.Context, cfg app.Config) error {
	a, err := app.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}
	defer a.Close()

	return a.Run(ctx)
}
