package app

import (
    "encoding/json"
    "errors"
    "fmt"
    "os"
    "path/filepath"
    "strings"
    "time"

    yaml "gopkg.in/yaml.v3"

    "github.com/hyperifyio/note2tex/internal/section"
)

// Defaults applied by the CLI flags. File config only replaces a value that
// is still at its default.
const (
    DefaultOutputDir  = "output"
    DefaultName       = "report"
    DefaultVerbosity  = "medium"
    DefaultMaxRefines = 2
    DefaultDelay      = time.Second
    DefaultCacheDir   = ".note2tex-cache"
)

// FileConfig represents the single-file configuration schema.
// Nested sections improve readability and map naturally to flags/env.
type FileConfig struct {
    Inputs struct {
        Assignment string `yaml:"assignment" json:"assignment"`
        Notebook   string `yaml:"notebook" json:"notebook"`
        Summary    string `yaml:"summary" json:"summary"`
        Preamble   string `yaml:"preamble" json:"preamble"`
    } `yaml:"inputs" json:"inputs"`

    Output struct {
        Dir  string `yaml:"dir" json:"dir"`
        Name string `yaml:"name" json:"name"`
    } `yaml:"output" json:"output"`

    LLM struct {
        BaseURL  string        `yaml:"base" json:"base"`
        Model    string        `yaml:"model" json:"model"`
        APIKey   string        `yaml:"key" json:"key"`
        Refine   string        `yaml:"refineModel" json:"refineModel"`
        Stylist  string        `yaml:"stylistModel" json:"stylistModel"`
        Timeout  time.Duration `yaml:"timeout" json:"timeout"`
        MaxTries int           `yaml:"maxTries" json:"maxTries"`
    } `yaml:"llm" json:"llm"`

    Pipeline struct {
        Verbosity  string        `yaml:"verbosity" json:"verbosity"`
        MaxRefines *int          `yaml:"maxRefines" json:"maxRefines"`
        Delay      time.Duration `yaml:"delay" json:"delay"`
    } `yaml:"pipeline" json:"pipeline"`

    Prompts struct {
        WriterSystemPrompt     string `yaml:"writerSystemPrompt" json:"writerSystemPrompt"`
        WriterSystemPromptFile string `yaml:"writerSystemPromptFile" json:"writerSystemPromptFile"`
    } `yaml:"prompts" json:"prompts"`

    Cache struct {
        Dir         string        `yaml:"dir" json:"dir"`
        MaxAge      time.Duration `yaml:"maxAge" json:"maxAge"`
        Clear       bool          `yaml:"clear" json:"clear"`
        StrictPerms bool          `yaml:"strictPerms" json:"strictPerms"`
        Only        bool          `yaml:"only" json:"only"`
    } `yaml:"cache" json:"cache"`

    Diagnostics bool `yaml:"diagnostics" json:"diagnostics"`
    Metrics     bool `yaml:"metrics" json:"metrics"`
    Verbose     bool `yaml:"verbose" json:"verbose"`
}

// LoadConfigFile reads YAML or JSON into FileConfig.
func LoadConfigFile(path string) (FileConfig, error) {
    var fc FileConfig
    b, err := os.ReadFile(path)
    if err != nil {
        return fc, err
    }
    switch ext := filepath.Ext(path); ext {
    case ".yaml", ".yml":
        if err := yaml.Unmarshal(b, &fc); err != nil {
            return fc, fmt.Errorf("parse yaml: %w", err)
        }
    case ".json":
        if err := json.Unmarshal(b, &fc); err != nil {
            return fc, fmt.Errorf("parse json: %w", err)
        }
    default:
        // Try YAML then JSON
        if err := yaml.Unmarshal(b, &fc); err != nil {
            if jerr := json.Unmarshal(b, &fc); jerr != nil {
                return fc, fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
            }
        }
    }
    if fc.Prompts.WriterSystemPrompt == "" && fc.Prompts.WriterSystemPromptFile != "" {
        p, err := os.ReadFile(fc.Prompts.WriterSystemPromptFile)
        if err != nil {
            return fc, fmt.Errorf("read writer prompt: %w", err)
        }
        fc.Prompts.WriterSystemPrompt = string(p)
    }
    return fc, nil
}

// ApplyFileConfig overlays values from FileConfig into cfg for any fields that
// are currently unset or at their flag default. Flags should already have been
// parsed; this lets file config supply defaults while preserving explicit flags.
func ApplyFileConfig(cfg *Config, fc FileConfig) {
    if cfg == nil { return }

    if cfg.AssignmentPath == "" && fc.Inputs.Assignment != "" { cfg.AssignmentPath = fc.Inputs.Assignment }
    if cfg.NotebookPath == "" && fc.Inputs.Notebook != "" { cfg.NotebookPath = fc.Inputs.Notebook }
    if cfg.SummaryPath == "" && fc.Inputs.Summary != "" { cfg.SummaryPath = fc.Inputs.Summary }
    if cfg.PreamblePath == "" && fc.Inputs.Preamble != "" { cfg.PreamblePath = fc.Inputs.Preamble }

    if (cfg.OutputDir == "" || cfg.OutputDir == DefaultOutputDir) && fc.Output.Dir != "" { cfg.OutputDir = fc.Output.Dir }
    if (cfg.Name == "" || cfg.Name == DefaultName) && fc.Output.Name != "" { cfg.Name = fc.Output.Name }

    if cfg.LLMBaseURL == "" && fc.LLM.BaseURL != "" { cfg.LLMBaseURL = fc.LLM.BaseURL }
    if cfg.LLMModel == "" && fc.LLM.Model != "" { cfg.LLMModel = fc.LLM.Model }
    if cfg.LLMAPIKey == "" && fc.LLM.APIKey != "" { cfg.LLMAPIKey = fc.LLM.APIKey }
    if cfg.RefineModel == "" && fc.LLM.Refine != "" { cfg.RefineModel = fc.LLM.Refine }
    if cfg.StylistModel == "" && fc.LLM.Stylist != "" { cfg.StylistModel = fc.LLM.Stylist }
    if cfg.LLMTimeout == 0 && fc.LLM.Timeout > 0 { cfg.LLMTimeout = fc.LLM.Timeout }
    if cfg.LLMMaxTries == 0 && fc.LLM.MaxTries > 0 { cfg.LLMMaxTries = fc.LLM.MaxTries }

    if (cfg.Verbosity == "" || cfg.Verbosity == DefaultVerbosity) && fc.Pipeline.Verbosity != "" { cfg.Verbosity = fc.Pipeline.Verbosity }
    if (cfg.MaxRefines == 0 || cfg.MaxRefines == DefaultMaxRefines) && fc.Pipeline.MaxRefines != nil { cfg.MaxRefines = *fc.Pipeline.MaxRefines }
    if (cfg.Delay == 0 || cfg.Delay == DefaultDelay) && fc.Pipeline.Delay > 0 { cfg.Delay = fc.Pipeline.Delay }

    if cfg.WriterSystemPrompt == "" && fc.Prompts.WriterSystemPrompt != "" { cfg.WriterSystemPrompt = fc.Prompts.WriterSystemPrompt }

    if (cfg.CacheDir == "" || cfg.CacheDir == DefaultCacheDir) && fc.Cache.Dir != "" { cfg.CacheDir = fc.Cache.Dir }
    if cfg.CacheMaxAge == 0 && fc.Cache.MaxAge > 0 { cfg.CacheMaxAge = fc.Cache.MaxAge }
    if !cfg.CacheClear && fc.Cache.Clear { cfg.CacheClear = true }
    if !cfg.CacheStrictPerms && fc.Cache.StrictPerms { cfg.CacheStrictPerms = true }
    if !cfg.LLMCacheOnly && fc.Cache.Only { cfg.LLMCacheOnly = true }

    if !cfg.EnableDiagnostics && fc.Diagnostics { cfg.EnableDiagnostics = true }
    if !cfg.EnableMetrics && fc.Metrics { cfg.EnableMetrics = true }
    if !cfg.Verbose && fc.Verbose { cfg.Verbose = true }
}

// ValidateConfig performs minimal schema validation for required settings.
func ValidateConfig(cfg Config) error {
    if strings.TrimSpace(cfg.AssignmentPath) == "" && strings.TrimSpace(cfg.NotebookPath) == "" {
        return errors.New("config: an assignment or notebook path is required")
    }
    if strings.TrimSpace(cfg.LLMModel) == "" && !cfg.LLMCacheOnly {
        return errors.New("config: llm.model is required (or set LLM_MODEL)")
    }
    if cfg.MaxRefines < -1 || cfg.Delay < 0 || cfg.LLMMaxTries < 0 {
        return errors.New("config: negative limits are not allowed")
    }
    switch strings.ToLower(strings.TrimSpace(cfg.Verbosity)) {
    case "", string(section.Tiny), string(section.Medium), string(section.Long):
    default:
        return fmt.Errorf("config: unknown verbosity %q (want tiny, medium or long)", cfg.Verbosity)
    }
    if strings.ContainsAny(cfg.Name, `/\`) {
        return errors.New("config: output name must not contain path separators")
    }
    return nil
}
