package app

import (
    "os"
    "path/filepath"
    "strings"
    "testing"
    "time"
)

func TestLoadConfigFile_YAMLAndApply(t *testing.T) {
    dir := t.TempDir()
    prompt := filepath.Join(dir, "writer.txt")
    if err := os.WriteFile(prompt, []byte("Write like a physicist."), 0o644); err != nil {
        t.Fatalf("write prompt: %v", err)
    }
    yml := "inputs:\n  assignment: a.txt\n  notebook: n.ipynb\noutput:\n  name: lab1\nllm:\n  model: writer\n  stylistModel: stylist\npipeline:\n  verbosity: long\n  maxRefines: 0\n  delay: 250ms\nprompts:\n  writerSystemPromptFile: " + prompt + "\ncache:\n  only: true\nmetrics: true\n"
    path := filepath.Join(dir, "note2tex.yaml")
    if err := os.WriteFile(path, []byte(yml), 0o644); err != nil {
        t.Fatalf("write config: %v", err)
    }
    fc, err := LoadConfigFile(path)
    if err != nil {
        t.Fatalf("load: %v", err)
    }

    // Flag defaults as the CLI would set them, plus one explicit flag.
    cfg := Config{OutputDir: DefaultOutputDir, Name: DefaultName, Verbosity: DefaultVerbosity, MaxRefines: DefaultMaxRefines, Delay: DefaultDelay, LLMModel: "from-flag"}
    ApplyFileConfig(&cfg, fc)

    if cfg.AssignmentPath != "a.txt" || cfg.NotebookPath != "n.ipynb" || cfg.Name != "lab1" {
        t.Fatalf("inputs not applied: %+v", cfg)
    }
    if cfg.LLMModel != "from-flag" {
        t.Fatalf("explicit flag overwritten: %q", cfg.LLMModel)
    }
    if cfg.StylistModel != "stylist" || cfg.Verbosity != "long" || cfg.Delay != 250*time.Millisecond {
        t.Fatalf("llm/pipeline not applied: %+v", cfg)
    }
    if cfg.MaxRefines != 0 {
        t.Fatalf("explicit zero refinements must be honored, got %d", cfg.MaxRefines)
    }
    if cfg.WriterSystemPrompt != "Write like a physicist." || !cfg.LLMCacheOnly || !cfg.EnableMetrics {
        t.Fatalf("prompt/cache/metrics not applied: %+v", cfg)
    }
}

func TestLoadConfigFile_JSON(t *testing.T) {
    path := filepath.Join(t.TempDir(), "c.json")
    if err := os.WriteFile(path, []byte(`{"llm":{"base":"http://x/v1","model":"m"},"output":{"dir":"build"}}`), 0o644); err != nil {
        t.Fatalf("write: %v", err)
    }
    fc, err := LoadConfigFile(path)
    if err != nil {
        t.Fatalf("load: %v", err)
    }
    if fc.LLM.BaseURL != "http://x/v1" || fc.LLM.Model != "m" || fc.Output.Dir != "build" {
        t.Fatalf("fc = %+v", fc)
    }
}

func TestValidateConfig(t *testing.T) {
    ok := Config{AssignmentPath: "a.txt", LLMModel: "m", Verbosity: "tiny"}
    if err := ValidateConfig(ok); err != nil {
        t.Fatalf("unexpected error: %v", err)
    }
    cases := []struct {
        name string
        cfg  Config
        want string
    }{
        {"no inputs", Config{LLMModel: "m"}, "assignment or notebook"},
        {"no model", Config{AssignmentPath: "a"}, "llm.model"},
        {"negative", Config{AssignmentPath: "a", LLMModel: "m", MaxRefines: -2}, "negative"},
        {"verbosity", Config{AssignmentPath: "a", LLMModel: "m", Verbosity: "huge"}, "verbosity"},
        {"name", Config{AssignmentPath: "a", LLMModel: "m", Name: "a/b"}, "separators"},
    }
    for _, tc := range cases {
        err := ValidateConfig(tc.cfg)
        if err == nil || !strings.Contains(err.Error(), tc.want) {
            t.Fatalf("%s: got %v, want error containing %q", tc.name, err, tc.want)
        }
    }
    if err := ValidateConfig(Config{NotebookPath: "n.ipynb", LLMCacheOnly: true}); err != nil {
        t.Fatalf("cache-only run without model should be valid: %v", err)
    }
}
