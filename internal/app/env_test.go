package app

import (
    "os"
    "path/filepath"
    "testing"
    "time"
)

// LoadEnvFiles reads KEY=VALUE pairs and populates os.Environ.
func TestLoadEnvFiles_LoadsKeyValues(t *testing.T) {
    t.Setenv("FOO", "")
    t.Setenv("BAR", "")

    dir := t.TempDir()
    envPath := filepath.Join(dir, ".env.test")
    content := "\n# sample dotenv file\nFOO=alpha\nBAR=\"beta\"\n"
    if err := os.WriteFile(envPath, []byte(content), 0o600); err != nil {
        t.Fatalf("write dotenv: %v", err)
    }

    if err := LoadEnvFiles(envPath, filepath.Join(dir, "missing.env")); err != nil {
        t.Fatalf("LoadEnvFiles error: %v", err)
    }

    if got := os.Getenv("FOO"); got != "alpha" {
        t.Fatalf("FOO=%q, want alpha", got)
    }
    if got := os.Getenv("BAR"); got != "beta" {
        t.Fatalf("BAR=%q, want beta", got)
    }
}

// Later files override earlier ones when loading multiple dotenv files.
func TestLoadEnvFiles_OverrideOrder(t *testing.T) {
    t.Setenv("K", "")
    dir := t.TempDir()
    a := filepath.Join(dir, ".env.a")
    b := filepath.Join(dir, ".env.b")
    if err := os.WriteFile(a, []byte("K=first\n"), 0o600); err != nil { t.Fatalf("write a: %v", err) }
    if err := os.WriteFile(b, []byte("K=second\n"), 0o600); err != nil { t.Fatalf("write b: %v", err) }

    if err := LoadEnvFiles(a, b); err != nil {
        t.Fatalf("LoadEnvFiles error: %v", err)
    }
    if got := os.Getenv("K"); got != "second" {
        t.Fatalf("override order failed: got %q, want second", got)
    }
}

func TestApplyEnvToConfig_FromEnv(t *testing.T) {
    t.Setenv("LLM_BASE_URL", "")
    t.Setenv("OPENAI_BASE_URL", "http://llm.example/v1")
    t.Setenv("LLM_MODEL", "writer-8b")
    t.Setenv("NOTE2TEX_STYLIST_MODEL", "stylist-70b")
    t.Setenv("NOTE2TEX_MAX_REFINES", "3")
    t.Setenv("NOTE2TEX_DELAY", "250ms")
    t.Setenv("NOTE2TEX_METRICS", "yes")

    cfg := Config{LLMModel: "explicit"}
    ApplyEnvToConfig(&cfg)
    if cfg.LLMBaseURL != "http://llm.example/v1" {
        t.Fatalf("LLMBaseURL=%q, want fallback from OPENAI_BASE_URL", cfg.LLMBaseURL)
    }
    if cfg.LLMModel != "explicit" {
        t.Fatalf("explicit model overwritten: %q", cfg.LLMModel)
    }
    if cfg.StylistModel != "stylist-70b" || cfg.MaxRefines != 3 || cfg.Delay != 250*time.Millisecond || !cfg.EnableMetrics {
        t.Fatalf("cfg = %+v", cfg)
    }
}

func TestApplyEnvOverrides_BeatsFileValues(t *testing.T) {
    t.Setenv("LLM_MODEL", "from-env")
    t.Setenv("VERBOSE", "false")
    t.Setenv("NOTE2TEX_DELAY", "not-a-duration")
    cfg := Config{LLMModel: "from-file", Verbose: true, Delay: time.Second}
    ApplyEnvOverrides(&cfg)
    if cfg.LLMModel != "from-env" || cfg.Verbose {
        t.Fatalf("cfg = %+v", cfg)
    }
    if cfg.Delay != time.Second {
        t.Fatalf("invalid duration should be ignored, got %v", cfg.Delay)
    }
}
