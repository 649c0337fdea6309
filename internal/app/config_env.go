package app

import (
    "os"
    "strconv"
    "strings"
    "time"
)

// ApplyEnvToConfig populates unset fields of cfg from environment variables.
// Explicit cfg values take precedence over env.
func ApplyEnvToConfig(cfg *Config) {
    if cfg == nil { return }

    setString := func(dst *string, keys ...string) {
        if *dst != "" { return }
        for _, k := range keys {
            if v := os.Getenv(k); v != "" {
                *dst = v
                return
            }
        }
    }
    setString(&cfg.LLMBaseURL, "LLM_BASE_URL", "OPENAI_BASE_URL")
    setString(&cfg.LLMModel, "LLM_MODEL")
    setString(&cfg.LLMAPIKey, "LLM_API_KEY", "OPENAI_API_KEY")
    setString(&cfg.RefineModel, "NOTE2TEX_REFINE_MODEL")
    setString(&cfg.StylistModel, "NOTE2TEX_STYLIST_MODEL")
    setString(&cfg.PreamblePath, "NOTE2TEX_PREAMBLE")
    setString(&cfg.CacheDir, "NOTE2TEX_CACHE_DIR", "CACHE_DIR")
    setString(&cfg.Verbosity, "NOTE2TEX_VERBOSITY")

    if cfg.MaxRefines == 0 {
        if n, ok := envInt("NOTE2TEX_MAX_REFINES"); ok { cfg.MaxRefines = n }
    }
    if cfg.LLMMaxTries == 0 {
        if n, ok := envInt("NOTE2TEX_LLM_MAX_TRIES"); ok && n > 0 { cfg.LLMMaxTries = n }
    }
    if cfg.Delay == 0 {
        if d, ok := envDuration("NOTE2TEX_DELAY"); ok { cfg.Delay = d }
    }
    if cfg.CacheMaxAge == 0 {
        if d, ok := envDuration("CACHE_MAX_AGE"); ok { cfg.CacheMaxAge = d }
    }

    setBool := func(dst *bool, envKey string) {
        if *dst { return }
        if b, ok := envBool(envKey); ok && b { *dst = true }
    }
    setBool(&cfg.Verbose, "VERBOSE")
    setBool(&cfg.CacheClear, "CACHE_CLEAR")
    setBool(&cfg.CacheStrictPerms, "CACHE_STRICT_PERMS")
    setBool(&cfg.LLMCacheOnly, "LLM_CACHE_ONLY")
    setBool(&cfg.EnableDiagnostics, "NOTE2TEX_DIAGNOSTICS")
    setBool(&cfg.EnableMetrics, "NOTE2TEX_METRICS")
}

// ApplyEnvOverrides forcefully overrides cfg fields with environment variables
// when the corresponding env vars are set. This lets env take precedence over
// values coming from a config file while flags remain highest precedence.
func ApplyEnvOverrides(cfg *Config) {
    if cfg == nil { return }

    if v := os.Getenv("LLM_BASE_URL"); v != "" { cfg.LLMBaseURL = v }
    if v := os.Getenv("LLM_MODEL"); v != "" { cfg.LLMModel = v }
    if v := os.Getenv("LLM_API_KEY"); v != "" { cfg.LLMAPIKey = v }
    if v := os.Getenv("NOTE2TEX_REFINE_MODEL"); v != "" { cfg.RefineModel = v }
    if v := os.Getenv("NOTE2TEX_STYLIST_MODEL"); v != "" { cfg.StylistModel = v }
    if v := os.Getenv("NOTE2TEX_PREAMBLE"); v != "" { cfg.PreamblePath = v }
    if v := os.Getenv("NOTE2TEX_CACHE_DIR"); v != "" { cfg.CacheDir = v }
    if v := os.Getenv("NOTE2TEX_VERBOSITY"); v != "" { cfg.Verbosity = v }

    if n, ok := envInt("NOTE2TEX_MAX_REFINES"); ok { cfg.MaxRefines = n }
    if d, ok := envDuration("NOTE2TEX_DELAY"); ok { cfg.Delay = d }
    if d, ok := envDuration("CACHE_MAX_AGE"); ok { cfg.CacheMaxAge = d }

    setBool := func(dst *bool, envKey string) {
        if b, ok := envBool(envKey); ok { *dst = b }
    }
    setBool(&cfg.Verbose, "VERBOSE")
    setBool(&cfg.CacheClear, "CACHE_CLEAR")
    setBool(&cfg.CacheStrictPerms, "CACHE_STRICT_PERMS")
    setBool(&cfg.LLMCacheOnly, "LLM_CACHE_ONLY")
    setBool(&cfg.EnableDiagnostics, "NOTE2TEX_DIAGNOSTICS")
    setBool(&cfg.EnableMetrics, "NOTE2TEX_METRICS")
}

func envInt(key string) (int, bool) {
    s := strings.TrimSpace(os.Getenv(key))
    if s == "" { return 0, false }
    n, err := strconv.Atoi(s)
    if err != nil { return 0, false }
    return n, true
}

func envDuration(key string) (time.Duration, bool) {
    s := strings.TrimSpace(os.Getenv(key))
    if s == "" { return 0, false }
    d, err := time.ParseDuration(s)
    if err != nil || d < 0 { return 0, false }
    return d, true
}

func envBool(key string) (bool, bool) {
    switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
    case "1", "true", "yes", "on":
        return true, true
    case "0", "false", "no", "off":
        return false, true
    }
    return false, false
}
