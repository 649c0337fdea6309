package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hyperifyio/note2tex/internal/app"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	// Never pick up a developer's .env during tests.
	cmd.SetArgs(append(args, "--env-file", filepath.Join(t.TempDir(), "none.env")))
	err := cmd.Execute()
	return out.String(), err
}

func TestExitCode(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{nil, 0},
		{app.ErrNoSections, 2},
		{fmt.Errorf("wrapped: %w", app.ErrNoMaterials), 2},
		{errValidationFailed, 1},
		{errors.New("other"), 1},
	}
	for _, tc := range cases {
		if got := exitCode(tc.err); got != tc.want {
			t.Fatalf("exitCode(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestValidateCommand(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.tex")
	bad := filepath.Join(dir, "bad.tex")
	if err := os.WriteFile(good, []byte("The measured error decreases steadily with every additional training epoch."), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(bad, []byte("\\documentclass{article}\n\\usepackage{x}\nShort {"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "validate", good, "--section", "results")
	if err != nil || !strings.Contains(out, "OK") {
		t.Fatalf("good file: err=%v out=%q", err, out)
	}

	out, err = execute(t, "validate", bad, "--section", "results")
	if !errors.Is(err, errValidationFailed) {
		t.Fatalf("expected validation failure, got %v", err)
	}
	for _, want := range []string{`\usepackage`, "braces", "too short"} {
		if !strings.Contains(strings.ToLower(out), strings.ToLower(want)) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}

	if _, err := execute(t, "validate", good, "--section", "appendix"); err == nil {
		t.Fatal("unknown section should be rejected")
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.Contains(out, app.BuildVersion) {
		t.Fatalf("version output = %q", out)
	}
}

func TestBuildGenerateConfig_Precedence(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "note2tex.yaml")
	yml := "inputs:\n  assignment: from-file.txt\nllm:\n  model: file-model\n  base: http://file/v1\npipeline:\n  verbosity: tiny\n"
	if err := os.WriteFile(cfgPath, []byte(yml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("LLM_BASE_URL", "http://env/v1")
	t.Setenv("LLM_MODEL", "")

	cmd := newGenerateCmd(&rootOptions{})
	if err := cmd.ParseFlags([]string{"--llm.model", "flag-model", "--max-refines", "0", "--delay", "0s"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	cfg, err := buildGenerateConfig(cmd.Flags(), cfgPath)
	if err != nil {
		t.Fatalf("build config: %v", err)
	}
	if cfg.AssignmentPath != "from-file.txt" || cfg.Verbosity != "tiny" {
		t.Fatalf("file values missing: %+v", cfg)
	}
	if cfg.LLMBaseURL != "http://env/v1" {
		t.Fatalf("env should beat file: %q", cfg.LLMBaseURL)
	}
	if cfg.LLMModel != "flag-model" {
		t.Fatalf("flag should beat file: %q", cfg.LLMModel)
	}
	if cfg.MaxRefines != 0 || cfg.Delay != 0 {
		t.Fatalf("explicit zero flags ignored: refines=%d delay=%v", cfg.MaxRefines, cfg.Delay)
	}
	if cfg.OutputDir != app.DefaultOutputDir || cfg.CacheDir != app.DefaultCacheDir {
		t.Fatalf("defaults lost: %+v", cfg)
	}
}

func TestBuildGenerateConfig_DefaultsAndValidation(t *testing.T) {
	t.Setenv("LLM_MODEL", "")
	t.Setenv("NOTE2TEX_DELAY", "")
	cmd := newGenerateCmd(&rootOptions{})
	if err := cmd.ParseFlags([]string{"--assignment", "a.txt"}); err != nil {
		t.Fatal(err)
	}
	_, err := buildGenerateConfig(cmd.Flags(), "")
	if err == nil || !strings.Contains(err.Error(), "llm.model") {
		t.Fatalf("expected missing model error, got %v", err)
	}

	cmd = newGenerateCmd(&rootOptions{})
	if err := cmd.ParseFlags([]string{"--assignment", "a.txt", "--llm.model", "m"}); err != nil {
		t.Fatal(err)
	}
	cfg, err := buildGenerateConfig(cmd.Flags(), "")
	if err != nil {
		t.Fatalf("build config: %v", err)
	}
	if cfg.MaxRefines != app.DefaultMaxRefines || cfg.Delay != time.Second || cfg.Verbosity != app.DefaultVerbosity {
		t.Fatalf("defaults = %+v", cfg)
	}
}
