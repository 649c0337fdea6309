package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/note2tex/internal/assemble"
	"github.com/hyperifyio/note2tex/internal/cache"
	"github.com/hyperifyio/note2tex/internal/finalize"
	"github.com/hyperifyio/note2tex/internal/generate"
	"github.com/hyperifyio/note2tex/internal/llm"
	"github.com/hyperifyio/note2tex/internal/materials"
	"github.com/hyperifyio/note2tex/internal/metrics"
	"github.com/hyperifyio/note2tex/internal/pipeline"
	"github.com/hyperifyio/note2tex/internal/refine"
	"github.com/hyperifyio/note2tex/internal/section"
	"github.com/hyperifyio/note2tex/internal/stylist"
	"github.com/hyperifyio/note2tex/internal/validate"
)

type App struct {
	cfg        Config
	client     llm.Client
	httpClient *http.Client
	llm        *llm.Completer
	metrics    *metrics.Recorder
	llmCache   *cache.LLMCache
}

// ErrNoMaterials is returned when every configured input is empty.
var ErrNoMaterials = errors.New("no usable materials")

// ErrNoSections is returned when no section produced text. Outputs are
// still written so the manifest and diagnostics explain why, but the CLI
// exits non-zero.
var ErrNoSections = errors.New("no sections generated")

func New(ctx context.Context, cfg Config) (*App, error) {
	httpClient := newLLMHTTPClient(cfg.LLMTimeout)
	provider := llm.NewOpenAIProvider(cfg.LLMAPIKey, cfg.LLMBaseURL, httpClient)
	a := &App{cfg: cfg, client: provider, httpClient: httpClient, metrics: metrics.New()}

	if cfg.CacheDir != "" {
		if cfg.CacheClear {
			if err := cache.ClearDir(cfg.CacheDir); err != nil {
				log.Warn().Err(err).Str("dir", cfg.CacheDir).Msg("cache clear failed")
			}
		}
		if cfg.CacheMaxAge > 0 {
			// Purge errors must not fail startup.
			if n, err := cache.PurgeByAge(cfg.CacheDir, cfg.CacheMaxAge); err != nil {
				log.Warn().Err(err).Msg("cache purge failed")
			} else if n > 0 {
				log.Info().Int("removed", n).Dur("max_age", cfg.CacheMaxAge).Msg("purged stale cache entries")
			}
		}
		a.llmCache = &cache.LLMCache{Dir: cfg.CacheDir, StrictPerms: cfg.CacheStrictPerms}
	}

	tries := uint(0)
	if cfg.LLMMaxTries > 0 {
		tries = uint(cfg.LLMMaxTries)
	}
	a.llm = &llm.Completer{
		Client:    a.client,
		Model:     cfg.LLMModel,
		MaxTries:  tries,
		Cache:     a.llmCache,
		CacheOnly: cfg.LLMCacheOnly,
	}

	if !cfg.LLMCacheOnly && strings.TrimSpace(cfg.LLMModel) != "" {
		a.preflight(ctx, provider)
	}
	return a, nil
}

// preflight lists models as a connectivity check. It is best-effort: an
// unreachable endpoint is logged and the run continues, so drafting errors
// surface per section.
func (a *App) preflight(ctx context.Context, lister llm.ModelLister) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	models, err := lister.ListModels(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("LLM model list failed; continuing")
		return
	}
	if len(models.Models) == 0 {
		log.Warn().Msg("LLM returned zero models")
		return
	}
	found := false
	for _, m := range models.Models {
		if m.ID == a.cfg.LLMModel {
			found = true
			break
		}
	}
	ev := log.Info()
	if !found {
		ev = log.Warn()
	}
	ev.Int("count", len(models.Models)).Str("model", a.cfg.LLMModel).Bool("listed", found).Msg("LLM models available")
}

// Close releases idle connections held by the LLM transport.
func (a *App) Close() {
	if a == nil || a.httpClient == nil {
		return
	}
	a.httpClient.CloseIdleConnections()
}

// Metrics exposes the run's recorder, mainly for tests.
func (a *App) Metrics() *metrics.Recorder { return a.metrics }

func (a *App) orchestrator() *pipeline.Orchestrator {
	maxRefines := a.cfg.MaxRefines
	if maxRefines == 0 {
		// Config counts literally; the orchestrator treats zero as "default".
		maxRefines = -1
	}
	return &pipeline.Orchestrator{
		Generator: &generate.Generator{
			LLM:          a.llm,
			Model:        a.cfg.LLMModel,
			SystemPrompt: a.cfg.WriterSystemPrompt,
		},
		Refiner:     &refine.Refiner{LLM: a.llm, Model: a.cfg.LLMModel, Metrics: a.metrics},
		Validator:   validate.Validator{},
		MaxRefines:  maxRefines,
		Delay:       a.cfg.Delay,
		Verbosity:   section.ParseVerbosity(a.cfg.Verbosity),
		RefineModel: a.cfg.RefineModel,
		Metrics:     a.metrics,
	}
}

// finalizer returns the style pass for body. The model stylist runs only
// when a stylist model is configured and there is something to style.
func (a *App) finalizer(body string) *finalize.Finalizer {
	if strings.TrimSpace(a.cfg.StylistModel) == "" || strings.TrimSpace(body) == "" {
		return &finalize.Finalizer{Stylist: &stylist.Stylist{Metrics: a.metrics}}
	}
	return &finalize.Finalizer{Stylist: &stylist.Stylist{LLM: a.llm, Model: a.cfg.StylistModel, Metrics: a.metrics}}
}

func (a *App) Run(ctx context.Context) error {
	runID := uuid.NewString()
	started := time.Now()
	out := deriveOutputPaths(a.cfg)
	if err := os.MkdirAll(filepath.Dir(out.Raw), 0o755); err != nil {
		return fmt.Errorf("mkdir output: %w", err)
	}

	m, err := materials.Load(materials.Paths{
		Assignment: a.cfg.AssignmentPath,
		Notebook:   a.cfg.NotebookPath,
		Summary:    a.cfg.SummaryPath,
	})
	if err != nil {
		return fmt.Errorf("load materials: %w", err)
	}
	if strings.TrimSpace(m.Assignment+m.Code+m.Outputs+m.Summary) == "" {
		return ErrNoMaterials
	}
	log.Info().Str("run", runID).Str("model", a.cfg.LLMModel).Str("verbosity", string(section.ParseVerbosity(a.cfg.Verbosity))).Msg("generating sections")

	rep := a.orchestrator().Run(ctx, m)
	sections := rep.Sections()
	body := assemble.Assemble(sections)
	if err := os.WriteFile(out.Raw, []byte(body), 0o644); err != nil {
		return fmt.Errorf("write raw body: %w", err)
	}
	log.Info().Str("path", out.Raw).Int("sections", len(sections)).Msg("raw body written")

	preamble, ok := finalize.LoadPreamble(a.cfg.PreamblePath)
	if !ok && a.cfg.PreamblePath != "" {
		log.Warn().Str("path", a.cfg.PreamblePath).Msg("preamble not available; using minimal shell")
	}
	doc := a.finalizer(body).Finalize(ctx, body, preamble)

	meta := manifestMeta{
		RunID:        runID,
		Model:        a.cfg.LLMModel,
		RefineModel:  a.cfg.RefineModel,
		StylistModel: a.cfg.StylistModel,
		LLMBaseURL:   a.cfg.LLMBaseURL,
		Verbosity:    string(section.ParseVerbosity(a.cfg.Verbosity)),
		MaxRefines:   a.cfg.MaxRefines,
		LLMCache:     a.llmCache != nil,
		Preamble:     preamble.Path,
		Stylist:      string(doc.Style.Source),
		Version:      BuildVersion,
		Commit:       BuildCommit,
		GeneratedAt:  time.Now().UTC(),
	}
	final := appendReproFooter(doc.Text, meta, len(sections))
	if err := os.WriteFile(out.Final, []byte(final), 0o644); err != nil {
		return fmt.Errorf("write document: %w", err)
	}

	outputs := map[string]string{"raw": out.Raw, "final": out.Final}
	if a.cfg.EnableDiagnostics {
		if err := writeDiagnosticsPDF(out.Diagnostics, meta, rep); err != nil {
			log.Warn().Err(err).Str("path", out.Diagnostics).Msg("diagnostics pdf failed")
		} else {
			outputs["diagnostics"] = out.Diagnostics
		}
	}
	if a.cfg.EnableMetrics {
		if err := a.metrics.WriteTextfile(out.Metrics); err != nil {
			log.Warn().Err(err).Str("path", out.Metrics).Msg("metrics textfile failed")
		} else {
			outputs["metrics"] = out.Metrics
		}
	}
	mf := manifest{Meta: meta, Sections: buildManifestSections(rep), Outputs: outputs}
	if err := writeManifest(out.Manifest, mf); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	residual := rep.Residual()
	log.Info().
		Str("path", out.Final).
		Int("sections", len(sections)).
		Int("residual", len(residual)).
		Str("stylist", string(doc.Style.Source)).
		Dur("elapsed", time.Since(started)).
		Msg("document written")

	if len(sections) == 0 {
		return ErrNoSections
	}
	return nil
}

// FinalizeFile runs the layout, style and splice steps over an existing raw
// body and writes the finished document next to it. It returns the path
// written.
func (a *App) FinalizeFile(ctx context.Context, rawPath string) (string, error) {
	b, err := os.ReadFile(rawPath)
	if err != nil {
		return "", fmt.Errorf("read raw body: %w", err)
	}
	body := string(b)
	preamble, _ := finalize.LoadPreamble(a.cfg.PreamblePath)
	doc := a.finalizer(body).Finalize(ctx, body, preamble)
	outPath := finalPathFor(rawPath)
	if err := os.WriteFile(outPath, []byte(doc.Text), 0o644); err != nil {
		return "", fmt.Errorf("write document: %w", err)
	}
	log.Info().Str("path", outPath).Str("stylist", string(doc.Style.Source)).Msg("document written")
	return outPath, nil
}
