// Package pipeline drives each report section through draft, validate and
// bounded refinement, one section at a time in canonical order.
package pipeline

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/note2tex/internal/metrics"
	"github.com/hyperifyio/note2tex/internal/section"
	"github.com/hyperifyio/note2tex/internal/template"
	"github.com/hyperifyio/note2tex/internal/validate"
)

// DefaultMaxRefines bounds refinement attempts per section when unset.
const DefaultMaxRefines = 2

// Generator drafts a section body.
type Generator interface {
	Generate(ctx context.Context, key section.Key, m template.Materials, v section.Verbosity) (string, error)
}

// Refiner repairs a section body given the issues found in it.
type Refiner interface {
	Refine(ctx context.Context, key section.Key, current string, issues []string, m template.Materials, model string) (string, error)
}

// Validator checks a section body.
type Validator interface {
	Validate(key section.Key, text string) validate.Result
}

// State is a step of the per-section state machine.
type State int

const (
	Drafting State = iota
	Validating
	Refining
	Done
)

func (s State) String() string {
	switch s {
	case Drafting:
		return "drafting"
	case Validating:
		return "validating"
	case Refining:
		return "refining"
	default:
		return "done"
	}
}

// Status is how a section left the state machine.
type Status string

const (
	// Passed: the last validation found no issues.
	Passed Status = metrics.StatusPassed
	// Residual: text kept as best effort with issues still present.
	Residual Status = metrics.StatusResidual
	// Failed: drafting failed; the section has no text.
	Failed Status = metrics.StatusFailed
)

// Section is the outcome for one key.
type Section struct {
	Key      section.Key
	Text     string
	Result   validate.Result
	Attempts int
	Status   Status
	// Err is set when drafting failed.
	Err error
	// RefineErr is set when a refinement call failed and the loop stopped early.
	RefineErr error
}

// Report holds the outcomes in canonical order.
type Report struct {
	Outcomes []Section
}

// Sections returns the usable bodies keyed by section, ready for assembly.
// Failed sections are omitted.
func (r Report) Sections() map[section.Key]string {
	out := make(map[section.Key]string, len(r.Outcomes))
	for _, s := range r.Outcomes {
		if s.Err != nil || s.Text == "" {
			continue
		}
		out[s.Key] = s.Text
	}
	return out
}

// Residual returns the sections that finished with unresolved issues or
// failed outright, for diagnostics.
func (r Report) Residual() []Section {
	var out []Section
	for _, s := range r.Outcomes {
		if s.Status != Passed {
			out = append(out, s)
		}
	}
	return out
}

// Orchestrator runs the per-section loop. It holds configuration only; all
// working state lives in a single Run call.
type Orchestrator struct {
	Generator Generator
	Refiner   Refiner
	Validator Validator
	// MaxRefines bounds refinement attempts per section. Zero means
	// DefaultMaxRefines; a negative value disables refinement.
	MaxRefines int
	// Delay is waited before every model call except the first.
	Delay       time.Duration
	Verbosity   section.Verbosity
	RefineModel string
	// Keys overrides section.Order, mainly for partial reruns.
	Keys    []section.Key
	Metrics *metrics.Recorder
}

// sleepFunc allows tests to observe the throttle without waiting.
var sleepFunc = sleepCtx

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

type run struct {
	o     *Orchestrator
	m     template.Materials
	calls int
}

// Run processes every key sequentially and always returns a report. Once ctx
// is done, remaining sections are recorded as failed without calling the model.
func (o *Orchestrator) Run(ctx context.Context, m template.Materials) Report {
	keys := o.Keys
	if len(keys) == 0 {
		keys = section.Order
	}
	r := &run{o: o, m: m}
	rep := Report{Outcomes: make([]Section, 0, len(keys))}
	for _, key := range keys {
		start := time.Now()
		s := r.section(ctx, key)
		o.Metrics.Section(string(s.Status))
		o.Metrics.SectionDuration(string(key), time.Since(start))
		ev := log.Info()
		if s.Status != Passed {
			ev = log.Warn().Strs("issues", s.Result.Strings())
		}
		ev.Str("section", string(key)).Str("status", string(s.Status)).Int("attempts", s.Attempts).Int("chars", len(s.Text)).Msg("section finished")
		rep.Outcomes = append(rep.Outcomes, s)
	}
	return rep
}

func (o *Orchestrator) maxRefines() int {
	switch {
	case o.MaxRefines < 0:
		return 0
	case o.MaxRefines == 0:
		return DefaultMaxRefines
	default:
		return o.MaxRefines
	}
}

func (o *Orchestrator) validator() Validator {
	if o.Validator == nil {
		return validate.Validator{}
	}
	return o.Validator
}

// throttle waits Delay before every model call but the first of the run.
func (r *run) throttle(ctx context.Context) error {
	r.calls++
	if r.calls == 1 || r.o.Delay <= 0 {
		return ctx.Err()
	}
	return sleepFunc(ctx, r.o.Delay)
}

func (r *run) section(ctx context.Context, key section.Key) Section {
	o := r.o
	s := Section{Key: key}
	state := Drafting
	for state != Done {
		switch state {
		case Drafting:
			if err := r.throttle(ctx); err != nil {
				s.Err, s.Status = err, Failed
				state = Done
				continue
			}
			text, err := o.Generator.Generate(ctx, key, r.m, o.Verbosity)
			if err != nil {
				log.Warn().Err(err).Str("section", string(key)).Msg("drafting failed; section omitted")
				s.Err, s.Status = err, Failed
				state = Done
				continue
			}
			s.Text = text
			state = Validating

		case Validating:
			s.Result = o.validator().Validate(key, s.Text)
			for _, is := range s.Result.Issues {
				o.Metrics.Issue(string(is.Kind))
			}
			switch {
			case s.Result.OK:
				s.Status = Passed
				state = Done
			case s.Attempts >= o.maxRefines() || o.Refiner == nil:
				s.Status = Residual
				state = Done
			default:
				state = Refining
			}

		case Refining:
			if err := r.throttle(ctx); err != nil {
				s.RefineErr, s.Status = err, Residual
				state = Done
				continue
			}
			s.Attempts++
			o.Metrics.RefineAttempt(string(key))
			log.Debug().Str("section", string(key)).Int("attempt", s.Attempts).Strs("issues", s.Result.Strings()).Msg("refining section")
			fixed, err := o.Refiner.Refine(ctx, key, s.Text, s.Result.Strings(), r.m, o.RefineModel)
			if err != nil {
				log.Warn().Err(err).Str("section", string(key)).Msg("refinement failed; keeping previous text")
				s.RefineErr, s.Status = err, Residual
				state = Done
				continue
			}
			s.Text = fixed
			state = Validating
		}
	}
	return s
}
