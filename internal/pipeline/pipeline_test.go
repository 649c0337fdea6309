package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/hyperifyio/note2tex/internal/section"
	"github.com/hyperifyio/note2tex/internal/template"
	"github.com/hyperifyio/note2tex/internal/validate"
)

type fakeGenerator struct {
	bodies map[section.Key]string
	errs   map[section.Key]error
	calls  []section.Key
}

func (f *fakeGenerator) Generate(_ context.Context, key section.Key, _ template.Materials, _ section.Verbosity) (string, error) {
	f.calls = append(f.calls, key)
	if err := f.errs[key]; err != nil {
		return "", err
	}
	if b, ok := f.bodies[key]; ok {
		return b, nil
	}
	return "Body for " + string(key) + " that is comfortably longer than the fifty character minimum.", nil
}

type fakeRefiner struct {
	calls  int
	out    func(n int, current string) string
	err    error
	issues [][]string
}

func (f *fakeRefiner) Refine(_ context.Context, _ section.Key, current string, issues []string, _ template.Materials, _ string) (string, error) {
	f.calls++
	f.issues = append(f.issues, issues)
	if f.err != nil {
		return current, f.err
	}
	return f.out(f.calls, current), nil
}

type alwaysFail struct{ calls int }

func (a *alwaysFail) Validate(section.Key, string) validate.Result {
	a.calls++
	return validate.Result{Issues: []validate.Issue{{Kind: validate.UnbalancedBraces, Detail: "(open=1, close=0)"}}}
}

func noSleep(t *testing.T) *[]time.Duration {
	t.Helper()
	var waits []time.Duration
	prev := sleepFunc
	sleepFunc = func(_ context.Context, d time.Duration) error {
		waits = append(waits, d)
		return nil
	}
	t.Cleanup(func() { sleepFunc = prev })
	return &waits
}

func TestRun_AllPassInCanonicalOrder(t *testing.T) {
	noSleep(t)
	g := &fakeGenerator{}
	o := &Orchestrator{Generator: g, Refiner: &fakeRefiner{}}
	rep := o.Run(context.Background(), template.Materials{})
	if len(rep.Outcomes) != len(section.Order) {
		t.Fatalf("outcomes = %d", len(rep.Outcomes))
	}
	for i, s := range rep.Outcomes {
		if s.Key != section.Order[i] || g.calls[i] != section.Order[i] {
			t.Fatalf("order broken at %d: %s", i, s.Key)
		}
		if s.Status != Passed || s.Attempts != 0 {
			t.Fatalf("%s: status=%s attempts=%d", s.Key, s.Status, s.Attempts)
		}
	}
	if len(rep.Sections()) != len(section.Order) {
		t.Fatal("every passed section should be handed to the assembler")
	}
	if len(rep.Residual()) != 0 {
		t.Fatal("no residual sections expected")
	}
}

func TestRun_BoundedRefinementWithAlwaysFailingValidator(t *testing.T) {
	noSleep(t)
	for _, limit := range []int{1, 2, 3} {
		ref := &fakeRefiner{out: func(n int, _ string) string { return "attempt " + strings.Repeat("x", n) }}
		val := &alwaysFail{}
		o := &Orchestrator{
			Generator:  &fakeGenerator{},
			Refiner:    ref,
			Validator:  val,
			MaxRefines: limit,
			Keys:       []section.Key{section.Results},
		}
		rep := o.Run(context.Background(), template.Materials{})
		s := rep.Outcomes[0]
		if s.Attempts != limit || ref.calls != limit {
			t.Fatalf("max=%d: attempts=%d refine calls=%d", limit, s.Attempts, ref.calls)
		}
		if val.calls != limit+1 {
			t.Fatalf("max=%d: validations=%d", limit, val.calls)
		}
		if s.Status != Residual || s.Err != nil || s.RefineErr != nil {
			t.Fatalf("max=%d: status=%s err=%v refineErr=%v", limit, s.Status, s.Err, s.RefineErr)
		}
		if want := "attempt " + strings.Repeat("x", limit); s.Text != want {
			t.Fatalf("max=%d: expected last text %q, got %q", limit, want, s.Text)
		}
		if len(s.Result.Issues) == 0 {
			t.Fatal("residual issues must be surfaced")
		}
		if rep.Sections()[section.Results] != s.Text {
			t.Fatal("residual text is still assembled")
		}
	}
}

func TestRun_DefaultMaxRefines(t *testing.T) {
	noSleep(t)
	ref := &fakeRefiner{out: func(int, string) string { return "still broken" }}
	o := &Orchestrator{Generator: &fakeGenerator{}, Refiner: ref, Validator: &alwaysFail{}, Keys: []section.Key{section.Code}}
	s := o.Run(context.Background(), template.Materials{}).Outcomes[0]
	if s.Attempts != DefaultMaxRefines {
		t.Fatalf("attempts = %d", s.Attempts)
	}
}

func TestRun_NegativeMaxRefinesDisablesRefinement(t *testing.T) {
	noSleep(t)
	ref := &fakeRefiner{out: func(int, string) string { return "x" }}
	o := &Orchestrator{Generator: &fakeGenerator{}, Refiner: ref, Validator: &alwaysFail{}, MaxRefines: -1, Keys: []section.Key{section.Code}}
	s := o.Run(context.Background(), template.Materials{}).Outcomes[0]
	if ref.calls != 0 || s.Status != Residual {
		t.Fatalf("calls=%d status=%s", ref.calls, s.Status)
	}
}

func TestRun_RefinementFixesSection(t *testing.T) {
	noSleep(t)
	broken := "Broken body {with an unmatched brace that is long enough to pass length."
	fixed := "Fixed body {with matched braces} that is long enough to pass the length check."
	ref := &fakeRefiner{out: func(int, string) string { return fixed }}
	o := &Orchestrator{
		Generator: &fakeGenerator{bodies: map[section.Key]string{section.Theory: broken}},
		Refiner:   ref,
		Keys:      []section.Key{section.Theory},
	}
	s := o.Run(context.Background(), template.Materials{}).Outcomes[0]
	if s.Status != Passed || s.Attempts != 1 || s.Text != fixed {
		t.Fatalf("status=%s attempts=%d text=%q", s.Status, s.Attempts, s.Text)
	}
	if len(ref.issues) != 1 || len(ref.issues[0]) != 1 || !strings.HasPrefix(ref.issues[0][0], "unbalanced curly braces") {
		t.Fatalf("refiner got issues %v", ref.issues)
	}
}

func TestRun_RefineErrorAbortsOnlyThatSection(t *testing.T) {
	noSleep(t)
	ref := &fakeRefiner{err: errors.New("transport exhausted")}
	o := &Orchestrator{
		Generator: &fakeGenerator{bodies: map[section.Key]string{section.Problem: "short"}},
		Refiner:   ref,
		Keys:      []section.Key{section.Problem, section.Theory},
	}
	rep := o.Run(context.Background(), template.Materials{})
	p := rep.Outcomes[0]
	if p.RefineErr == nil || p.Status != Residual || p.Text != "short" || p.Attempts != 1 {
		t.Fatalf("problem: %+v", p)
	}
	if rep.Outcomes[1].Status != Passed {
		t.Fatal("the next section must still be processed")
	}
}

func TestRun_GenerationFailureOmitsSection(t *testing.T) {
	noSleep(t)
	boom := errors.New("model down")
	o := &Orchestrator{
		Generator: &fakeGenerator{errs: map[section.Key]error{section.Figures: boom}},
		Refiner:   &fakeRefiner{},
		Keys:      []section.Key{section.Results, section.Figures, section.Conclusion},
	}
	rep := o.Run(context.Background(), template.Materials{})
	f := rep.Outcomes[1]
	if !errors.Is(f.Err, boom) || f.Status != Failed || f.Text != "" {
		t.Fatalf("figures: %+v", f)
	}
	got := rep.Sections()
	if _, ok := got[section.Figures]; ok {
		t.Fatal("failed section must not be assembled")
	}
	if len(got) != 2 {
		t.Fatalf("sections = %v", got)
	}
	if res := rep.Residual(); len(res) != 1 || res[0].Key != section.Figures {
		t.Fatalf("residual = %+v", res)
	}
}

func TestRun_DelayBetweenModelCalls(t *testing.T) {
	waits := noSleep(t)
	ref := &fakeRefiner{out: func(int, string) string { return "x" }}
	o := &Orchestrator{
		Generator:  &fakeGenerator{},
		Refiner:    ref,
		Validator:  &alwaysFail{},
		MaxRefines: 1,
		Delay:      3 * time.Second,
		Keys:       []section.Key{section.Method, section.Code},
	}
	o.Run(context.Background(), template.Materials{})
	// Four model calls (two drafts, two refinements), no wait before the first.
	if len(*waits) != 3 {
		t.Fatalf("waits = %v", *waits)
	}
	for _, w := range *waits {
		if w != 3*time.Second {
			t.Fatalf("unexpected wait %v", w)
		}
	}
}

func TestRun_CancelledContextSkipsRemainingCalls(t *testing.T) {
	noSleep(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	g := &fakeGenerator{}
	rep := (&Orchestrator{Generator: g, Refiner: &fakeRefiner{}}).Run(ctx, template.Materials{})
	if len(g.calls) != 0 {
		t.Fatalf("generator called %d times after cancel", len(g.calls))
	}
	for _, s := range rep.Outcomes {
		if s.Status != Failed || !errors.Is(s.Err, context.Canceled) {
			t.Fatalf("%s: %+v", s.Key, s)
		}
	}
}

func TestSleepCtx_HonorsCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := sleepCtx(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
}

func TestState_String(t *testing.T) {
	if Drafting.String() != "drafting" || Refining.String() != "refining" || Done.String() != "done" {
		t.Fatal("state names")
	}
}
