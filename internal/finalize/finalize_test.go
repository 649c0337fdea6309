package finalize

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/hyperifyio/note2tex/internal/layout"
	"github.com/hyperifyio/note2tex/internal/stylist"
)

func writePreamble(t *testing.T, text string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "preamble.tex")
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestSplice_Placeholder(t *testing.T) {
	p, ok := LoadPreamble(writePreamble(t, "\\documentclass{article}\n\\begin{document}\n"+Placeholder+"\n\\end{document}\n"))
	if !ok {
		t.Fatal("preamble should load")
	}
	want := "\\documentclass{article}\n\\begin{document}\nBODY\n\\end{document}\n"
	if diff := cmp.Diff(want, Splice("BODY", p)); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestSplice_BeforeEndDocument(t *testing.T) {
	p := Preamble{Text: "\\documentclass{article}\n\\begin{document}\n\\end{document}"}
	want := "\\documentclass{article}\n\\begin{document}\n\nBODY\n\\end{document}"
	if got := Splice("BODY", p); got != want {
		t.Fatalf("got %q", got)
	}
}

func TestSplice_NoTemplate(t *testing.T) {
	want := "\\documentclass[12pt]{article}\n\\begin{document}\nBODY\n\\end{document}"
	if got := Splice("BODY", Preamble{}); got != want {
		t.Fatalf("got %q", got)
	}
}

func TestSplice_UnusableTemplate(t *testing.T) {
	if got := Splice("BODY", Preamble{Text: "% nothing useful"}); got != Shell("BODY") {
		t.Fatalf("got %q", got)
	}
}

func TestLoadPreamble_Missing(t *testing.T) {
	if _, ok := LoadPreamble(filepath.Join(t.TempDir(), "absent.tex")); ok {
		t.Fatal("missing file must not be available")
	}
	if _, ok := LoadPreamble(""); ok {
		t.Fatal("empty path must not be available")
	}
}

type failingLLM struct{}

func (failingLLM) Complete(context.Context, string, string, string) (string, error) {
	return "", errors.New("unreachable")
}

func TestFinalize_DegradesWithoutFailing(t *testing.T) {
	body := "\\section{Results and Analysis}\nNumbers.\n\\includegraphics{a.png}\n\\includegraphics{b.png}\n"
	f := &Finalizer{Stylist: &stylist.Stylist{LLM: failingLLM{}, Model: "m"}}
	doc := f.Finalize(context.Background(), body, Preamble{})
	if doc.Style.Source != stylist.SourceFallback || doc.Style.Err == nil {
		t.Fatalf("style = %+v", doc.Style)
	}
	if !strings.HasPrefix(doc.Text, "\\documentclass[12pt]{article}") {
		t.Fatalf("expected shell:\n%s", doc.Text)
	}
	for _, want := range []string{layout.BoxOpen, `\begin{subfigure}`, `\end{document}`} {
		if !strings.Contains(doc.Text, want) {
			t.Errorf("missing %q in:\n%s", want, doc.Text)
		}
	}
	if strings.Count(doc.Text, `\documentclass`) != 1 {
		t.Fatal("document class must appear once")
	}
}

func TestFinalize_NilFinalizerUsesDeterministicLayout(t *testing.T) {
	var f *Finalizer
	doc := f.Finalize(context.Background(), "\\section{Conclusion}\nDone.", Preamble{})
	if doc.Body != layout.Deterministic("\\section{Conclusion}\nDone.") {
		t.Fatalf("body:\n%s", doc.Body)
	}
}
