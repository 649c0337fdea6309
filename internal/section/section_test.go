package section

import "testing"

func TestOrder_HasElevenKeysStartingWithTitle(t *testing.T) {
	if len(Order) != 11 {
		t.Fatalf("expected 11 keys, got %d", len(Order))
	}
	if Order[0] != TitleAbstract || Order[len(Order)-1] != Conclusion {
		t.Fatalf("unexpected order bounds: %v", Order)
	}
}

func TestTitle_KnownAndFallback(t *testing.T) {
	if got := Title(Problem); got != "Problem Description" {
		t.Fatalf("problem title: %q", got)
	}
	if got := Title(Key("appendix")); got != "Appendix" {
		t.Fatalf("fallback title: %q", got)
	}
}

func TestCategoryOf(t *testing.T) {
	cases := map[Key]Category{
		Theory:        CategoryMath,
		Method:        CategoryCode,
		Figures:       CategoryResults,
		Conclusion:    CategoryGeneral,
		TitleAbstract: CategoryGeneral,
	}
	for k, want := range cases {
		if got := CategoryOf(k); got != want {
			t.Fatalf("%s: got %s want %s", k, got, want)
		}
	}
}

func TestParseVerbosity_DefaultsToMedium(t *testing.T) {
	if ParseVerbosity("") != Medium || ParseVerbosity("bogus") != Medium {
		t.Fatal("expected medium default")
	}
	if ParseVerbosity(" LONG ") != Long || ParseVerbosity("tiny") != Tiny {
		t.Fatal("expected explicit tiers to parse")
	}
}
