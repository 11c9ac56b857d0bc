package tone

import (
	"math/rand"
	"testing"
)

func TestResolveKnownTone(t *testing.T) {
	got := Resolve("Technical")
	if got.Name != "technical" {
		t.Fatalf("expected technical, got %q", got.Name)
	}
}

func TestResolveUnknownFallsBackToDefault(t *testing.T) {
	for _, name := range []string{"", "sarcastic", "  "} {
		got := Resolve(name)
		if got.Name != DefaultName {
			t.Fatalf("expected default tone for %q, got %q", name, got.Name)
		}
	}
}

func TestAllReturnsDistinctNamedTones(t *testing.T) {
	tones := All()
	if len(tones) < 2 {
		t.Fatalf("expected multiple tones, got %d", len(tones))
	}
	seen := map[string]bool{}
	for _, tn := range tones {
		if tn.Name == "" || tn.Style == "" {
			t.Fatalf("tone with empty name or style: %+v", tn)
		}
		if seen[tn.Name] {
			t.Fatalf("duplicate tone name %q", tn.Name)
		}
		seen[tn.Name] = true
	}
}

func TestSelectorPickIsSeedDeterministic(t *testing.T) {
	first := NewSelector(rand.New(rand.NewSource(42)))
	second := NewSelector(rand.New(rand.NewSource(42)))
	for i := 0; i < 20; i++ {
		a, b := first.Pick(), second.Pick()
		if a.Name != b.Name {
			t.Fatalf("pick %d diverged: %q vs %q", i, a.Name, b.Name)
		}
	}
}

func TestSelectorPickVariesAcrossCalls(t *testing.T) {
	selector := NewSelector(rand.New(rand.NewSource(1)))
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		seen[selector.Pick().Name] = true
	}
	if len(seen) < 2 {
		t.Fatalf("expected multiple approaches across 100 picks, got %d", len(seen))
	}
}

func TestApproachCatalogIsWellFormed(t *testing.T) {
	list := Approaches()
	if len(list) == 0 {
		t.Fatalf("expected a non-empty approach catalog")
	}
	for _, a := range list {
		if a.Name == "" || a.Hook == "" {
			t.Fatalf("approach with empty name or hook: %+v", a)
		}
	}
}
