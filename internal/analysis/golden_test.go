package analysis

import (
	"context"
	"testing"

	"lspwiki/internal/config"
	"lspwiki/internal/testutil"
)

// TestGolden_Fallback runs the built-in extractors over every fixture project
// and compares the outline with testdata/fixtures/expected/<lang>/fallback.golden.
func TestGolden_Fallback(t *testing.T) {
	testutil.EachFixture(t, func(t *testing.T, fixture *testutil.Fixture) {
		a := New(config.DefaultConfig(), nil)

		res, err := a.Analyze(context.Background(), fixture.Root, Options{UseLSP: false})
		if err != nil {
			t.Fatalf("Analyze failed: %v", err)
		}
		if res.Source() != "fallback" {
			t.Fatalf("Source = %s, want fallback", res.Source())
		}
		if res.Analysis.Language != fixture.Language {
			t.Errorf("Language = %s, want %s", res.Analysis.Language, fixture.Language)
		}

		testutil.Golden(t, fixture, "fallback", testutil.Outline(fixture, res.Analysis))
	})
}

// TestGolden_Deterministic checks that two runs over the same tree agree.
func TestGolden_Deterministic(t *testing.T) {
	testutil.EachFixture(t, func(t *testing.T, fixture *testutil.Fixture) {
		a := New(config.DefaultConfig(), nil)

		first, err := a.Analyze(context.Background(), fixture.Root, Options{})
		if err != nil {
			t.Fatalf("Analyze failed: %v", err)
		}
		second, err := a.Analyze(context.Background(), fixture.Root, Options{})
		if err != nil {
			t.Fatalf("Analyze failed: %v", err)
		}

		if a, b := string(testutil.Outline(fixture, first.Analysis)), string(testutil.Outline(fixture, second.Analysis)); a != b {
			t.Errorf("outlines differ between runs:\n%s\n---\n%s", a, b)
		}
	})
}
