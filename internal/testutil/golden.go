package testutil

import (
	"bytes"
	"flag"
	"os"
	"strings"
	"testing"

	"github.com/pmezard/go-difflib/difflib"
)

// go test ./internal/analysis -update rewrites the golden files;
// -fixture=go,ts limits a run to some fixtures.
var (
	update        = flag.Bool("update", false, "rewrite golden files with the current output")
	fixtureFilter = flag.String("fixture", "", "comma-separated fixture languages to run (go, ts, py, ...)")
)

var langAliases = map[string]string{
	"ts":     "typescript",
	"js":     "javascript",
	"py":     "python",
	"golang": "go",
	"rs":     "rust",
}

// selected reports whether lang passes the -fixture filter.
func selected(lang string) bool {
	if strings.TrimSpace(*fixtureFilter) == "" {
		return true
	}
	for _, want := range strings.Split(*fixtureFilter, ",") {
		want = strings.TrimSpace(want)
		if long, ok := langAliases[want]; ok {
			want = long
		}
		if want == lang {
			return true
		}
	}
	return false
}

// Golden compares got with the fixture's golden file called name, or
// rewrites that file when -update is set.
func Golden(t *testing.T, f *Fixture, name string, got []byte) {
	t.Helper()
	path := f.GoldenPath(name)

	if *update {
		writeGolden(t, f, name, got)
		t.Logf("updated %s", path)
		return
	}

	want, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		t.Fatalf("missing golden file %s; create it with -update\n\ngot:\n%s", path, got)
	case err != nil:
		t.Fatalf("reading golden file: %v", err)
	}

	want = bytes.ReplaceAll(want, []byte("\r\n"), []byte("\n"))
	if !bytes.Equal(want, got) {
		t.Fatalf("%s differs from the golden file (rerun with -update if the change is intended):\n%s",
			name, lineDiff(want, got, path))
	}
}

func writeGolden(t *testing.T, f *Fixture, name string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(f.goldenDir, 0o755); err != nil {
		t.Fatalf("creating golden dir: %v", err)
	}
	if err := os.WriteFile(f.GoldenPath(name), data, 0o644); err != nil {
		t.Fatalf("writing golden file: %v", err)
	}
}

// lineDiff renders a unified diff from the golden content to got.
func lineDiff(want, got []byte, path string) string {
	text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(want)),
		B:        difflib.SplitLines(string(got)),
		FromFile: path + " (golden)",
		ToFile:   "got",
		Context:  3,
	})
	if err != nil {
		return err.Error()
	}
	return text
}

// EachFixture runs fn as a subtest per selected fixture. -short keeps only
// the first one.
func EachFixture(t *testing.T, fn func(t *testing.T, f *Fixture)) {
	t.Helper()
	langs := FixtureLanguages(t)
	if len(langs) == 0 {
		t.Skip("no fixtures")
	}
	if testing.Short() {
		langs = langs[:1]
	}
	for _, lang := range langs {
		if !selected(lang) {
			continue
		}
		t.Run(lang, func(t *testing.T) {
			fn(t, LoadFixture(t, lang))
		})
	}
}
