// Package testutil loads the fixture projects under testdata/fixtures and
// compares analysis outlines against golden files.
package testutil

import (
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"testing"
)

// goldenDirName sits next to the fixture projects and is not one of them.
const goldenDirName = "expected"

// Fixture is one project tree under testdata/fixtures.
type Fixture struct {
	// Language is the fixture directory name and the language it is detected as.
	Language string
	// Root is the absolute path of the project tree.
	Root string

	goldenDir string
}

// GoldenPath is where the golden file called name lives for this fixture.
func (f *Fixture) GoldenPath(name string) string {
	return filepath.Join(f.goldenDir, name+".golden")
}

var fixturesDir = sync.OnceValues(func() (string, error) {
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		return "", os.ErrNotExist
	}
	// <repo>/internal/testutil/fixture.go
	repo := filepath.Dir(filepath.Dir(filepath.Dir(file)))
	dir := filepath.Join(repo, "testdata", "fixtures")
	if _, err := os.Stat(dir); err != nil {
		return "", err
	}
	return dir, nil
})

func mustFixturesDir(t *testing.T) string {
	t.Helper()
	dir, err := fixturesDir()
	if err != nil {
		t.Fatalf("fixtures directory: %v", err)
	}
	return dir
}

// LoadFixture returns the fixture for lang, failing the test when it is missing.
func LoadFixture(t *testing.T, lang string) *Fixture {
	t.Helper()
	dir := mustFixturesDir(t)
	root := filepath.Join(dir, lang)
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		t.Fatalf("no fixture for %q under %s", lang, dir)
	}
	return &Fixture{
		Language:  lang,
		Root:      root,
		goldenDir: filepath.Join(dir, goldenDirName, lang),
	}
}

// FixtureLanguages lists the fixture directories by name.
func FixtureLanguages(t *testing.T) []string {
	t.Helper()
	entries, err := os.ReadDir(mustFixturesDir(t))
	if err != nil {
		t.Fatalf("reading fixtures: %v", err)
	}
	var langs []string
	for _, e := range entries {
		name := e.Name()
		if !e.IsDir() || name == goldenDirName || strings.HasPrefix(name, ".") {
			continue
		}
		langs = append(langs, name)
	}
	sort.Strings(langs)
	return langs
}
