package testutil

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"lspwiki/internal/model"
)

// Outline renders an analysis as stable text for golden comparison.
// The absolute root is replaced by <fixture>; end lines and docstrings are
// left out so the outline holds for every extractor build.
func Outline(fixture *Fixture, a *model.ProjectAnalysis) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "name: %s\n", a.Name)
	fmt.Fprintf(&buf, "root: %s\n", NormalizeFilePath(a.Root, fixture.Root))
	fmt.Fprintf(&buf, "language: %s\n", a.Language)
	fmt.Fprintf(&buf, "framework: %s\n", a.Framework)
	fmt.Fprintf(&buf, "entry_points: %s\n", strings.Join(a.EntryPoints, ", "))
	fmt.Fprintf(&buf, "runtime: %s\n", strings.Join(a.Dependencies.Runtime, ", "))
	fmt.Fprintf(&buf, "dev: %s\n", strings.Join(a.Dependencies.Dev, ", "))

	for i := range a.Files {
		f := &a.Files[i]
		fmt.Fprintf(&buf, "\nfile %s (%s)\n", f.Path, f.Language)
		if len(f.Imports) > 0 {
			fmt.Fprintf(&buf, "  imports: %s\n", strings.Join(f.Imports, ", "))
		}
		if len(f.Exports) > 0 {
			fmt.Fprintf(&buf, "  exports: %s\n", strings.Join(f.Exports, ", "))
		}
		for j := range f.Symbols {
			f.Symbols[j].Walk(func(s *model.Symbol, depth int) bool {
				fmt.Fprintf(&buf, "  %s%s %s :%d\n", strings.Repeat("  ", depth), s.Kind, s.Name, s.Line)
				return true
			})
		}
	}
	return buf.Bytes()
}

// NormalizeFilePath replaces the fixture root with <fixture> and uses
// forward slashes.
func NormalizeFilePath(path, fixtureRoot string) string {
	if fixtureRoot != "" {
		if rel, err := filepath.Rel(fixtureRoot, path); err == nil && !strings.HasPrefix(rel, "..") {
			if rel == "." {
				return "<fixture>"
			}
			return "<fixture>/" + filepath.ToSlash(rel)
		}
	}
	return filepath.ToSlash(path)
}
