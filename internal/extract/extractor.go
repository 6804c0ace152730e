// Package extract provides fallback symbol extraction for when no language
// server is available.
//
// Python is parsed with tree-sitter when built with cgo. Every other language
// is matched with fixed, ordered regular expressions. Pattern extraction is a
// bounded-accuracy heuristic, not a parser: it cannot tell a construct nested
// in a conditional or a string from a real top-level one, and it may over or
// under count on adversarial input. Line numbers are found by counting
// newlines before each match, which is linear in the file size per match.
package extract

import (
	"fmt"
	"log/slog"
	"os"
	"sort"

	"lspwiki/internal/errors"
	"lspwiki/internal/model"
	"lspwiki/internal/paths"
)

// Extractor produces a FileInfo from file contents without a language server.
// Extract never fails; unparseable input yields partial or empty results.
type Extractor interface {
	Language() string
	Extract(relPath string, src []byte) model.FileInfo
}

// Registry holds extractors keyed by language.
type Registry struct {
	extractors map[string]Extractor
	logger     *slog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Registry{
		extractors: make(map[string]Extractor),
		logger:     logger,
	}
}

// Default returns a registry with every built-in extractor.
func Default(logger *slog.Logger) *Registry {
	r := NewRegistry(logger)
	r.Register(newPythonExtractor())
	r.Register(newScriptExtractor("typescript"))
	r.Register(newScriptExtractor("javascript"))
	r.Register(newGoExtractor())
	r.Register(newRustExtractor())
	r.Register(newJavaExtractor())
	return r
}

// Register adds or replaces the extractor for its language.
func (r *Registry) Register(e Extractor) {
	r.extractors[e.Language()] = e
}

// For returns the extractor for language.
func (r *Registry) For(language string) (Extractor, bool) {
	e, ok := r.extractors[language]
	return e, ok
}

// Languages returns the registered languages, sorted.
func (r *Registry) Languages() []string {
	langs := make([]string, 0, len(r.extractors))
	for l := range r.extractors {
		langs = append(langs, l)
	}
	sort.Strings(langs)
	return langs
}

// ExtractFile reads root/rel and runs the extractor for language on it.
// Languages without an extractor, unreadable files and extractor panics all
// yield an empty FileInfo.
func (r *Registry) ExtractFile(root, rel, language string) (info model.FileInfo) {
	info = model.NewFileInfo(rel, language)

	e, ok := r.For(language)
	if !ok {
		return info
	}

	src, err := os.ReadFile(paths.JoinRepoPath(root, rel))
	if err != nil {
		r.logger.Debug("Skipping unreadable file",
			"path", rel,
			"error", errors.New(errors.ExtractionFailed, "cannot read source file", err),
		)
		return info
	}

	defer func() {
		if p := recover(); p != nil {
			r.logger.Debug("Extractor panicked",
				"path", rel,
				"language", language,
				"error", errors.New(errors.ExtractionFailed, fmt.Sprintf("extractor panic: %v", p), nil),
			)
			info = model.NewFileInfo(rel, language)
		}
	}()

	info = e.Extract(rel, src)
	info.Path = rel
	info.Language = language
	return info
}
