package project

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	ignore "github.com/sabhiram/go-gitignore"
)

// ExcludeDirs are build, dependency and version-control directories never descended into.
var ExcludeDirs = []string{
	"node_modules", "venv", ".venv", "__pycache__", ".git",
	"dist", "build", ".next", "target", "vendor", ".idea", ".vscode",
}

// DiscoverOptions tunes the source tree walk.
type DiscoverOptions struct {
	Exclude          []string // extra directory names to skip
	RespectGitignore bool
	MaxFileSizeBytes int64 // 0 means unlimited
}

// SourceFile is a discovered source file.
type SourceFile struct {
	Path     string // relative to the root, forward slashes
	AbsPath  string
	Language Language
}

// walker walks a tree skipping excluded and ignored paths.
type walker struct {
	root    string
	exclude map[string]struct{}
	gi      *ignore.GitIgnore
}

func newWalker(root string, opts DiscoverOptions) *walker {
	w := &walker{root: root, exclude: make(map[string]struct{})}
	for _, d := range ExcludeDirs {
		w.exclude[d] = struct{}{}
	}
	for _, d := range opts.Exclude {
		w.exclude[d] = struct{}{}
	}
	if opts.RespectGitignore {
		if gi, err := ignore.CompileIgnoreFile(filepath.Join(root, ".gitignore")); err == nil {
			w.gi = gi
		}
	}
	return w
}

// walk calls fn for every regular, non-ignored file with its slash-separated relative path.
func (w *walker) walk(fn func(rel, abs string, d fs.DirEntry)) error {
	return filepath.WalkDir(w.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable entries are skipped
		}
		if path == w.root {
			return nil
		}
		rel, err := filepath.Rel(w.root, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if _, skip := w.exclude[d.Name()]; skip {
				return filepath.SkipDir
			}
			if w.gi != nil && (w.gi.MatchesPath(rel) || w.gi.MatchesPath(rel+"/")) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if w.gi != nil && w.gi.MatchesPath(rel) {
			return nil
		}
		fn(rel, path, d)
		return nil
	})
}

// SourceFiles discovers the source files of a project language, sorted by path.
func SourceFiles(root string, lang Language, opts DiscoverOptions) ([]SourceFile, error) {
	exts := make(map[string]struct{})
	for _, e := range Extensions(lang) {
		exts[e] = struct{}{}
	}
	if len(exts) == 0 {
		return []SourceFile{}, nil
	}

	files := []SourceFile{}
	err := newWalker(root, opts).walk(func(rel, abs string, d fs.DirEntry) {
		if _, ok := exts[filepath.Ext(rel)]; !ok {
			return
		}
		if opts.MaxFileSizeBytes > 0 {
			if info, err := d.Info(); err == nil && info.Size() > opts.MaxFileSizeBytes {
				return
			}
		}
		files = append(files, SourceFile{Path: rel, AbsPath: abs, Language: LanguageForPath(rel)})
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// RootExists reports whether root is an existing directory.
func RootExists(root string) bool {
	info, err := os.Stat(root)
	return err == nil && info.IsDir()
}
