package project

import (
	"io/fs"
	"sort"

	"github.com/gobwas/glob"
)

// entryCandidates are the file names considered entry points per language.
var entryCandidates = map[Language][]string{
	LangPython:     {"main.py", "app.py", "__main__.py", "cli.py", "manage.py", "wsgi.py"},
	LangTypeScript: {"index.ts", "main.ts", "app.ts", "server.ts", "index.tsx", "App.tsx"},
	LangJavaScript: {"index.js", "main.js", "app.js", "server.js", "index.jsx", "App.jsx"},
	LangGo:         {"main.go"},
	LangRust:       {"main.rs", "lib.rs"},
	LangJava:       {"Main.java", "Application.java"},
	LangCpp:        {"main.cpp", "main.c"},
}

// entryGlobs compiles each candidate to match at the root or any depth.
func entryGlobs(lang Language) []glob.Glob {
	var globs []glob.Glob
	for _, name := range entryCandidates[lang] {
		g, err := glob.Compile("{"+name+",**/"+name+"}", '/')
		if err != nil {
			continue
		}
		globs = append(globs, g)
	}
	return globs
}

// EntryPoints returns likely entry files relative to root. Results are grouped
// by candidate order, sorted by path within a candidate, and never repeated.
func EntryPoints(root string, lang Language, opts DiscoverOptions) []string {
	globs := entryGlobs(lang)
	if len(globs) == 0 {
		return []string{}
	}

	matches := make([][]string, len(globs))
	err := newWalker(root, opts).walk(func(rel, _ string, _ fs.DirEntry) {
		for i, g := range globs {
			if g.Match(rel) {
				matches[i] = append(matches[i], rel)
				return
			}
		}
	})
	if err != nil {
		return []string{}
	}

	entries := []string{}
	for _, group := range matches {
		sort.Strings(group)
		entries = append(entries, group...)
	}
	return entries
}
