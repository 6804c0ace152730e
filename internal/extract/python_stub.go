//go:build !cgo

package extract

import (
	"regexp"
	"strings"

	"lspwiki/internal/model"
)

// Without cgo there is no tree-sitter; Python falls back to line patterns
// with indentation tracking. Docstrings and end lines are not recovered.

var (
	pyDefLine    = regexp.MustCompile(`^([ \t]*)(?:async[ \t]+)?def[ \t]+(\w+)`)
	pyClassLine  = regexp.MustCompile(`^([ \t]*)class[ \t]+(\w+)`)
	pyImportLine = regexp.MustCompile(`^[ \t]*import[ \t]+(.+)$`)
	pyFromLine   = regexp.MustCompile(`^[ \t]*from[ \t]+(\.*[\w.]*)[ \t]+import\b`)
)

type pythonExtractor struct{}

func newPythonExtractor() Extractor { return pythonExtractor{} }

func (pythonExtractor) Language() string { return "python" }

func (pythonExtractor) Extract(relPath string, src []byte) model.FileInfo {
	info := model.NewFileInfo(relPath, "python")

	type scope struct {
		indent int
		class  int // index into info.Symbols, -1 for functions
	}
	var scopes []scope

	for i, line := range strings.Split(string(src), "\n") {
		lineNo := i + 1

		if m := pyImportLine.FindStringSubmatch(line); m != nil {
			for _, part := range strings.Split(m[1], ",") {
				if name := strings.Fields(part); len(name) > 0 {
					info.Imports = append(info.Imports, name[0])
				}
			}
			continue
		}
		if m := pyFromLine.FindStringSubmatch(line); m != nil {
			info.Imports = append(info.Imports, m[1])
			continue
		}

		var m []string
		isClass := false
		if m = pyClassLine.FindStringSubmatch(line); m != nil {
			isClass = true
		} else if m = pyDefLine.FindStringSubmatch(line); m == nil {
			continue
		}

		indent := len(expandTabs(m[1]))
		for len(scopes) > 0 && scopes[len(scopes)-1].indent >= indent {
			scopes = scopes[:len(scopes)-1]
		}

		if isClass {
			info.Symbols = append(info.Symbols, model.NewSymbol(m[2], model.KindClass, relPath, lineNo, lineNo))
			scopes = append(scopes, scope{indent, len(info.Symbols) - 1})
			continue
		}

		if n := len(scopes); n > 0 && scopes[n-1].class >= 0 {
			owner := &info.Symbols[scopes[n-1].class]
			owner.Children = append(owner.Children, model.NewSymbol(m[2], model.KindMethod, relPath, lineNo, lineNo))
		} else {
			info.Symbols = append(info.Symbols, model.NewSymbol(m[2], model.KindFunction, relPath, lineNo, lineNo))
		}
		scopes = append(scopes, scope{indent, -1})
	}
	return info
}
