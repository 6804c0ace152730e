package extract

import (
	"bytes"
	"regexp"

	"lspwiki/internal/model"
)

// symbolPattern captures a symbol name in group 1.
type symbolPattern struct {
	re   *regexp.Regexp
	kind model.SymbolKind
}

// patternExtractor applies ordered regular expressions to a whole file.
// Symbols are emitted pattern by pattern, each in source order.
type patternExtractor struct {
	language string
	symbols  []symbolPattern
	imports  []*regexp.Regexp // group 1 is the import path
	exports  []*regexp.Regexp // group 1 is the exported name

	// Optional hooks run after the patterns above.
	extraImports func(src []byte) []string
	extraExports func(info *model.FileInfo) []string
	skipName     func(name string) bool
}

func (p *patternExtractor) Language() string { return p.language }

func (p *patternExtractor) Extract(relPath string, src []byte) model.FileInfo {
	info := model.NewFileInfo(relPath, p.language)

	for _, re := range p.imports {
		info.Imports = append(info.Imports, submatches(re, src)...)
	}
	if p.extraImports != nil {
		info.Imports = append(info.Imports, p.extraImports(src)...)
	}

	for _, sp := range p.symbols {
		for _, m := range sp.re.FindAllSubmatchIndex(src, -1) {
			name := string(src[m[2]:m[3]])
			if p.skipName != nil && p.skipName(name) {
				continue
			}
			line := lineAt(src, m[0])
			info.Symbols = append(info.Symbols, model.NewSymbol(name, sp.kind, relPath, line, line))
		}
	}

	for _, re := range p.exports {
		info.Exports = append(info.Exports, submatches(re, src)...)
	}
	if p.extraExports != nil {
		info.Exports = append(info.Exports, p.extraExports(&info)...)
	}
	return info
}

// submatches returns group 1 of every match of re in src.
func submatches(re *regexp.Regexp, src []byte) []string {
	var out []string
	for _, m := range re.FindAllSubmatch(src, -1) {
		out = append(out, string(m[1]))
	}
	return out
}

// lineAt returns the 1-based line containing byte offset off.
func lineAt(src []byte, off int) int {
	return bytes.Count(src[:off], []byte{'\n'}) + 1
}
