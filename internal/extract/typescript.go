package extract

import (
	"regexp"

	"lspwiki/internal/model"
)

var (
	tsClass     = regexp.MustCompile(`(?:export\s+)?class\s+(\w+)`)
	tsFunction  = regexp.MustCompile(`(?:export\s+)?(?:async\s+)?function(?:\s*\*\s*|\s+)(\w+)`)
	tsArrow     = regexp.MustCompile(`(?:export\s+)?const\s+(\w+)\s*=\s*(?:async\s+)?\([^)]*\)\s*(?::\s*[\w<>\[\]]+)?\s*=>`)
	tsInterface = regexp.MustCompile(`(?:export\s+)?interface\s+(\w+)`)
	tsTypeAlias = regexp.MustCompile(`(?:export\s+)?type\s+(\w+)\s*(?:<[^>]*>)?\s*=`)

	tsImportFrom = regexp.MustCompile(`(?s)import\s+[^;'"]*?\s*from\s*['"]([^'"]+)['"]`)
	tsImportBare = regexp.MustCompile(`(?m)^\s*import\s+['"]([^'"]+)['"]`)
	tsRequire    = regexp.MustCompile(`require\(\s*['"]([^'"]+)['"]\s*\)`)

	tsExport = regexp.MustCompile(`export\s+(?:default\s+)?(?:abstract\s+)?(?:async\s+)?(?:class|function|const|let|interface|type|enum)\s+(\w+)`)
)

// newScriptExtractor returns the pattern extractor shared by TypeScript and JavaScript.
func newScriptExtractor(language string) Extractor {
	return &patternExtractor{
		language: language,
		symbols: []symbolPattern{
			{tsClass, model.KindClass},
			{tsFunction, model.KindFunction},
			{tsArrow, model.KindFunction},
			{tsInterface, model.KindInterface},
			{tsTypeAlias, model.KindType},
		},
		imports: []*regexp.Regexp{tsImportFrom, tsImportBare, tsRequire},
		exports: []*regexp.Regexp{tsExport},
	}
}
