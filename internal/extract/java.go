package extract

import (
	"regexp"

	"lspwiki/internal/model"
)

const javaTypeMods = `(?:(?:public|protected|private|abstract|final|static|sealed|non-sealed|strictfp)\s+)*`

var (
	javaClass     = regexp.MustCompile(`(?m)^[ \t]*` + javaTypeMods + `class\s+(\w+)`)
	javaInterface = regexp.MustCompile(`(?m)^[ \t]*` + javaTypeMods + `@?interface\s+(\w+)`)
	javaEnum      = regexp.MustCompile(`(?m)^[ \t]*` + javaTypeMods + `enum\s+(\w+)`)
	javaMethod    = regexp.MustCompile(`(?m)^[ \t]*(?:(?:public|protected|private|static|final|abstract|synchronized|native|default)[ \t]+)*(?:<[^>\n]+>[ \t]+)?[\w<>\[\],.?]+(?:[ \t]+[\w<>\[\],.?]+)*?[ \t]+(\w+)[ \t]*\([^)]*\)[^;{\n]*\{`)

	javaImport = regexp.MustCompile(`(?m)^[ \t]*import\s+(?:static\s+)?([\w.]+(?:\.\*)?)\s*;`)
	javaExport = regexp.MustCompile(`(?m)^[ \t]*public\s+(?:(?:abstract|final|static|sealed|non-sealed|strictfp)\s+)*(?:class|@?interface|enum|record)\s+(\w+)`)
)

// Statement keywords that the method pattern can mistake for a method name.
var javaKeywords = map[string]struct{}{
	"if": {}, "for": {}, "while": {}, "switch": {}, "catch": {},
	"synchronized": {}, "return": {}, "new": {}, "else": {}, "try": {}, "do": {},
}

func newJavaExtractor() Extractor {
	return &patternExtractor{
		language: "java",
		symbols: []symbolPattern{
			{javaClass, model.KindClass},
			{javaInterface, model.KindInterface},
			{javaEnum, model.KindEnum},
			{javaMethod, model.KindMethod},
		},
		imports: []*regexp.Regexp{javaImport},
		exports: []*regexp.Regexp{javaExport},
		skipName: func(name string) bool {
			_, ok := javaKeywords[name]
			return ok
		},
	}
}
