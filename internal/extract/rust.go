package extract

import (
	"regexp"
	"strings"

	"lspwiki/internal/model"
)

const rustVis = `(?:pub(?:\([^)]*\))?\s+)?`

var (
	rustFn     = regexp.MustCompile(`(?m)^[ \t]*` + rustVis + `(?:(?:const|async|unsafe)\s+)*(?:extern\s+"[^"]*"\s+)?fn\s+(\w+)`)
	rustStruct = regexp.MustCompile(`(?m)^[ \t]*` + rustVis + `struct\s+(\w+)`)
	rustEnum   = regexp.MustCompile(`(?m)^[ \t]*` + rustVis + `enum\s+(\w+)`)
	rustTrait  = regexp.MustCompile(`(?m)^[ \t]*` + rustVis + `(?:unsafe\s+)?trait\s+(\w+)`)

	rustUse    = regexp.MustCompile(`(?m)^[ \t]*` + rustVis + `use\s+([^;]+);`)
	rustExport = regexp.MustCompile(`(?m)^[ \t]*pub\s+(?:(?:const|async|unsafe)\s+)*(?:fn|struct|enum|trait|mod|type|static|const)\s+(\w+)`)
)

func newRustExtractor() Extractor {
	return &patternExtractor{
		language: "rust",
		symbols: []symbolPattern{
			{rustFn, model.KindFunction},
			{rustStruct, model.KindStruct},
			{rustEnum, model.KindEnum},
			{rustTrait, model.KindTrait},
		},
		extraImports: rustImports,
		exports:      []*regexp.Regexp{rustExport},
	}
}

// rustImports collapses whitespace inside multi-line use trees.
func rustImports(src []byte) []string {
	var out []string
	for _, m := range rustUse.FindAllSubmatch(src, -1) {
		out = append(out, strings.Join(strings.Fields(string(m[1])), " "))
	}
	return out
}
