package extract

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"lspwiki/internal/model"
)

var (
	goFunction  = regexp.MustCompile(`func\s+(\w+)\s*(?:\[[^\]]*\])?\s*\(`)
	goMethod    = regexp.MustCompile(`func\s+\([^)]+\)\s+(\w+)\s*(?:\[[^\]]*\])?\s*\(`)
	goStruct    = regexp.MustCompile(`type\s+(\w+)(?:\[[^\]]*\])?\s+struct`)
	goInterface = regexp.MustCompile(`type\s+(\w+)(?:\[[^\]]*\])?\s+interface`)

	goImportSingle = regexp.MustCompile(`import\s+(?:[\w.]+\s+)?"([^"]+)"`)
	goImportGroup  = regexp.MustCompile(`(?s)import\s+\((.*?)\)`)
	goQuoted       = regexp.MustCompile(`"([^"]+)"`)
)

func newGoExtractor() Extractor {
	return &patternExtractor{
		language: "go",
		symbols: []symbolPattern{
			{goFunction, model.KindFunction},
			{goMethod, model.KindMethod},
			{goStruct, model.KindStruct},
			{goInterface, model.KindInterface},
		},
		imports:      []*regexp.Regexp{goImportSingle},
		extraImports: goGroupedImports,
		extraExports: goExportedNames,
	}
}

// goGroupedImports returns the first quoted path on each line of every import block.
func goGroupedImports(src []byte) []string {
	var out []string
	for _, block := range goImportGroup.FindAllSubmatch(src, -1) {
		for _, line := range strings.Split(string(block[1]), "\n") {
			if m := goQuoted.FindStringSubmatch(line); m != nil {
				out = append(out, m[1])
			}
		}
	}
	return out
}

// goExportedNames lists capitalized function and type names once each.
func goExportedNames(info *model.FileInfo) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, s := range info.Symbols {
		if s.Kind == model.KindMethod {
			continue
		}
		r, _ := utf8.DecodeRuneInString(s.Name)
		if !unicode.IsUpper(r) {
			continue
		}
		if _, ok := seen[s.Name]; ok {
			continue
		}
		seen[s.Name] = struct{}{}
		out = append(out, s.Name)
	}
	return out
}
