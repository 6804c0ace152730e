// Package model defines the structural model produced by an analysis run.
package model

// SymbolKind is the closed vocabulary of symbol kinds.
type SymbolKind string

// Kinds reported by language servers.
const (
	KindFile          SymbolKind = "file"
	KindModule        SymbolKind = "module"
	KindNamespace     SymbolKind = "namespace"
	KindPackage       SymbolKind = "package"
	KindClass         SymbolKind = "class"
	KindMethod        SymbolKind = "method"
	KindProperty      SymbolKind = "property"
	KindField         SymbolKind = "field"
	KindConstructor   SymbolKind = "constructor"
	KindEnum          SymbolKind = "enum"
	KindInterface     SymbolKind = "interface"
	KindFunction      SymbolKind = "function"
	KindVariable      SymbolKind = "variable"
	KindConstant      SymbolKind = "constant"
	KindString        SymbolKind = "string"
	KindNumber        SymbolKind = "number"
	KindBoolean       SymbolKind = "boolean"
	KindArray         SymbolKind = "array"
	KindObject        SymbolKind = "object"
	KindKey           SymbolKind = "key"
	KindNull          SymbolKind = "null"
	KindEnumMember    SymbolKind = "enummember"
	KindStruct        SymbolKind = "struct"
	KindEvent         SymbolKind = "event"
	KindOperator      SymbolKind = "operator"
	KindTypeParameter SymbolKind = "typeparameter"
	KindUnknown       SymbolKind = "unknown"
)

// Kinds only the fallback extractors produce.
const (
	KindType  SymbolKind = "type"
	KindTrait SymbolKind = "trait"
)

// Symbol is a named structural element with a source location.
type Symbol struct {
	Name       string     `json:"name" yaml:"name"`
	Kind       SymbolKind `json:"kind" yaml:"kind"`
	File       string     `json:"file" yaml:"file"`
	Line       int        `json:"line" yaml:"line"`
	EndLine    int        `json:"end_line" yaml:"end_line"`
	Detail     string     `json:"detail" yaml:"detail"`
	Docstring  string     `json:"docstring" yaml:"docstring"`
	Children   []Symbol   `json:"children" yaml:"children"`
	References []string   `json:"references" yaml:"references"`
	Calls      []string   `json:"calls" yaml:"calls"`
	CalledBy   []string   `json:"called_by" yaml:"called_by"`
}

// NewSymbol creates a symbol with empty (non-nil) lists.
// endLine is raised to line when smaller so start <= end always holds.
func NewSymbol(name string, kind SymbolKind, file string, line, endLine int) Symbol {
	if line < 1 {
		line = 1
	}
	if endLine < line {
		endLine = line
	}
	return Symbol{
		Name:       name,
		Kind:       kind,
		File:       file,
		Line:       line,
		EndLine:    endLine,
		Children:   []Symbol{},
		References: []string{},
		Calls:      []string{},
		CalledBy:   []string{},
	}
}

// Walk visits s and every descendant in depth-first pre-order without recursion.
// Returning false from fn skips the visited symbol's children.
func (s *Symbol) Walk(fn func(sym *Symbol, depth int) bool) {
	type frame struct {
		sym   *Symbol
		depth int
	}
	stack := []frame{{s, 0}}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(top.sym, top.depth) {
			continue
		}
		for i := len(top.sym.Children) - 1; i >= 0; i-- {
			stack = append(stack, frame{&top.sym.Children[i], top.depth + 1})
		}
	}
}

// FileInfo holds the extraction result for one source file.
type FileInfo struct {
	Path     string   `json:"path" yaml:"path"`
	Language string   `json:"language" yaml:"language"`
	Symbols  []Symbol `json:"symbols" yaml:"symbols"`
	Imports  []string `json:"imports" yaml:"imports"`
	Exports  []string `json:"exports" yaml:"exports"`
}

// NewFileInfo creates a FileInfo with empty (non-nil) lists.
func NewFileInfo(path, language string) FileInfo {
	return FileInfo{
		Path:     path,
		Language: language,
		Symbols:  []Symbol{},
		Imports:  []string{},
		Exports:  []string{},
	}
}

// SymbolCount returns the number of symbols including nested children.
func (f *FileInfo) SymbolCount() int {
	n := 0
	for i := range f.Symbols {
		f.Symbols[i].Walk(func(*Symbol, int) bool {
			n++
			return true
		})
	}
	return n
}

// Dependencies splits declared dependencies into runtime and development sets.
type Dependencies struct {
	Runtime []string `json:"runtime" yaml:"runtime"`
	Dev     []string `json:"dev" yaml:"dev"`
}

// NewDependencies returns an empty dependency set.
func NewDependencies() Dependencies {
	return Dependencies{Runtime: []string{}, Dev: []string{}}
}

// ProjectAnalysis is the complete result of one analysis run.
type ProjectAnalysis struct {
	Name         string              `json:"name" yaml:"name"`
	Root         string              `json:"root" yaml:"root"`
	Language     string              `json:"language" yaml:"language"`
	Framework    string              `json:"framework" yaml:"framework"`
	EntryPoints  []string            `json:"entry_points" yaml:"entry_points"`
	Files        []FileInfo          `json:"files" yaml:"files"`
	Dependencies Dependencies        `json:"dependencies" yaml:"dependencies"`
	CallGraph    map[string][]string `json:"call_graph" yaml:"call_graph"`
}
