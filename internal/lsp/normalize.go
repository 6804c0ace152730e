package lsp

import (
	"encoding/json"

	"lspwiki/internal/errors"
	"lspwiki/internal/model"
)

// DefaultMaxSymbolDepth bounds nesting accepted from documentSymbol results.
const DefaultMaxSymbolDepth = 64

// symbolKinds is the LSP SymbolKind enumeration, indexed by code - 1.
var symbolKinds = [...]model.SymbolKind{
	model.KindFile,
	model.KindModule,
	model.KindNamespace,
	model.KindPackage,
	model.KindClass,
	model.KindMethod,
	model.KindProperty,
	model.KindField,
	model.KindConstructor,
	model.KindEnum,
	model.KindInterface,
	model.KindFunction,
	model.KindVariable,
	model.KindConstant,
	model.KindString,
	model.KindNumber,
	model.KindBoolean,
	model.KindArray,
	model.KindObject,
	model.KindKey,
	model.KindNull,
	model.KindEnumMember,
	model.KindStruct,
	model.KindEvent,
	model.KindOperator,
	model.KindTypeParameter,
}

// KindFromCode maps an LSP SymbolKind code to a kind name; unknown codes map to "unknown".
func KindFromCode(code int) model.SymbolKind {
	if code < 1 || code > len(symbolKinds) {
		return model.KindUnknown
	}
	return symbolKinds[code-1]
}

// Position is a zero-based line and UTF-16 character offset.
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

// Range is a span between two positions.
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// Location is a range inside a document.
type Location struct {
	URI   string `json:"uri"`
	Range Range  `json:"range"`
}

// rawSymbol covers both DocumentSymbol and SymbolInformation.
type rawSymbol struct {
	Name           string      `json:"name"`
	Kind           int         `json:"kind"`
	Detail         string      `json:"detail"`
	Range          *Range      `json:"range"`
	SelectionRange *Range      `json:"selectionRange"`
	Location       *Location   `json:"location"`
	Children       []rawSymbol `json:"children"`
}

func (r *rawSymbol) span() *Range {
	if r.Range != nil {
		return r.Range
	}
	if r.Location != nil {
		return &r.Location.Range
	}
	return nil
}

// NormalizeSymbols converts a documentSymbol result into model symbols owned
// by relPath, with nesting limited to DefaultMaxSymbolDepth.
func NormalizeSymbols(raw json.RawMessage, relPath string) ([]model.Symbol, error) {
	return normalizeSymbols(raw, relPath, DefaultMaxSymbolDepth)
}

// normalizeSymbols walks the result with an explicit stack. Lines become
// 1-based; a record without any range is placed on line 1. Children deeper
// than maxDepth are dropped.
func normalizeSymbols(raw json.RawMessage, relPath string, maxDepth int) ([]model.Symbol, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return []model.Symbol{}, nil
	}
	var records []rawSymbol
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, errors.New(errors.ProtocolError, "unexpected documentSymbol result", err)
	}
	if maxDepth < 1 {
		maxDepth = DefaultMaxSymbolDepth
	}

	type frame struct {
		src   *rawSymbol
		dst   *[]model.Symbol
		depth int
	}

	out := make([]model.Symbol, 0, len(records))
	var stack []frame
	for i := len(records) - 1; i >= 0; i-- {
		stack = append(stack, frame{&records[i], nil, 1})
	}

	// Every slice is allocated at its final capacity, so pointers into it
	// stay valid while descendants are appended.
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		line, endLine := 1, 1
		if r := f.src.span(); r != nil {
			line, endLine = r.Start.Line+1, r.End.Line+1
		}
		sym := model.NewSymbol(f.src.Name, KindFromCode(f.src.Kind), relPath, line, endLine)
		sym.Detail = f.src.Detail

		var target *[]model.Symbol
		if f.dst == nil {
			out = append(out, sym)
			target = &out
		} else {
			*f.dst = append(*f.dst, sym)
			target = f.dst
		}

		if f.depth >= maxDepth || len(f.src.Children) == 0 {
			continue
		}
		owner := &(*target)[len(*target)-1]
		owner.Children = make([]model.Symbol, 0, len(f.src.Children))
		for i := len(f.src.Children) - 1; i >= 0; i-- {
			stack = append(stack, frame{&f.src.Children[i], &owner.Children, f.depth + 1})
		}
	}
	return out, nil
}
