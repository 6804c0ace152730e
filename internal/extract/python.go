//go:build cgo

package extract

import (
	"context"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"lspwiki/internal/model"
)

// pythonExtractor parses Python with tree-sitter.
type pythonExtractor struct{}

func newPythonExtractor() Extractor { return pythonExtractor{} }

func (pythonExtractor) Language() string { return "python" }

// Extract reports every class with its direct methods as children, and every
// function not defined directly in a class body as a top-level function.
// Files with syntax errors yield an empty result.
func (pythonExtractor) Extract(relPath string, src []byte) model.FileInfo {
	info := model.NewFileInfo(relPath, "python")
	if len(src) == 0 {
		return info
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(python.GetLanguage())

	tree, err := parser.ParseCtx(context.Background(), nil, src)
	if err != nil {
		return info
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return info
	}

	stack := []*sitter.Node{root}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		switch node.Type() {
		case "import_statement":
			info.Imports = append(info.Imports, importNames(node, src)...)
		case "import_from_statement":
			if mod := node.ChildByFieldName("module_name"); mod != nil {
				info.Imports = append(info.Imports, mod.Content(src))
			}
		case "class_definition":
			info.Symbols = append(info.Symbols, pyClass(node, relPath, src))
		case "function_definition":
			if !isMethod(node) {
				info.Symbols = append(info.Symbols, pyDef(node, model.KindFunction, relPath, src))
			}
		}

		for i := int(node.NamedChildCount()) - 1; i >= 0; i-- {
			stack = append(stack, node.NamedChild(i))
		}
	}
	return info
}

// importNames returns the module names of an import statement, without aliases.
func importNames(node *sitter.Node, src []byte) []string {
	var names []string
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "dotted_name":
			names = append(names, child.Content(src))
		case "aliased_import":
			if n := child.ChildByFieldName("name"); n != nil {
				names = append(names, n.Content(src))
			}
		}
	}
	return names
}

func pyClass(node *sitter.Node, relPath string, src []byte) model.Symbol {
	sym := pyDef(node, model.KindClass, relPath, src)
	body := node.ChildByFieldName("body")
	if body == nil {
		return sym
	}
	for i := 0; i < int(body.NamedChildCount()); i++ {
		item := body.NamedChild(i)
		if item.Type() == "decorated_definition" {
			item = item.ChildByFieldName("definition")
		}
		if item != nil && item.Type() == "function_definition" {
			sym.Children = append(sym.Children, pyDef(item, model.KindMethod, relPath, src))
		}
	}
	return sym
}

func pyDef(node *sitter.Node, kind model.SymbolKind, relPath string, src []byte) model.Symbol {
	name := ""
	if n := node.ChildByFieldName("name"); n != nil {
		name = n.Content(src)
	}
	sym := model.NewSymbol(name, kind, relPath,
		int(node.StartPoint().Row)+1,
		int(node.EndPoint().Row)+1,
	)
	sym.Docstring = pyDocstring(node, src)
	return sym
}

// isMethod reports whether a function is defined directly in a class body,
// possibly under decorators.
func isMethod(fn *sitter.Node) bool {
	parent := fn.Parent()
	if parent != nil && parent.Type() == "decorated_definition" {
		parent = parent.Parent()
	}
	if parent == nil || parent.Type() != "block" {
		return false
	}
	owner := parent.Parent()
	return owner != nil && owner.Type() == "class_definition"
}

// pyDocstring returns the cleaned docstring of a class or function, or "".
func pyDocstring(node *sitter.Node, src []byte) string {
	body := node.ChildByFieldName("body")
	if body == nil {
		return ""
	}
	for i := 0; i < int(body.NamedChildCount()); i++ {
		stmt := body.NamedChild(i)
		if stmt.Type() == "comment" {
			continue
		}
		if stmt.Type() != "expression_statement" || stmt.NamedChildCount() != 1 {
			return ""
		}
		str := stmt.NamedChild(0)
		if str.Type() != "string" {
			return ""
		}
		doc, ok := stringLiteral(str.Content(src))
		if !ok {
			return ""
		}
		return cleandoc(doc)
	}
	return ""
}
