package parser

import (
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
)

type JavaScriptParser struct {
	BaseParser
}

func NewJavaScriptParser() (*JavaScriptParser, error) {
	parser := sitter.NewParser()
	language := javascript.GetLanguage()
	parser.SetLanguage(language)

	return &JavaScriptParser{
		BaseParser: BaseParser{
			parser:   parser,
			language: language,
			langName: "javascript",
		},
	}, nil
}

func (p *JavaScriptParser) Parse(source []byte, filePath string) (*ParseResult, error) {
	return p.parseSource(source, filePath)
}

func (p *JavaScriptParser) ExtractImports(node *sitter.Node, source []byte) []Import {
	return extractECMAImports(node, source)
}

// extractECMAImports collects import bindings from a JavaScript or TypeScript
// tree; the two grammars share the relevant node vocabulary.
func extractECMAImports(node *sitter.Node, source []byte) []Import {
	var imports []Import

	WalkAST(node, func(n *sitter.Node) {
		switch n.Type() {
		case "import_statement":
			imports = append(imports, processImportStatement(n, source)...)
		case "variable_declarator":
			if imp := processRequireDeclarator(n, source); imp != nil {
				imports = append(imports, *imp)
			}
		}
	})

	return DeduplicateImports(imports)
}

// processImportStatement handles default, namespace, and named import forms
func processImportStatement(node *sitter.Node, source []byte) []Import {
	var module string
	var imports []Import

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() == "string" {
			module = StringValue(child, source)
		}
	}
	if module == "" {
		return nil
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() != "import_clause" {
			continue
		}
		for j := 0; j < int(child.ChildCount()); j++ {
			clause := child.Child(j)
			switch clause.Type() {
			case "identifier":
				// import foo from "module"
				imports = append(imports, Import{Module: module, Alias: NodeText(clause, source)})
			case "namespace_import":
				// import * as foo from "module"
				for k := 0; k < int(clause.ChildCount()); k++ {
					if clause.Child(k).Type() == "identifier" {
						imports = append(imports, Import{Module: module, Alias: NodeText(clause.Child(k), source)})
					}
				}
			case "named_imports":
				// import { a, b as c } from "module"
				imports = append(imports, processNamedImports(clause, source, module)...)
			}
		}
	}

	return imports
}

func processNamedImports(node *sitter.Node, source []byte, module string) []Import {
	var imports []Import

	for i := 0; i < int(node.ChildCount()); i++ {
		spec := node.Child(i)
		if spec.Type() != "import_specifier" {
			continue
		}
		var name, alias string
		for j := 0; j < int(spec.ChildCount()); j++ {
			if spec.Child(j).Type() == "identifier" {
				if name == "" {
					name = NodeText(spec.Child(j), source)
				} else {
					alias = NodeText(spec.Child(j), source)
				}
			}
		}
		if alias == "" {
			alias = name
		}
		if name != "" {
			imports = append(imports, Import{Module: module, Alias: alias, Symbol: name})
		}
	}

	return imports
}

// processRequireDeclarator handles `const foo = require("module")`
func processRequireDeclarator(node *sitter.Node, source []byte) *Import {
	name := node.ChildByFieldName("name")
	value := node.ChildByFieldName("value")
	if name == nil || value == nil || name.Type() != "identifier" || value.Type() != "call_expression" {
		return nil
	}

	fn := value.ChildByFieldName("function")
	if fn == nil || fn.Type() != "identifier" || NodeText(fn, source) != "require" {
		return nil
	}

	args := value.ChildByFieldName("arguments")
	if args == nil {
		return nil
	}
	for i := 0; i < int(args.ChildCount()); i++ {
		if args.Child(i).Type() == "string" {
			return &Import{
				Module: StringValue(args.Child(i), source),
				Alias:  NodeText(name, source),
			}
		}
	}

	return nil
}
