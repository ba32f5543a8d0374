package parser

import (
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

type PythonParser struct {
	BaseParser
}

func NewPythonParser() (*PythonParser, error) {
	parser := sitter.NewParser()
	language := python.GetLanguage()
	parser.SetLanguage(language)

	return &PythonParser{
		BaseParser: BaseParser{
			parser:   parser,
			language: language,
			langName: "python",
		},
	}, nil
}

func (p *PythonParser) Parse(source []byte, filePath string) (*ParseResult, error) {
	return p.parseSource(source, filePath)
}

func (p *PythonParser) ExtractImports(node *sitter.Node, source []byte) []Import {
	var imports []Import

	WalkAST(node, func(n *sitter.Node) {
		switch n.Type() {
		case "import_statement":
			imports = append(imports, p.processImportStatement(n, source)...)
		case "import_from_statement":
			imports = append(imports, p.processImportFromStatement(n, source)...)
		}
	})

	return DeduplicateImports(imports)
}

// processImportStatement handles `import x`, `import x.y`, `import x as y`
func (p *PythonParser) processImportStatement(node *sitter.Node, source []byte) []Import {
	var imports []Import

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)

		switch child.Type() {
		case "dotted_name":
			module := NodeText(child, source)
			imports = append(imports, Import{Module: module, Alias: module})
		case "aliased_import":
			if imp := p.processAliasedImport(child, source, ""); imp != nil {
				imports = append(imports, *imp)
			}
		}
	}

	return imports
}

// processImportFromStatement handles `from x import y`, `from x import y as z`
func (p *PythonParser) processImportFromStatement(node *sitter.Node, source []byte) []Import {
	var imports []Import
	var module string

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)

		switch child.Type() {
		case "dotted_name":
			if module == "" {
				module = NodeText(child, source)
			} else {
				symbol := NodeText(child, source)
				imports = append(imports, Import{Module: module, Alias: symbol, Symbol: symbol})
			}
		case "aliased_import":
			if module != "" {
				if imp := p.processAliasedImport(child, source, module); imp != nil {
					imports = append(imports, *imp)
				}
			}
		case "identifier":
			if module != "" {
				symbol := NodeText(child, source)
				imports = append(imports, Import{Module: module, Alias: symbol, Symbol: symbol})
			}
		}
	}

	return imports
}

// processAliasedImport handles the `x as y` form. With an empty module the
// dotted name is the module itself (`import sqlite3 as db`); otherwise it is
// a member of the enclosing from-import.
func (p *PythonParser) processAliasedImport(node *sitter.Node, source []byte, module string) *Import {
	var dotted, alias string

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)

		switch child.Type() {
		case "dotted_name":
			dotted = NodeText(child, source)
		case "identifier":
			alias = NodeText(child, source)
		}
	}

	if dotted == "" || alias == "" {
		return nil
	}
	if module == "" {
		return &Import{Module: dotted, Alias: alias}
	}
	return &Import{Module: module, Alias: alias, Symbol: dotted}
}
