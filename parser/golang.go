package parser

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
)

type GoParser struct {
	BaseParser
}

// NewGoParser creates a new Go language parser using tree-sitter
func NewGoParser() (*GoParser, error) {
	parser := sitter.NewParser()
	language := golang.GetLanguage()
	parser.SetLanguage(language)

	return &GoParser{
		BaseParser: BaseParser{
			parser:   parser,
			language: language,
			langName: "go",
		},
	}, nil
}

func (p *GoParser) Parse(source []byte, filePath string) (*ParseResult, error) {
	return p.parseSource(source, filePath)
}

// ExtractImports finds all import bindings in a Go tree. The alias defaults
// to the last element of the import path; a blank or dot import yields no
// usable binding and is dropped.
func (p *GoParser) ExtractImports(node *sitter.Node, source []byte) []Import {
	var imports []Import

	WalkAST(node, func(n *sitter.Node) {
		if n.Type() != "import_spec" {
			return
		}
		if imp := p.processImportSpec(n, source); imp != nil {
			imports = append(imports, *imp)
		}
	})

	return DeduplicateImports(imports)
}

func (p *GoParser) processImportSpec(node *sitter.Node, source []byte) *Import {
	pathNode := node.ChildByFieldName("path")
	if pathNode == nil {
		return nil
	}
	path := StringValue(pathNode, source)
	if path == "" {
		return nil
	}

	alias := ""
	if nameNode := node.ChildByFieldName("name"); nameNode != nil {
		alias = NodeText(nameNode, source)
	}
	if alias == "." || alias == "_" {
		return nil
	}
	if alias == "" {
		parts := strings.Split(path, "/")
		alias = parts[len(parts)-1]
	}

	return &Import{Module: path, Alias: alias}
}
