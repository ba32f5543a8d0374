package parser

import (
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

type TypeScriptParser struct {
	BaseParser
}

func NewTypeScriptParser() (*TypeScriptParser, error) {
	parser := sitter.NewParser()
	language := typescript.GetLanguage()
	parser.SetLanguage(language)

	return &TypeScriptParser{
		BaseParser: BaseParser{
			parser:   parser,
			language: language,
			langName: "typescript",
		},
	}, nil
}

func (p *TypeScriptParser) Parse(source []byte, filePath string) (*ParseResult, error) {
	return p.parseSource(source, filePath)
}

func (p *TypeScriptParser) ExtractImports(node *sitter.Node, source []byte) []Import {
	return extractECMAImports(node, source)
}
