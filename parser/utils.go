package parser

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
)

// NodeText returns the source text covered by an AST node
func NodeText(node *sitter.Node, source []byte) string {
	return string(source[node.StartByte():node.EndByte()])
}

// Position converts a node's start point to a 1-based line and column
func Position(node *sitter.Node) (line, column int) {
	point := node.StartPoint()
	return int(point.Row) + 1, int(point.Column) + 1
}

// StringValue removes surrounding quotes from string literals in AST nodes
func StringValue(node *sitter.Node, source []byte) string {
	text := NodeText(node, source)
	if len(text) >= 2 && (text[0] == '"' || text[0] == '\'' || text[0] == '`') {
		text = text[1 : len(text)-1]
	}
	return text
}

// WalkAST recursively traverses an AST in pre-order and applies a visitor
// function to each node
func WalkAST(node *sitter.Node, visitor func(*sitter.Node)) {
	visitor(node)

	for i := 0; i < int(node.ChildCount()); i++ {
		WalkAST(node.Child(i), visitor)
	}
}

// DeduplicateImports removes duplicate import bindings
func DeduplicateImports(imports []Import) []Import {
	seen := make(map[string]bool)
	var result []Import

	for _, imp := range imports {
		key := fmt.Sprintf("%s|%s|%s", imp.Module, imp.Alias, imp.Symbol)
		if !seen[key] {
			seen[key] = true
			result = append(result, imp)
		}
	}

	return result
}

// parseSource provides common parsing functionality for all language parsers
func (bp *BaseParser) parseSource(source []byte, filePath string) (*ParseResult, error) {
	tree, err := bp.parser.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return nil, fmt.Errorf("failed to parse file %s: %w", filePath, err)
	}
	if tree == nil {
		return nil, fmt.Errorf("failed to parse file %s", filePath)
	}

	return &ParseResult{
		Tree:     tree,
		Source:   source,
		Language: bp.langName,
		FilePath: filePath,
	}, nil
}

// Language returns the language name for this parser
func (bp *BaseParser) Language() string {
	return bp.langName
}

func (bp *BaseParser) Close() {
}
