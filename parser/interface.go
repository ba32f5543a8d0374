package parser

import sitter "github.com/smacker/go-tree-sitter"

// Parser defines the interface for language-specific source code parsers
type Parser interface {
	Language() string
	Close()
	Parse(source []byte, filePath string) (*ParseResult, error)
	ExtractImports(node *sitter.Node, source []byte) []Import
}

// BaseParser provides common functionality for all language parsers
type BaseParser struct {
	parser   *sitter.Parser
	language *sitter.Language
	langName string
}

// ParseResult contains the parsed tree and metadata for a source file
type ParseResult struct {
	Tree     *sitter.Tree
	Source   []byte
	Language string
	FilePath string
}

// Close releases the underlying syntax tree.
func (r *ParseResult) Close() {
	if r.Tree != nil {
		r.Tree.Close()
	}
}

// Import represents one binding introduced by an import statement.
// Alias is the local name the binding is visible under. Symbol is set for
// from-imports, where a single member of the module is bound directly:
// `from tempfile import NamedTemporaryFile` yields
// {Module: "tempfile", Alias: "NamedTemporaryFile", Symbol: "NamedTemporaryFile"}.
type Import struct {
	Module string
	Alias  string
	Symbol string
}
