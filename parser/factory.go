package parser

import (
	"fmt"
	"path/filepath"
	"strings"
)

// CreateParser creates the appropriate parser based on file extension
func CreateParser(filePath string) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filePath))

	switch ext {
	case ".js", ".jsx", ".mjs", ".cjs":
		return NewJavaScriptParser()
	case ".ts", ".tsx":
		return NewTypeScriptParser()
	case ".py":
		return NewPythonParser()
	case ".go":
		return NewGoParser()
	default:
		return nil, fmt.Errorf("unsupported file type: %s", ext)
	}
}

// Supported reports whether a tree parser exists for the file's extension.
func Supported(filePath string) bool {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".js", ".jsx", ".mjs", ".cjs", ".ts", ".tsx", ".py", ".go":
		return true
	default:
		return false
	}
}
