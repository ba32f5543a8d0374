package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateParser(t *testing.T) {
	tests := []struct {
		path     string
		language string
	}{
		{"app.js", "javascript"},
		{"component.jsx", "javascript"},
		{"util.mjs", "javascript"},
		{"legacy.cjs", "javascript"},
		{"service.ts", "typescript"},
		{"view.tsx", "typescript"},
		{"script.py", "python"},
		{"main.go", "go"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			p, err := CreateParser(tt.path)
			require.NoError(t, err)
			defer p.Close()
			assert.Equal(t, tt.language, p.Language())
		})
	}

	t.Run("unsupported extension", func(t *testing.T) {
		_, err := CreateParser("notes.txt")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported file type")
	})
}

func TestSupported(t *testing.T) {
	assert.True(t, Supported("a.go"))
	assert.True(t, Supported("a.ts"))
	assert.False(t, Supported("a.kt"))
	assert.False(t, Supported("Makefile"))
}

func parseAndExtract(t *testing.T, path, source string) []Import {
	t.Helper()

	p, err := CreateParser(path)
	require.NoError(t, err)
	defer p.Close()

	result, err := p.Parse([]byte(source), path)
	require.NoError(t, err)

	return p.ExtractImports(result.Tree.RootNode(), []byte(source))
}

func TestJavaScriptImports(t *testing.T) {
	source := `
import fs from "fs";
import * as path from "path";
import { readFile, writeFile as wf } from "fs/promises";
const sqlite = require("sqlite3");
`
	imports := parseAndExtract(t, "app.js", source)

	assert.ElementsMatch(t, []Import{
		{Module: "fs", Alias: "fs"},
		{Module: "path", Alias: "path"},
		{Module: "fs/promises", Alias: "readFile", Symbol: "readFile"},
		{Module: "fs/promises", Alias: "wf", Symbol: "writeFile"},
		{Module: "sqlite3", Alias: "sqlite"},
	}, imports)
}

func TestGoImports(t *testing.T) {
	source := `package main

import (
	"context"
	"database/sql"
	tsdb "database/sql"
	_ "embed"
)
`
	imports := parseAndExtract(t, "main.go", source)

	assert.ElementsMatch(t, []Import{
		{Module: "context", Alias: "context"},
		{Module: "database/sql", Alias: "sql"},
		{Module: "database/sql", Alias: "tsdb"},
	}, imports)
}

func TestPythonImports(t *testing.T) {
	source := `
import sqlite3
import tempfile as tf
from io import open as iopen
from tempfile import NamedTemporaryFile
`
	imports := parseAndExtract(t, "script.py", source)

	assert.ElementsMatch(t, []Import{
		{Module: "sqlite3", Alias: "sqlite3"},
		{Module: "tempfile", Alias: "tf"},
		{Module: "io", Alias: "iopen", Symbol: "open"},
		{Module: "tempfile", Alias: "NamedTemporaryFile", Symbol: "NamedTemporaryFile"},
	}, imports)
}

func TestParseRejectsBrokenSource(t *testing.T) {
	p, err := CreateParser("main.go")
	require.NoError(t, err)
	defer p.Close()

	result, err := p.Parse([]byte("package main\n\nfunc {{{"), "main.go")
	if err == nil {
		// The grammar may still build a tree with error nodes; the result
		// must at least carry the metadata callers rely on.
		require.NotNil(t, result.Tree)
		assert.Equal(t, "go", result.Language)
	}
}
