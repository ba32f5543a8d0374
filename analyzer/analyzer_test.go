package analyzer

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hannajonsd/leakscan/finding"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestAnalyzerRun(t *testing.T) {
	root := t.TempDir()

	writeFile(t, root, "cmd/main.go", `package main

import "time"

func run() {
	t := time.NewTicker(time.Second)
	<-t.C
}
`)
	writeFile(t, root, "web/app.js", `function load(user) {
  if (!user) {
    console.log("missing user");
  }
  return user.name;
}
`)
	writeFile(t, root, "tools/backup.py", `f = open("dump.sql")
data = f.read()
`)
	writeFile(t, root, "mobile/Main.kt", `fun read(path: String) {
    val input = FileInputStream(path)
    process(input)
}
`)
	writeFile(t, root, "README.md", "docs only\n")
	writeFile(t, root, "node_modules/dep/index.js", `function f(x) {
  if (!x) {
    console.log("nope");
  }
  return x.y;
}
`)
	writeFile(t, root, ".gitignore", "generated/\n")
	writeFile(t, root, "generated/gen.py", `f = open("x")
`)

	a := New(Config{Root: root}, discardLogger())
	findings, err := a.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, findings, 4)

	byFile := make(map[string]finding.Finding)
	for _, f := range findings {
		byFile[f.File] = f
	}
	assert.Contains(t, byFile, "cmd/main.go")
	assert.Contains(t, byFile, "web/app.js")
	assert.Contains(t, byFile, "tools/backup.py")
	assert.Contains(t, byFile, "mobile/Main.kt")

	assert.Equal(t, finding.TickerStop, byFile["cmd/main.go"].Category)
	assert.Equal(t, finding.NarrowingViolation, byFile["web/app.js"].Category)
	assert.Equal(t, finding.FileHandle, byFile["tools/backup.py"].Category)
	assert.Equal(t, finding.FileHandle, byFile["mobile/Main.kt"].Category)

	assert.True(t, sort.SliceIsSorted(findings, func(i, j int) bool {
		return findings[i].File < findings[j].File
	}))
}

func TestAnalyzerSkipDirs(t *testing.T) {
	root := t.TempDir()

	writeFile(t, root, "third_party/vendored.py", `f = open("x")
`)
	writeFile(t, root, "src/leak.py", `f = open("x")
`)

	a := New(Config{Root: root, SkipDirs: []string{"third_party"}}, discardLogger())
	findings, err := a.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, findings, 1)
	assert.Equal(t, "src/leak.py", findings[0].File)
}

func TestAnalyzerEmptyTree(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "README.md", "nothing to scan\n")

	a := New(Config{Root: root}, discardLogger())
	findings, err := a.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, findings)
}

func TestAnalyzerCleanFilesProduceNoFindings(t *testing.T) {
	root := t.TempDir()

	writeFile(t, root, "main.go", `package main

import "os"

func run() error {
	f, err := os.Open("data.txt")
	if err != nil {
		return err
	}
	defer f.Close()
	return nil
}
`)
	writeFile(t, root, "app.js", `function load(user) {
  if (!user) {
    return null;
  }
  return user.name;
}
`)

	a := New(Config{Root: root}, discardLogger())
	findings, err := a.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, findings)
}

func TestIgnoreList(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".gitignore", `# build output
dist/
*.log
/secret.py
!keep.log
`)

	il := loadIgnoreList(root)

	assert.True(t, il.Match("dist/bundle.js"))
	assert.True(t, il.Match("sub/dist/bundle.js"))
	assert.True(t, il.Match("debug.log"))
	assert.True(t, il.Match("logs/debug.log"))
	assert.True(t, il.Match("secret.py"))
	assert.False(t, il.Match("src/app.js"))
	assert.False(t, il.Match("keep.log"))
}
