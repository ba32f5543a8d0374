// Package analyzer enumerates source files under a root directory and runs
// the per-file detectors over them, tree based where a parser exists and
// textual otherwise.
package analyzer

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/hannajonsd/leakscan/finding"
	"github.com/hannajonsd/leakscan/heuristic"
	"github.com/hannajonsd/leakscan/lifecycle"
	"github.com/hannajonsd/leakscan/narrowing"
	"github.com/hannajonsd/leakscan/parser"
)

// defaultSkipDirs are build and dependency trees that are never worth
// scanning.
var defaultSkipDirs = []string{
	"node_modules", "vendor", "__pycache__",
	"build", "dist", "venv", "env", ".venv",
}

// Config controls a single scan. A zero Workers means one worker per CPU.
type Config struct {
	Root     string
	SkipDirs []string
	Workers  int
	Verbose  bool
}

// Analyzer runs a configured scan. Each file is analyzed in isolation, so
// files can be processed concurrently without shared state.
type Analyzer struct {
	cfg Config
	log *slog.Logger
}

func New(cfg Config, log *slog.Logger) *Analyzer {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if log == nil {
		log = slog.Default()
	}
	return &Analyzer{cfg: cfg, log: log}
}

// Run scans every supported file under the root and returns the combined
// findings sorted by file, line, then column. File paths in findings are
// relative to the root. Unreadable or unparseable files are skipped with a
// warning rather than failing the scan.
func (a *Analyzer) Run(ctx context.Context) ([]finding.Finding, error) {
	files, err := a.enumerate()
	if err != nil {
		return nil, fmt.Errorf("enumerate %s: %w", a.cfg.Root, err)
	}
	a.log.Debug("enumerated source files", "root", a.cfg.Root, "count", len(files))

	results := make([][]finding.Finding, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(a.cfg.Workers)
	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = a.scanFile(file)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var findings []finding.Finding
	for _, batch := range results {
		findings = append(findings, batch...)
	}
	finding.Sort(findings)
	return findings, nil
}

// enumerate walks the root collecting files either a tree parser or the
// fallback engine can handle, honoring .gitignore and skip directories.
func (a *Analyzer) enumerate() ([]string, error) {
	ignores := loadIgnoreList(a.cfg.Root)

	skip := make(map[string]bool, len(defaultSkipDirs)+len(a.cfg.SkipDirs))
	for _, d := range defaultSkipDirs {
		skip[d] = true
	}
	for _, d := range a.cfg.SkipDirs {
		skip[d] = true
	}

	var files []string
	err := filepath.WalkDir(a.cfg.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == a.cfg.Root {
				return err
			}
			a.log.Warn("skipping unreadable path", "path", path, "error", err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(a.cfg.Root, path)
		if err != nil {
			return err
		}

		if d.IsDir() {
			if path == a.cfg.Root {
				return nil
			}
			if strings.HasPrefix(d.Name(), ".") || skip[d.Name()] || ignores.Match(rel) {
				return filepath.SkipDir
			}
			return nil
		}

		if ignores.Match(rel) {
			return nil
		}
		if parser.Supported(path) || heuristic.Supported(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// scanFile runs the appropriate engine for one file. Errors degrade to a
// warning so a single bad file never aborts the batch.
func (a *Analyzer) scanFile(path string) []finding.Finding {
	source, err := os.ReadFile(path)
	if err != nil {
		a.log.Warn("skipping unreadable file", "path", path, "error", err)
		return nil
	}

	rel, err := filepath.Rel(a.cfg.Root, path)
	if err != nil {
		rel = path
	}
	rel = filepath.ToSlash(rel)

	if parser.Supported(path) {
		return a.scanPrecise(source, path, rel)
	}
	return heuristic.Scan(source, rel)
}

func (a *Analyzer) scanPrecise(source []byte, path, rel string) []finding.Finding {
	p, err := parser.CreateParser(path)
	if err != nil {
		a.log.Warn("skipping file", "path", path, "error", err)
		return nil
	}
	defer p.Close()

	result, err := p.Parse(source, rel)
	if err != nil {
		a.log.Warn("skipping unparseable file", "path", path, "error", err)
		return nil
	}

	imports := p.ExtractImports(result.Tree.RootNode(), source)
	if a.cfg.Verbose {
		a.log.Debug("parsed file", "path", rel, "language", p.Language(), "imports", len(imports))
	}

	findings := lifecycle.Detect(result, imports)
	findings = append(findings, narrowing.Detect(result)...)
	return findings
}
