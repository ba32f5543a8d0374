// Package lifecycle flags resources that are acquired but never released on
// any analyzed path. Release matching is name-based and deliberately ignores
// control flow: a release reachable on only some paths still counts, trading
// soundness for fewer false positives.
package lifecycle

import (
	"fmt"

	"github.com/hannajonsd/leakscan/finding"
	"github.com/hannajonsd/leakscan/parser"
)

// record tracks one acquisition. Records are never deleted; the released
// flag never reverts once set.
type record struct {
	name     string
	kind     finding.Category
	line     int
	released bool
}

type detector struct {
	source  []byte
	file    string
	aliases map[string]parser.Import
	records []*record
	byName  map[string][]*record
}

// Detect runs the resource lifecycle analysis over one parsed file. Only
// languages with an acquisition table produce findings; other trees yield
// nothing.
func Detect(result *parser.ParseResult, imports []parser.Import) []finding.Finding {
	d := &detector{
		source:  result.Source,
		file:    result.FilePath,
		aliases: make(map[string]parser.Import),
		byName:  make(map[string][]*record),
	}
	for _, imp := range imports {
		d.aliases[imp.Alias] = imp
	}

	switch result.Language {
	case "go":
		d.walkGo(result.Tree.RootNode())
	case "python":
		d.walkPython(result.Tree.RootNode())
	default:
		return nil
	}

	return d.report(result.Language)
}

func (d *detector) add(name string, kind finding.Category, line int) {
	rec := &record{name: name, kind: kind, line: line}
	d.records = append(d.records, rec)
	if name != "" {
		d.byName[name] = append(d.byName[name], rec)
	}
}

// markReleased satisfies the most recently acquired unreleased record of a
// compatible kind for the name. With two same-name acquisitions and one
// release, the earlier acquisition stays flagged.
func (d *detector) markReleased(name string, kinds ...finding.Category) {
	if name == "" {
		return
	}
	recs := d.byName[name]
	for i := len(recs) - 1; i >= 0; i-- {
		rec := recs[i]
		if rec.released {
			continue
		}
		if len(kinds) == 0 || containsKind(kinds, rec.kind) {
			rec.released = true
			return
		}
	}
}

func containsKind(kinds []finding.Category, target finding.Category) bool {
	for _, k := range kinds {
		if k == target {
			return true
		}
	}
	return false
}

// report emits one finding per unreleased record, in acquisition order.
func (d *detector) report(language string) []finding.Finding {
	var findings []finding.Finding
	for _, rec := range d.records {
		if rec.released {
			continue
		}
		findings = append(findings, finding.Finding{
			File:     d.file,
			Line:     rec.line,
			Category: rec.kind,
			Message:  formatMessage(language, rec.kind, rec.name),
		})
	}
	return findings
}

var goMessages = map[finding.Category]string{
	finding.ContextCancel: "context.With* cancel function never invoked",
	finding.TickerStop:    "Ticker %s missing Stop()",
	finding.TimerStop:     "Timer %s missing Stop()",
	finding.FileHandle:    "File handle %s opened without Close()",
	finding.DBHandle:      "DB handle %s opened without Close()",
	finding.MutexLock:     "Mutex %s locked without Unlock()",
}

var pythonMessages = map[finding.Category]string{
	finding.FileHandle: "File handle %s opened without context manager or close()",
	finding.DBHandle:   "DB connection %s opened without close()",
	finding.MutexLock:  "Lock %s acquired without release()",
}

func formatMessage(language string, kind finding.Category, name string) string {
	subject := name
	if subject == "" {
		subject = "resource"
	}

	messages := goMessages
	if language == "python" {
		messages = pythonMessages
	}
	template, ok := messages[kind]
	if !ok {
		return "Resource not released"
	}
	if kind == finding.ContextCancel {
		return template
	}
	return fmt.Sprintf(template, subject)
}
