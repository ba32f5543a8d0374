// Package heuristic is a regex and line-window approximation of the tree
// based detectors, used only when no tree parser exists for the file's
// language. It is a documented precision/recall trade-off, not a parser
// replacement.
package heuristic

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/hannajonsd/leakscan/finding"
)

const (
	// A guard with no exit keyword within exitWindow lines is treated as
	// non-exiting; a use is searched within useWindow lines after it.
	exitWindow = 5
	useWindow  = 25
)

var (
	nullGuardRe  = regexp.MustCompile(`\bif\s*\(?\s*([A-Za-z_][A-Za-z0-9_]*)\s*(?:[!=]==?)\s*(?:null|nil|undefined|None)\b`)
	falsyGuardRe = regexp.MustCompile(`\bif\s*\(\s*!\s*([A-Za-z_][A-Za-z0-9_]*)\s*\)`)
	exitRe       = regexp.MustCompile(`\b(?:return|throw)\b`)
	acquireRe    = regexp.MustCompile(`\b([A-Za-z_][A-Za-z0-9_]*)\s*=\s*[^=\n]*\b(?:open|FileInputStream|FileOutputStream|FileReader|FileWriter|RandomAccessFile)\s*\(`)
)

// Supported reports whether the fallback engine handles the file's
// extension.
func Supported(filePath string) bool {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".kt", ".kts", ".swift", ".rs":
		return true
	default:
		return false
	}
}

// Scan runs both textual heuristics over raw source text.
func Scan(source []byte, file string) []finding.Finding {
	lines := strings.Split(string(source), "\n")

	var findings []finding.Finding
	for i, line := range lines {
		if f := checkGuard(lines, i, line, file); f != nil {
			findings = append(findings, *f)
		}
		if f := checkAcquisition(lines, i, line, file); f != nil {
			findings = append(findings, *f)
		}
	}
	return findings
}

// checkGuard approximates the narrowing detector: a null or falsy guard with
// no exit keyword nearby, followed by a member or index access on the
// guarded name before any reassignment.
func checkGuard(lines []string, i int, line, file string) *finding.Finding {
	match := nullGuardRe.FindStringSubmatch(line)
	if match == nil {
		match = falsyGuardRe.FindStringSubmatch(line)
	}
	if match == nil {
		return nil
	}
	name := match[1]

	for k := i; k <= i+exitWindow && k < len(lines); k++ {
		if exitRe.MatchString(lines[k]) {
			return nil
		}
	}

	quoted := regexp.QuoteMeta(name)
	useRe := regexp.MustCompile(`\b` + quoted + `\s*[.\[]`)
	reassignRe := regexp.MustCompile(`\b` + quoted + `\s*=[^=]`)

	for k := i + 1; k <= i+useWindow && k < len(lines); k++ {
		if reassignRe.MatchString(lines[k]) {
			return nil
		}
		if loc := useRe.FindStringIndex(lines[k]); loc != nil {
			return &finding.Finding{
				File:     file,
				Line:     k + 1,
				Column:   loc[0] + 1,
				Category: finding.NarrowingViolation,
				Message:  fmt.Sprintf("%s used without narrowing after non-exiting guard", name),
			}
		}
	}
	return nil
}

// checkAcquisition approximates the lifecycle detector: a file-open style
// assignment with no later close call on the same name anywhere in the file.
func checkAcquisition(lines []string, i int, line, file string) *finding.Finding {
	match := acquireRe.FindStringSubmatch(line)
	if match == nil {
		return nil
	}
	name := match[1]

	closeRe := regexp.MustCompile(`\b` + regexp.QuoteMeta(name) + `\s*\.\s*close\s*\(`)
	for k := i + 1; k < len(lines); k++ {
		if closeRe.MatchString(lines[k]) {
			return nil
		}
	}

	return &finding.Finding{
		File:     file,
		Line:     i + 1,
		Category: finding.FileHandle,
		Message:  fmt.Sprintf("File handle %s opened without close()", name),
	}
}
