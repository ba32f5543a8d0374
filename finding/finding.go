package finding

import (
	"fmt"
	"sort"
)

// Category tags a finding with the defect class it belongs to. Lifecycle
// findings carry the resource-kind tag; narrowing findings share one fixed
// category.
type Category string

const (
	ContextCancel      Category = "context_cancel"
	TickerStop         Category = "ticker_stop"
	TimerStop          Category = "timer_stop"
	FileHandle         Category = "file_handle"
	DBHandle           Category = "db_handle"
	MutexLock          Category = "mutex_lock"
	NarrowingViolation Category = "narrowing_violation"
)

// Finding is one reported defect instance. Column is optional; zero means
// the detector only resolved a line.
type Finding struct {
	File     string   `json:"file"`
	Line     int      `json:"line"`
	Column   int      `json:"column,omitempty"`
	Category Category `json:"category"`
	Message  string   `json:"message"`
}

// String renders the stable tab-separated form:
// <file>:<line>[:<column>]\t<category>\t<message>
// Field order is frozen for compatibility with downstream consumers.
func (f Finding) String() string {
	location := fmt.Sprintf("%s:%d", f.File, f.Line)
	if f.Column > 0 {
		location = fmt.Sprintf("%s:%d", location, f.Column)
	}
	return fmt.Sprintf("%s\t%s\t%s", location, f.Category, f.Message)
}

// Sort orders findings by file, then source position within each file.
func Sort(findings []Finding) {
	sort.SliceStable(findings, func(i, j int) bool {
		if findings[i].File != findings[j].File {
			return findings[i].File < findings[j].File
		}
		if findings[i].Line != findings[j].Line {
			return findings[i].Line < findings[j].Line
		}
		return findings[i].Column < findings[j].Column
	})
}
