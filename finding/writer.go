package finding

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Writer renders a batch of findings to an output stream.
type Writer interface {
	Write(findings []Finding) error
}

// TextWriter emits the newline-joined tab-separated form. A batch with zero
// findings produces no output at all.
type TextWriter struct {
	writer io.Writer
}

func NewTextWriter(w io.Writer) *TextWriter {
	return &TextWriter{writer: w}
}

func (w *TextWriter) Write(findings []Finding) error {
	if len(findings) == 0 {
		return nil
	}

	lines := make([]string, 0, len(findings))
	for _, f := range findings {
		lines = append(lines, f.String())
	}

	if _, err := fmt.Fprintln(w.writer, strings.Join(lines, "\n")); err != nil {
		return fmt.Errorf("failed to write findings: %w", err)
	}
	return nil
}

// JSONWriter emits findings as an indented JSON array. An empty batch emits
// an empty array so consumers always receive valid JSON.
type JSONWriter struct {
	writer io.Writer
}

func NewJSONWriter(w io.Writer) *JSONWriter {
	return &JSONWriter{writer: w}
}

func (w *JSONWriter) Write(findings []Finding) error {
	if findings == nil {
		findings = []Finding{}
	}

	enc := json.NewEncoder(w.writer)
	enc.SetIndent("", "  ")
	if err := enc.Encode(findings); err != nil {
		return fmt.Errorf("failed to encode findings: %w", err)
	}
	return nil
}
