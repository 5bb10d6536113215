package report

import (
	"encoding/json"
	"io"

	"github.com/shopscan/shopscan/internal/model"
)

// JSONWriter outputs reports in JSON format.
// This format is designed for tool integration and programmatic processing.
//
// Design decision: We use standard encoding/json rather than a third-party
// JSON library because:
//  1. It's part of the standard library (no extra dependencies)
//  2. It's sufficient for our needs
//  3. It provides consistent behavior across Go versions
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	// When false, output is compact (no extra whitespace).
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string (typically "  " or "\t").
	indentString string

	// productsOnly reduces the output to the bare domain -> product URLs
	// mapping, with no statistics or metadata.
	productsOnly bool

	// version is included in full output when set.
	version string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
// The prefix is prepended to each line, and indent is used for each level.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with default indentation.
// This is a convenience wrapper for WithIndent("", "  ").
func WithPrettyPrint() JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = ""
		w.indentString = "  "
	}
}

// WithProductsOnly reduces the output to a domain -> product URLs mapping.
// Every configured domain appears as a key, with an empty list when the
// crawl found nothing, so consumers can iterate the result without
// checking which domains succeeded.
func WithProductsOnly() JSONWriterOption {
	return func(w *JSONWriter) {
		w.productsOnly = true
	}
}

// WithVersion includes the given version string in full report output.
func WithVersion(version string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.version = version
	}
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// JSONReport wraps the full report with output metadata.
//
// Design decision: We wrap the report rather than adding fields to
// CrawlReport because this allows output-specific fields without polluting
// the core data structure.
type JSONReport struct {
	// Version is the shopscan version that generated this report.
	Version string `json:"version,omitempty"`

	// Report is the full crawl report.
	Report *model.CrawlReport `json:"report"`

	// Products is the domain -> product URLs mapping for quick access.
	Products map[string][]string `json:"products"`
}

// Write outputs the report in JSON format.
func (w *JSONWriter) Write(report *model.CrawlReport) (int, error) {
	if w.productsOnly {
		return w.writeJSON(report.ProductMap())
	}

	return w.writeJSON(&JSONReport{
		Version:  w.version,
		Report:   report,
		Products: report.ProductMap(),
	})
}

// writeJSON marshals the given value to JSON and writes it to the output.
func (w *JSONWriter) writeJSON(v any) (int, error) {
	var data []byte
	var err error

	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}

	if err != nil {
		return 0, err
	}

	// Add trailing newline for better terminal output
	data = append(data, '\n')

	return w.output.Write(data)
}
