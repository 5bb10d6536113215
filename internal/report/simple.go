package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/shopscan/shopscan/internal/model"
)

// SimpleWriter outputs human-readable text reports.
// This format is designed for terminal display with clear section
// formatting.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
//  1. It works in all terminals without compatibility issues
//  2. It's easier to pipe to files or other tools
//  3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether domains with no products are listed in full.
	showEmpty bool

	// verbose enables additional detail in the output.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show sections for domains that
// yielded no products.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output with per-domain fetch statistics.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the report in human-readable format.
func (w *SimpleWriter) Write(report *model.CrawlReport) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)

	for _, d := range report.Domains {
		w.writeDomain(&sb, d)
	}

	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the report header with run information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.CrawlReport) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                         SHOPSCAN REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Started:        %s\n", report.StartedAt.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("Duration:       %s\n", report.Duration))
	sb.WriteString(fmt.Sprintf("Domains:        %d\n", len(report.Domains)))
	sb.WriteString(fmt.Sprintf("Products Found: %d\n", report.TotalProducts()))

	if failures := report.TotalFailures(); failures > 0 {
		sb.WriteString(fmt.Sprintf("Failed Fetches: %d\n", failures))
	}

	sb.WriteString("\n")
}

// writeDomain writes one domain's section.
func (w *SimpleWriter) writeDomain(sb *strings.Builder, d *model.DomainReport) {
	if len(d.ProductURLs) == 0 && !w.showEmpty {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(strings.ToUpper(d.Domain))
	if d.Cancelled {
		sb.WriteString("  (CANCELLED - partial results)")
	}
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if w.verbose {
		sb.WriteString(fmt.Sprintf("  Pages fetched: %d\n", d.PagesFetched))
		sb.WriteString(fmt.Sprintf("  Failed:        %d\n", d.FailedFetches))
		sb.WriteString(fmt.Sprintf("  Skipped links: %d\n", d.SkippedLinks))
		sb.WriteString(fmt.Sprintf("  Duration:      %s\n", d.Duration))
		sb.WriteString("\n")
	}

	if len(d.ProductURLs) == 0 {
		sb.WriteString("  No product URLs found\n")
	} else {
		for _, u := range d.ProductURLs {
			sb.WriteString(fmt.Sprintf("  [+] %s\n", u))
		}
	}
	sb.WriteString("\n")
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by shopscan\n")
	sb.WriteString("https://github.com/shopscan/shopscan\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}
