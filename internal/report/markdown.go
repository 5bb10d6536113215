package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/nao1215/markdown"

	"github.com/shopscan/shopscan/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
//  1. Type-safe markdown generation
//  2. Support for tables, lists, and code blocks
//  3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the report in Markdown format.
func (w *MarkdownWriter) Write(report *model.CrawlReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeSummary(md, report)

	for _, d := range report.Domains {
		w.writeDomain(md, d)
	}

	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with run information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.CrawlReport) {
	md.H1("Shopscan Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Started", report.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Duration", report.Duration.Round(0).String()},
			{"Domains", strconv.Itoa(len(report.Domains))},
			{"Products Found", strconv.Itoa(report.TotalProducts())},
			{"Failed Fetches", strconv.Itoa(report.TotalFailures())},
		},
	})
	md.PlainText("")
}

// writeSummary writes the per-domain overview table and a status alert.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, report *model.CrawlReport) {
	md.H2("Domain Summary")
	md.PlainText("")

	rows := make([][]string, len(report.Domains))
	for i, d := range report.Domains {
		rows[i] = []string{
			"`" + d.Domain + "`",
			strconv.Itoa(len(d.ProductURLs)),
			strconv.Itoa(d.PagesFetched),
			strconv.Itoa(d.FailedFetches),
			domainStatus(d),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Domain", "Products", "Pages", "Failures", "Status"},
		Rows:   rows,
	})
	md.PlainText("")

	switch {
	case anyCancelled(report):
		md.Warningf("The run was cancelled before completion; the results above are partial.")
	case report.TotalFailures() > 0:
		md.Note(fmt.Sprintf("%d fetch(es) failed and were skipped; their URLs are excluded from the results.", report.TotalFailures()))
	default:
		md.Tip("All fetches completed successfully.")
	}
	md.PlainText("")
}

// writeDomain writes one domain's product list.
func (w *MarkdownWriter) writeDomain(md *markdown.Markdown, d *model.DomainReport) {
	md.H2(d.Domain)
	md.PlainText("")

	if len(d.ProductURLs) == 0 {
		md.PlainText("No product URLs found.")
		md.PlainText("")
		return
	}

	md.BulletList(d.ProductURLs...)
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [shopscan](https://github.com/shopscan/shopscan)*")
}

// domainStatus returns the status cell text for a domain row.
func domainStatus(d *model.DomainReport) string {
	switch {
	case d.Cancelled:
		return "⚠️ Cancelled (partial)"
	case d.PagesFetched == 0:
		return "❌ Nothing fetched"
	default:
		return "✅ Complete"
	}
}

// anyCancelled reports whether any domain crawl was cut short.
func anyCancelled(report *model.CrawlReport) bool {
	for _, d := range report.Domains {
		if d.Cancelled {
			return true
		}
	}
	return false
}
