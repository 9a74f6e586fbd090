package report

import (
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/linkscout/internal/model"
	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation of tables, details blocks and GitHub alerts. The library
// writes cell text verbatim, so scraped values go through tableCell.
type MarkdownWriter struct {
	baseWriter

	// maxLinks caps the number of links listed per page. Zero lists all.
	maxLinks int
}

// MarkdownWriterOption configures a MarkdownWriter.
type MarkdownWriterOption func(*MarkdownWriter)

// WithMaxLinks limits the links listed in each page's details block.
func WithMaxLinks(n int) MarkdownWriterOption {
	return func(w *MarkdownWriter) {
		if n >= 0 {
			w.maxLinks = n
		}
	}
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer, opts ...MarkdownWriterOption) *MarkdownWriter {
	w := &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the report in Markdown format.
func (w *MarkdownWriter) Write(report *model.RunReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeSummary(md, report)
	w.writePages(md, report)
	w.writeFailures(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with run information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.RunReport) {
	md.H1("linkscout Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Started", report.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Elapsed", report.Elapsed.Round(timeRounding).String()},
			{"Targets", strconv.Itoa(report.Targets)},
			{"Status", statusText(report)},
		},
	})
	md.PlainText("")
}

// writeSummary writes the outcome table, chart and alert.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, report *model.RunReport) {
	md.H2("Summary")
	md.PlainText("")

	byKind := report.FailuresByKind()
	rows := [][]string{
		{"Succeeded", strconv.Itoa(report.Succeeded())},
	}
	for _, kind := range failureKinds {
		rows = append(rows, []string{"Failed (" + kind.String() + ")", strconv.Itoa(byKind[kind])})
	}
	rows = append(rows,
		[]string{"Links", strconv.Itoa(report.LinkCount())},
		[]string{"Untitled pages", strconv.Itoa(report.Untitled())},
		[]string{"**Total targets**", "**" + strconv.Itoa(report.Targets) + "**"},
	)

	md.Table(markdown.TableSet{
		Header: []string{"Outcome", "Count"},
		Rows:   rows,
	})
	md.PlainText("")

	if report.Succeeded()+report.Failed() > 0 {
		w.writePieChart(md, report)
	}

	w.writeAlert(md, report)
}

// writePieChart writes a mermaid pie chart of unit outcomes.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, report *model.RunReport) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Target Outcomes"),
		piechart.WithShowData(true),
	)

	if report.Succeeded() > 0 {
		chart.LabelAndIntValue("Succeeded", uint64(report.Succeeded()))
	}
	byKind := report.FailuresByKind()
	for _, kind := range failureKinds {
		if byKind[kind] > 0 {
			chart.LabelAndIntValue(kind.String(), uint64(byKind[kind]))
		}
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAlert writes an alert describing how the run ended.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, report *model.RunReport) {
	byKind := report.FailuresByKind()
	switch {
	case report.Cancelled:
		md.Warningf("Run was cancelled. %d of %d target(s) produced a result.",
			report.Succeeded()+report.Failed(), report.Targets)
	case byKind[model.FailurePanic] > 0:
		md.Cautionf("%d target(s) panicked during processing.", byKind[model.FailurePanic])
	case report.Failed() > 0:
		md.Note(strconv.Itoa(report.Failed()) + " target(s) could not be scraped.")
	default:
		md.Tip("All targets were scraped successfully.")
	}
	md.PlainText("")
}

// writePages writes a table of pages and a details block of links per page.
func (w *MarkdownWriter) writePages(md *markdown.Markdown, report *model.RunReport) {
	md.H2("Pages")
	md.PlainText("")

	if report.Succeeded() == 0 {
		md.PlainText("No pages scraped.")
		md.PlainText("")
		return
	}

	pages := report.SortedPages()
	rows := make([][]string, len(pages))
	for i, p := range pages {
		rows[i] = []string{
			"`" + tableCell(p.URL) + "`",
			tableCell(truncateString(p.Title, 60)),
			strconv.Itoa(p.StatusCode),
			strconv.Itoa(len(p.Links)),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"URL", "Title", "Status", "Links"},
		Rows:   rows,
	})
	md.PlainText("")

	for _, p := range pages {
		if len(p.Links) == 0 {
			continue
		}
		md.Details(p.URL, w.linkList(p.Links))
	}
	md.PlainText("")
}

// linkList renders links as a bullet list, honoring maxLinks.
func (w *MarkdownWriter) linkList(links []string) string {
	shown := links
	if w.maxLinks > 0 && len(links) > w.maxLinks {
		shown = links[:w.maxLinks]
	}

	inner := markdown.NewMarkdown(io.Discard)
	inner.BulletList(shown...)
	if len(shown) < len(links) {
		inner.PlainTextf("... and %d more", len(links)-len(shown))
	}
	return inner.String()
}

// writeFailures writes a table of failed targets.
func (w *MarkdownWriter) writeFailures(md *markdown.Markdown, report *model.RunReport) {
	md.H2("Failures")
	md.PlainText("")

	if report.Failed() == 0 {
		md.PlainText("No failures.")
		md.PlainText("")
		return
	}

	failures := report.SortedFailures()
	rows := make([][]string, len(failures))
	for i, f := range failures {
		status := "-"
		if f.StatusCode != 0 {
			status = strconv.Itoa(f.StatusCode)
		}
		rows[i] = []string{
			"`" + tableCell(f.URL) + "`",
			f.Kind.String(),
			status,
			tableCell(truncateString(f.Reason, 80)),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"URL", "Kind", "Status", "Reason"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainText("*Report generated by [linkscout](https://github.com/nao1215/linkscout)*")
}

// cellReplacer escapes pipes and flattens line breaks.
var cellReplacer = strings.NewReplacer("|", `\|`, "\r\n", " ", "\r", " ", "\n", " ")

// tableCell makes s safe to place in a single Markdown table cell.
func tableCell(s string) string {
	return cellReplacer.Replace(s)
}

// truncateString truncates a string to maxLen runes with ellipsis.
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
