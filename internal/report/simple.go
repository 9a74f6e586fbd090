package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/linkscout/internal/model"
)

// SimpleWriter outputs human-readable text reports.
// This format is designed for terminal display and plain files.
// Pages and failures are sorted by URL so two runs over the same targets
// produce comparable output.
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether sections with no entries are shown.
	showEmpty bool

	// verbose lists every link of every page.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables listing every extracted link.
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
func (w *SimpleWriter) Write(report *model.RunReport) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	w.writeSummary(&sb, report)
	w.writePages(&sb, report)
	w.writeFailures(&sb, report)
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// writeSection writes a section title between two rules.
func writeSection(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")
}

// writeHeader writes the report header with run information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.RunReport) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                         LINKSCOUT REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	fmt.Fprintf(sb, "Started:        %s\n", report.StartedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(sb, "Elapsed:        %s\n", report.Elapsed.Round(timeRounding))
	fmt.Fprintf(sb, "Status:         %s\n", statusText(report))
	sb.WriteString("\n")
}

// writeSummary writes the outcome counters.
func (w *SimpleWriter) writeSummary(sb *strings.Builder, report *model.RunReport) {
	writeSection(sb, "SUMMARY")

	byKind := report.FailuresByKind()
	fmt.Fprintf(sb, "  TARGETS:    %d\n", report.Targets)
	fmt.Fprintf(sb, "  SUCCEEDED:  %d\n", report.Succeeded())
	fmt.Fprintf(sb, "  FAILED:     %d\n", report.Failed())
	for _, kind := range failureKinds {
		fmt.Fprintf(sb, "    %-9s %d\n", kind.String()+":", byKind[kind])
	}
	fmt.Fprintf(sb, "  LINKS:      %d\n", report.LinkCount())
	fmt.Fprintf(sb, "  UNTITLED:   %d\n", report.Untitled())
	sb.WriteString("\n")
}

// writePages writes one entry per page.
func (w *SimpleWriter) writePages(sb *strings.Builder, report *model.RunReport) {
	if report.Succeeded() == 0 && !w.showEmpty {
		return
	}

	writeSection(sb, "PAGES")

	if report.Succeeded() == 0 {
		sb.WriteString("  No pages scraped\n\n")
		return
	}

	for _, page := range report.SortedPages() {
		fmt.Fprintf(sb, "  [+] %s\n", page.URL)
		fmt.Fprintf(sb, "      Title: %s\n", page.Title)
		fmt.Fprintf(sb, "      Links: %d\n", len(page.Links))
		if w.verbose {
			for _, link := range page.Links {
				fmt.Fprintf(sb, "        - %s\n", link)
			}
			if page.Hash != "" {
				fmt.Fprintf(sb, "      Hash:  %s\n", page.Hash)
			}
		}
	}
	sb.WriteString("\n")
}

// writeFailures writes one entry per failed target.
func (w *SimpleWriter) writeFailures(sb *strings.Builder, report *model.RunReport) {
	if report.Failed() == 0 && !w.showEmpty {
		return
	}

	writeSection(sb, "FAILURES")

	if report.Failed() == 0 {
		sb.WriteString("  No failures\n\n")
		return
	}

	for _, f := range report.SortedFailures() {
		fmt.Fprintf(sb, "  [%s] %s\n", failureIndicator(f.Kind), f.URL)
		fmt.Fprintf(sb, "      Reason: %s\n", f.Reason)
	}
	sb.WriteString("\n")
}

// failureIndicator returns a short marker for the failure kind.
func failureIndicator(kind model.FailureKind) string {
	switch kind {
	case model.FailureProtocol:
		return "!"
	case model.FailureTransport:
		return "!!"
	case model.FailurePanic:
		return "!!!"
	default:
		return "?"
	}
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by linkscout\n")
	sb.WriteString("https://github.com/nao1215/linkscout\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}
