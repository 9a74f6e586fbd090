// Package report turns a RunReport into output.
//
// Writers:
//   - LogWriter: "page title" and "page links" lines through slog (the default output)
//   - SimpleWriter: human-readable text summary
//   - JSONWriter / FullJSONWriter: structured JSON for tool integration
//   - MarkdownWriter: Markdown with tables and a mermaid outcome chart
//
// All writers implement Writer and can be combined with MultiWriter.
// Every format except LogWriter sorts pages and failures by URL.
package report
