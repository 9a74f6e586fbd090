package report

import (
	"log/slog"

	"github.com/nao1215/linkscout/internal/model"
)

// LogWriter emits one "page title" and one "page links" line per page
// at info level. This is the default output of a run.
//
// Lines follow the order of report.Pages, which is the drained result
// set. That order is not deterministic across runs.
type LogWriter struct {
	logger *slog.Logger
}

// NewLogWriter creates a LogWriter. A nil logger falls back to slog.Default().
func NewLogWriter(logger *slog.Logger) *LogWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogWriter{logger: logger}
}

// Write logs every page in the report. It always returns 0 bytes.
func (w *LogWriter) Write(report *model.RunReport) (int, error) {
	if report == nil {
		return 0, nil
	}
	for _, page := range report.Pages {
		if page == nil {
			continue
		}
		w.logger.Info("page title", "url", page.URL, "title", page.Title)
		w.logger.Info("page links", "url", page.URL, "links", page.Links)
	}
	return 0, nil
}
