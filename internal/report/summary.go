package report

import (
	"time"

	"github.com/nao1215/linkscout/internal/model"
)

// timeRounding is the precision used when printing durations.
const timeRounding = time.Millisecond

// failureKinds lists every failure kind in display order.
var failureKinds = []model.FailureKind{
	model.FailureProtocol,
	model.FailureTransport,
	model.FailurePanic,
}

// Summary holds the counters shown at the top of every report format.
type Summary struct {
	Targets   int            `json:"targets"`
	Succeeded int            `json:"succeeded"`
	Failed    int            `json:"failed"`
	Links     int            `json:"links"`
	Untitled  int            `json:"untitled"`
	ByKind    map[string]int `json:"failures_by_kind"`
	Cancelled bool           `json:"cancelled"`
}

// NewSummary computes the counters for report.
func NewSummary(report *model.RunReport) *Summary {
	byKind := make(map[string]int, len(failureKinds))
	for kind, n := range report.FailuresByKind() {
		byKind[kind.String()] = n
	}
	return &Summary{
		Targets:   report.Targets,
		Succeeded: report.Succeeded(),
		Failed:    report.Failed(),
		Links:     report.LinkCount(),
		Untitled:  report.Untitled(),
		ByKind:    byKind,
		Cancelled: report.Cancelled,
	}
}

// statusText describes how the run ended.
func statusText(report *model.RunReport) string {
	switch {
	case report.Cancelled:
		return "CANCELLED (partial results)"
	case report.Targets > 0 && report.Failed() == report.Targets:
		return "All targets failed"
	case report.Failed() > 0:
		return "Complete with failures"
	default:
		return "Complete"
	}
}
