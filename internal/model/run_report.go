package model

import (
	"sort"
	"time"
)

// RunReport is the result of one batch run.
// Pages holds the drained result set in completion order; report writers
// that need a stable order use SortedPages.
type RunReport struct {
	// Targets is the number of targets that were launched.
	Targets int `json:"targets"`

	// Pages contains one entry per successful unit.
	Pages []*ScrapedPage `json:"pages"`

	// Failures contains one entry per failed unit.
	Failures []Failure `json:"failures"`

	// StartedAt is when the first unit was launched.
	StartedAt time.Time `json:"started_at"`

	// Elapsed is the total wall time of the run.
	Elapsed time.Duration `json:"elapsed"`

	// Cancelled is true when the run stopped before every target launched.
	Cancelled bool `json:"cancelled,omitempty"`
}

// NewRunReport creates an empty report for the given number of targets.
func NewRunReport(targets int) *RunReport {
	return &RunReport{
		Targets:   targets,
		Pages:     make([]*ScrapedPage, 0),
		Failures:  make([]Failure, 0),
		StartedAt: time.Now(),
	}
}

// Succeeded returns the number of pages in the result set.
func (r *RunReport) Succeeded() int {
	return len(r.Pages)
}

// Failed returns the number of failed units.
func (r *RunReport) Failed() int {
	return len(r.Failures)
}

// LinkCount returns the total number of links across all pages.
func (r *RunReport) LinkCount() int {
	total := 0
	for _, p := range r.Pages {
		total += len(p.Links)
	}
	return total
}

// Untitled returns the number of pages without a <title> element.
func (r *RunReport) Untitled() int {
	n := 0
	for _, p := range r.Pages {
		if !p.HasTitle() {
			n++
		}
	}
	return n
}

// FailuresByKind counts failures per kind.
func (r *RunReport) FailuresByKind() map[FailureKind]int {
	counts := make(map[FailureKind]int)
	for _, f := range r.Failures {
		counts[f.Kind]++
	}
	return counts
}

// SortedPages returns a copy of Pages ordered by URL.
// Pages with the same URL keep their relative order.
func (r *RunReport) SortedPages() []*ScrapedPage {
	pages := make([]*ScrapedPage, len(r.Pages))
	copy(pages, r.Pages)
	sort.SliceStable(pages, func(i, j int) bool {
		return pages[i].URL < pages[j].URL
	})
	return pages
}

// SortedFailures returns a copy of Failures ordered by URL.
func (r *RunReport) SortedFailures() []Failure {
	failures := make([]Failure, len(r.Failures))
	copy(failures, r.Failures)
	sort.SliceStable(failures, func(i, j int) bool {
		return failures[i].URL < failures[j].URL
	})
	return failures
}
