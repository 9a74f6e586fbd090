package pipeline

import (
	"sync"

	"github.com/nao1215/linkscout/internal/model"
)

// Aggregator collects pages from concurrent units.
//
// Appends are serialized by a mutex held only for the append itself.
// Drain is one-shot: it hands the collected pages to the caller, after
// which Append fails with ErrAggregatorDrained and Drain returns nil.
// No ordering is guaranteed among pages.
type Aggregator struct {
	mu      sync.Mutex
	pages   []*model.ScrapedPage
	drained bool
}

// NewAggregator creates an empty Aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{
		pages: make([]*model.ScrapedPage, 0),
	}
}

// Append adds page to the result set.
func (a *Aggregator) Append(page *model.ScrapedPage) error {
	if page == nil {
		return ErrNilPage
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.drained {
		return ErrAggregatorDrained
	}
	a.pages = append(a.pages, page)
	return nil
}

// Drain returns every appended page and closes the aggregator.
// It must only be called once all producers have finished.
func (a *Aggregator) Drain() []*model.ScrapedPage {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.drained {
		return nil
	}
	a.drained = true
	pages := a.pages
	a.pages = nil
	return pages
}

// Len returns the number of pages appended so far.
func (a *Aggregator) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.pages)
}

// failureLog collects failures from concurrent units with the same locking
// discipline as Aggregator.
type failureLog struct {
	mu       sync.Mutex
	failures []model.Failure
}

func newFailureLog() *failureLog {
	return &failureLog{failures: make([]model.Failure, 0)}
}

func (l *failureLog) record(f model.Failure) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.failures = append(l.failures, f)
}

func (l *failureLog) drain() []model.Failure {
	l.mu.Lock()
	defer l.mu.Unlock()
	failures := l.failures
	l.failures = make([]model.Failure, 0)
	return failures
}
