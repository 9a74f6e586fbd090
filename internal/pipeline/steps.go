package pipeline

import (
	"context"
	"time"

	"github.com/nao1215/linkscout/internal/crawler"
	"github.com/nao1215/linkscout/internal/model"
)

// PageFetcher retrieves the raw response for a target.
// *crawler.Fetcher is the production implementation.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (*crawler.Response, error)
}

// FetchStep performs the HTTP request for a unit.
type FetchStep struct {
	fetcher PageFetcher
}

// NewFetchStep creates a fetch step.
func NewFetchStep(fetcher PageFetcher) *FetchStep {
	return &FetchStep{fetcher: fetcher}
}

// Name returns the step name.
func (s *FetchStep) Name() string {
	return "fetch"
}

// Do fetches the unit's target.
func (s *FetchStep) Do(ctx context.Context, unit *Unit) error {
	if err := unit.Transition(model.UnitFetching); err != nil {
		return err
	}
	resp, err := s.fetcher.Fetch(ctx, unit.Target)
	if err != nil {
		return err
	}
	unit.Response = resp
	return nil
}

// ExtractStep parses the fetched body into a page.
type ExtractStep struct {
	extractor *crawler.Extractor
}

// NewExtractStep creates an extract step.
// A nil extractor is replaced with crawler.NewExtractor().
func NewExtractStep(extractor *crawler.Extractor) *ExtractStep {
	if extractor == nil {
		extractor = crawler.NewExtractor()
	}
	return &ExtractStep{extractor: extractor}
}

// Name returns the step name.
func (s *ExtractStep) Name() string {
	return "extract"
}

// Do extracts the page and fills in response metadata.
func (s *ExtractStep) Do(_ context.Context, unit *Unit) error {
	if unit.Response == nil {
		return ErrNoResponse
	}
	if err := unit.Transition(model.UnitExtracting); err != nil {
		return err
	}

	page := s.extractor.Extract(unit.Target, unit.Response.Body)
	page.StatusCode = unit.Response.StatusCode
	page.ContentType = unit.Response.ContentType
	page.FetchedAt = time.Now()
	page.Elapsed = time.Since(unit.StartedAt)

	unit.Page = page
	// The body is no longer needed once extracted.
	unit.Response.Body = nil
	return nil
}

// AggregateStep hands the finished page to the shared aggregator.
type AggregateStep struct {
	aggregator *Aggregator
}

// NewAggregateStep creates an aggregate step writing to aggregator.
func NewAggregateStep(aggregator *Aggregator) *AggregateStep {
	return &AggregateStep{aggregator: aggregator}
}

// Name returns the step name.
func (s *AggregateStep) Name() string {
	return "aggregate"
}

// Do appends the unit's page exactly once.
func (s *AggregateStep) Do(_ context.Context, unit *Unit) error {
	if unit.Page == nil {
		return ErrNoPage
	}
	if err := s.aggregator.Append(unit.Page); err != nil {
		return err
	}
	return unit.Transition(model.UnitAggregated)
}

// ScrapePipeline builds the fetch, extract and aggregate pipeline.
func ScrapePipeline(fetcher PageFetcher, extractor *crawler.Extractor, aggregator *Aggregator, opts ...Option) *Pipeline {
	p := New(opts...)
	p.AddSteps(
		NewFetchStep(fetcher),
		NewExtractStep(extractor),
		NewAggregateStep(aggregator),
	)
	return p
}
