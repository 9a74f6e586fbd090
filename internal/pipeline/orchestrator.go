package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sourcegraph/conc/panics"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/nao1215/linkscout/internal/config"
	"github.com/nao1215/linkscout/internal/crawler"
	"github.com/nao1215/linkscout/internal/model"
)

// Orchestrator runs one batch: one unit per target, launched in list order
// at a throttled cadence with a bounded number in flight.
//
// Design decision: Launch cadence and the in-flight cap are separate knobs.
// The rate.Limiter spaces launches, and errgroup.SetLimit caps how many
// units may be running at once regardless of how slow individual targets
// are.
type Orchestrator struct {
	// fetcher performs the HTTP request for every unit.
	fetcher PageFetcher

	// extractor parses fetched bodies.
	extractor *crawler.Extractor

	// concurrency is the maximum number of units in flight.
	concurrency int

	// throttle is the minimum interval between two launches.
	throttle time.Duration

	// logger receives progress and failure lines.
	logger *slog.Logger
}

// OrchestratorOption configures an Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithConcurrency sets the maximum number of units in flight.
// Default is config.DefaultConcurrency if not specified.
func WithConcurrency(n int) OrchestratorOption {
	return func(o *Orchestrator) {
		if n > 0 {
			o.concurrency = n
		}
	}
}

// WithThrottle sets the interval between launches. Zero disables throttling.
func WithThrottle(d time.Duration) OrchestratorOption {
	return func(o *Orchestrator) {
		if d >= 0 {
			o.throttle = d
		}
	}
}

// WithOrchestratorLogger sets a custom logger.
func WithOrchestratorLogger(logger *slog.Logger) OrchestratorOption {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// NewOrchestrator creates an Orchestrator that fetches through fetcher.
func NewOrchestrator(fetcher PageFetcher, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		fetcher:     fetcher,
		extractor:   crawler.NewExtractor(),
		concurrency: config.DefaultConcurrency,
		throttle:    config.DefaultThrottle,
	}

	for _, opt := range opts {
		opt(o)
	}

	if o.logger == nil {
		o.logger = slog.Default()
	}

	return o
}

// RunFile loads the target list at path and runs it.
// A file that cannot be read fails before any unit is launched.
func (o *Orchestrator) RunFile(ctx context.Context, path string) (*model.RunReport, error) {
	targets, err := config.LoadTargets(path)
	if err != nil {
		return nil, err
	}
	return o.Run(ctx, targets)
}

// Run scrapes every target and returns the drained results.
//
// Per-target failures do not make Run fail; they are listed in the report.
// An empty target list completes immediately with an empty report.
// If ctx is cancelled, no further units are launched, in-flight units see
// the cancellation, and the partial report is returned together with the
// context error.
func (o *Orchestrator) Run(ctx context.Context, targets []string) (*model.RunReport, error) {
	report := model.NewRunReport(len(targets))
	if len(targets) == 0 {
		o.logger.Warn("no targets to scrape")
		return report, nil
	}

	aggregator := NewAggregator()
	failures := newFailureLog()
	p := ScrapePipeline(o.fetcher, o.extractor, aggregator, WithLogger(o.logger))
	limiter := newLaunchLimiter(o.throttle)

	o.logger.Info("scrape started",
		"targets", len(targets),
		"concurrency", o.concurrency,
		"throttle", o.throttle,
		"steps", p.StepNames(),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.concurrency)

	launched := 0
	var launchErr error
	for i, target := range targets {
		if err := limiter.Wait(ctx); err != nil {
			launchErr = err
			break
		}
		launched++

		g.Go(func() error {
			o.runUnit(gctx, p, NewUnit(target, i), failures)
			// Units never fail the group.
			return nil
		})
	}

	_ = g.Wait() //nolint:errcheck // units always return nil

	report.Pages = aggregator.Drain()
	report.Failures = failures.drain()
	report.Elapsed = time.Since(report.StartedAt)

	o.logger.Info("scrape complete",
		"targets", len(targets),
		"launched", launched,
		"succeeded", report.Succeeded(),
		"failed", report.Failed(),
		"links", report.LinkCount(),
		"untitled", report.Untitled(),
		"elapsed", report.Elapsed,
	)

	if err := runError(ctx, launchErr); err != nil {
		report.Cancelled = true
		o.logger.Warn("scrape cancelled",
			"launched", launched,
			"targets", len(targets),
			"error", err,
		)
		return report, err
	}
	return report, nil
}

// runUnit executes the pipeline for one unit and records any failure.
// Panics raised by any step are recovered here.
func (o *Orchestrator) runUnit(ctx context.Context, p *Pipeline, unit *Unit, failures *failureLog) {
	o.logger.Debug("unit started",
		"url", unit.Target,
		"index", unit.Index+1,
	)

	var err error
	var catcher panics.Catcher
	catcher.Try(func() {
		err = p.Execute(ctx, unit)
	})

	if recovered := catcher.Recovered(); recovered != nil {
		unit.fail()
		o.logger.Debug("unit panicked",
			"url", unit.Target,
			"stack", string(recovered.Stack),
		)
		o.recordFailure(failures, unit, model.FailurePanic, 0, fmt.Sprintf("panic: %v", recovered.Value))
		return
	}

	if err != nil {
		kind, code := classifyError(err)
		o.recordFailure(failures, unit, kind, code, err.Error())
	}
}

// recordFailure logs one error line and stores the failure.
func (o *Orchestrator) recordFailure(failures *failureLog, unit *Unit, kind model.FailureKind, code int, reason string) {
	attrs := []any{
		"url", unit.Target,
		"kind", kind.String(),
		"reason", reason,
	}
	if code != 0 {
		attrs = append(attrs, "status", code)
	}
	o.logger.Error("scrape failed", attrs...)

	failures.record(model.Failure{
		URL:        unit.Target,
		Kind:       kind,
		StatusCode: code,
		Reason:     reason,
		FailedAt:   time.Now(),
	})
}

// classifyError maps a step error to a failure kind.
func classifyError(err error) (model.FailureKind, int) {
	var statusErr *crawler.StatusError
	if errors.As(err, &statusErr) {
		return model.FailureProtocol, statusErr.Code
	}
	return model.FailureTransport, 0
}

// newLaunchLimiter allows one launch per interval, the first immediately.
func newLaunchLimiter(interval time.Duration) *rate.Limiter {
	if interval <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(interval), 1)
}

// runError reports why a run ended early, if it did.
func runError(ctx context.Context, launchErr error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if launchErr != nil {
		return fmt.Errorf("launch throttle: %w", launchErr)
	}
	return nil
}
