package pipeline

import (
	"context"
	"log/slog"
)

// Step defines the interface that all unit steps must implement.
// Steps are executed in sequence, each receiving the unit produced by the
// previous steps.
type Step interface {
	// Do executes the step.
	// A non-nil error ends the unit as failed; later steps do not run.
	Do(ctx context.Context, unit *Unit) error

	// Name returns the step's name for logging purposes.
	Name() string
}

// Pipeline runs an ordered list of steps over a single unit.
// A Pipeline holds no per-unit state and may be shared between goroutines
// once all steps are added.
type Pipeline struct {
	// steps contains the ordered list of steps to execute.
	steps []Step

	// logger is used for structured logging during execution.
	logger *slog.Logger
}

// Option is a function that configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
// If not set, slog.Default() is used.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// New creates a new Pipeline with the given options.
// Steps should be added using AddStep after creation.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps: make([]Step, 0),
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = slog.Default()
	}

	return p
}

// AddStep appends a step to the pipeline.
// Steps are executed in the order they are added.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps to the pipeline.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs all steps over unit in sequence.
// Cancellation is checked before each step; the step itself is expected to
// honor ctx while blocked. The first step error is returned and the unit is
// left in the failed state.
func (p *Pipeline) Execute(ctx context.Context, unit *Unit) error {
	for _, step := range p.steps {
		if err := ctx.Err(); err != nil {
			unit.fail()
			return err
		}

		p.logger.Debug("executing step",
			"step", step.Name(),
			"url", unit.Target,
		)

		if err := step.Do(ctx, unit); err != nil {
			unit.fail()
			p.logger.Debug("step failed",
				"step", step.Name(),
				"url", unit.Target,
				"error", err,
			)
			return err
		}
	}
	return nil
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
