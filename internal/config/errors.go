package config

import (
	"errors"
	"fmt"
)

// Configuration validation errors.
// These errors are returned by Config.Validate() and can be matched with
// errors.Is().
var (
	// ErrNoTarget is returned when there is nothing to scrape: no URL
	// arguments, no target file, or a target file without any URL.
	ErrNoTarget = errors.New("no target specified: provide URLs or a target file with --targets")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidConcurrency is returned when the concurrency is not positive.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrInvalidThrottle is returned when the launch interval is negative.
	// Use 0 to launch units without delay.
	ErrInvalidThrottle = errors.New("invalid throttle: must be non-negative")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	// Use 0 to keep the default limit.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrConflictingLogLevels is returned when both --verbose and --quiet are set.
	ErrConflictingLogLevels = errors.New("conflicting log levels: --verbose and --quiet cannot be used together")

	// ErrTargetFile is matched by every SourceLoadError.
	ErrTargetFile = errors.New("cannot read target file")

	// ErrConfigNotFound is returned when the configuration file does not exist.
	ErrConfigNotFound = errors.New("configuration file not found")
)

// SourceLoadError is returned when the target list cannot be read.
// It is fatal: no unit is launched.
type SourceLoadError struct {
	// Path is the file that could not be read.
	Path string

	// Err is the underlying I/O error.
	Err error
}

// Error implements error.
func (e *SourceLoadError) Error() string {
	return fmt.Sprintf("%v %s: %v", ErrTargetFile, e.Path, e.Err)
}

// Unwrap returns the underlying I/O error.
func (e *SourceLoadError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrTargetFile) true.
func (e *SourceLoadError) Is(target error) bool {
	return target == ErrTargetFile
}
