package pipeline

import "errors"

var (
	// ErrAggregatorDrained is returned by Append after Drain was called.
	ErrAggregatorDrained = errors.New("aggregator already drained")

	// ErrNilPage is returned when a nil page is appended.
	ErrNilPage = errors.New("nil page")

	// ErrInvalidTransition is returned when a unit moves to a state its
	// current state does not allow.
	ErrInvalidTransition = errors.New("invalid unit state transition")

	// ErrNoResponse is returned when the extract step runs before a
	// successful fetch.
	ErrNoResponse = errors.New("no response to extract")

	// ErrNoPage is returned when the aggregate step runs before extraction.
	ErrNoPage = errors.New("no page to aggregate")
)
