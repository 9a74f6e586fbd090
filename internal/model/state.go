package model

// UnitState is the lifecycle state of a single target.
//
// The only transitions are:
//
//	pending -> fetching -> extracting -> aggregated
//	pending -> fetching -> failed
//	fetching/extracting -> failed (panic)
//
// Failed and aggregated are terminal.
type UnitState int

const (
	// UnitPending means the unit has not been launched yet.
	UnitPending UnitState = iota
	// UnitFetching means the HTTP request is in flight.
	UnitFetching
	// UnitExtracting means the body is being parsed.
	UnitExtracting
	// UnitAggregated means the page was handed to the aggregator.
	UnitAggregated
	// UnitFailed means the unit recorded a failure.
	UnitFailed
)

// String returns a human-readable name for the state.
func (s UnitState) String() string {
	switch s {
	case UnitPending:
		return "pending"
	case UnitFetching:
		return "fetching"
	case UnitExtracting:
		return "extracting"
	case UnitAggregated:
		return "aggregated"
	case UnitFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// IsTerminal reports whether no further transition is possible.
func (s UnitState) IsTerminal() bool {
	return s == UnitAggregated || s == UnitFailed
}

// CanTransitionTo reports whether moving from s to next is allowed.
func (s UnitState) CanTransitionTo(next UnitState) bool {
	switch s {
	case UnitPending:
		return next == UnitFetching
	case UnitFetching:
		return next == UnitExtracting || next == UnitFailed
	case UnitExtracting:
		return next == UnitAggregated || next == UnitFailed
	default:
		return false
	}
}
