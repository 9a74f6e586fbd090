package model

import "testing"

// TestUnitStateTransitions tests the allowed unit lifecycle transitions.
func TestUnitStateTransitions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		from UnitState
		to   UnitState
		want bool
	}{
		{UnitPending, UnitFetching, true},
		{UnitPending, UnitAggregated, false},
		{UnitFetching, UnitExtracting, true},
		{UnitFetching, UnitFailed, true},
		{UnitFetching, UnitAggregated, false},
		{UnitExtracting, UnitAggregated, true},
		{UnitExtracting, UnitFailed, true},
		{UnitAggregated, UnitFailed, false},
		{UnitFailed, UnitFetching, false},
	}

	for _, tt := range tests {
		t.Run(tt.from.String()+"->"+tt.to.String(), func(t *testing.T) {
			t.Parallel()

			if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
				t.Errorf("CanTransitionTo() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestUnitStateIsTerminal tests terminal state detection.
func TestUnitStateIsTerminal(t *testing.T) {
	t.Parallel()

	terminal := map[UnitState]bool{
		UnitPending:    false,
		UnitFetching:   false,
		UnitExtracting: false,
		UnitAggregated: true,
		UnitFailed:     true,
	}
	for state, want := range terminal {
		if got := state.IsTerminal(); got != want {
			t.Errorf("%s.IsTerminal() = %v, want %v", state, got, want)
		}
	}

	if UnitState(99).String() != "unknown" {
		t.Errorf("expected unknown, got %q", UnitState(99).String())
	}
}
