package pipeline

import (
	"fmt"
	"time"

	"github.com/nao1215/linkscout/internal/crawler"
	"github.com/nao1215/linkscout/internal/model"
)

// Unit is the state of one target as it moves through the steps.
// A Unit is owned by a single goroutine and is never shared.
type Unit struct {
	// Target is the URL being scraped, exactly as listed.
	Target string

	// Index is the position of the target in the target list.
	Index int

	// State is the current lifecycle state.
	State model.UnitState

	// Response is set by the fetch step.
	Response *crawler.Response

	// Page is set by the extract step.
	Page *model.ScrapedPage

	// StartedAt is when the unit was launched.
	StartedAt time.Time
}

// NewUnit creates a pending unit for target.
func NewUnit(target string, index int) *Unit {
	return &Unit{
		Target:    target,
		Index:     index,
		State:     model.UnitPending,
		StartedAt: time.Now(),
	}
}

// Transition moves the unit to next.
func (u *Unit) Transition(next model.UnitState) error {
	if !u.State.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, u.State, next)
	}
	u.State = next
	return nil
}

// fail marks the unit failed unless it already reached a terminal state.
func (u *Unit) fail() {
	if !u.State.IsTerminal() {
		u.State = model.UnitFailed
	}
}
