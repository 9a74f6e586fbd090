// Package pipeline runs the concurrent fetch-extract-aggregate batch.
//
// Each target becomes one Unit that passes through an ordered list of
// Steps (fetch, extract, aggregate). The Orchestrator launches one unit per
// target at a throttled cadence, caps the number of units in flight, waits
// for every unit to finish and then drains the Aggregator into a
// model.RunReport.
//
// Design decision: A failing or panicking unit never affects its siblings.
// Step errors and recovered panics are converted into model.Failure records
// inside the unit, and the unit always reports success to the errgroup, so
// the barrier observes completion only.
package pipeline
