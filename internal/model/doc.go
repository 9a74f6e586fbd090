// Package model defines the core data structures used throughout linkscout.
//
// This package contains the following main types:
//   - ScrapedPage: The outcome of one successful fetch-and-extract unit
//   - Failure: The outcome of one failed unit, with its FailureKind
//   - UnitState: The lifecycle state of a single target
//   - RunReport: The drained result set of one batch run
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. The crawler, pipeline and report packages all need these
// types, so centralizing them prevents import cycles.
//
// The models are designed to be serializable to JSON for report output.
package model
