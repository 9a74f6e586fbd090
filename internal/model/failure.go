package model

import "time"

// FailureKind classifies why a unit did not produce a page.
type FailureKind string

const (
	// FailureTransport covers network errors, timeouts and malformed URLs.
	FailureTransport FailureKind = "transport"

	// FailureProtocol covers responses outside the 2xx range.
	FailureProtocol FailureKind = "protocol"

	// FailurePanic covers a unit that panicked. The panic is captured so
	// sibling units and the run itself are unaffected.
	FailurePanic FailureKind = "panic"
)

// String returns the kind as a plain string.
func (k FailureKind) String() string {
	return string(k)
}

// Failure is the outcome of one unit that did not produce a page.
// Failed units never touch the result set.
type Failure struct {
	// URL is the target that failed.
	URL string `json:"url"`

	// Kind classifies the failure.
	Kind FailureKind `json:"kind"`

	// StatusCode is set for protocol failures only.
	StatusCode int `json:"status_code,omitempty"`

	// Reason is the error text.
	Reason string `json:"reason"`

	// FailedAt is when the failure was recorded.
	FailedAt time.Time `json:"failed_at"`
}
