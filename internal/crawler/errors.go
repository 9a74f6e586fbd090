package crawler

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrTransport indicates the request did not produce a response.
	// This covers DNS failures, refused connections, malformed URLs and
	// body read errors.
	ErrTransport = errors.New("transport error")

	// ErrTimeout indicates the request exceeded its deadline.
	// Timeout errors also match ErrTransport.
	ErrTimeout = errors.New("request timed out")

	// ErrProtocol indicates the server answered with a non-2xx status.
	ErrProtocol = errors.New("protocol error")
)

// StatusError is returned when the response status is outside the 2xx range.
type StatusError struct {
	// Code is the HTTP status code received.
	Code int
}

// Error returns the status failure message, including the reason phrase
// when the code has one (for example "404 Not Found").
func (e *StatusError) Error() string {
	text := http.StatusText(e.Code)
	if text == "" {
		return fmt.Sprintf("HTTP request failed with status code: %d", e.Code)
	}
	return fmt.Sprintf("HTTP request failed with status code: %d %s", e.Code, text)
}

// Is makes errors.Is(err, ErrProtocol) true for any StatusError.
func (e *StatusError) Is(target error) bool {
	return target == ErrProtocol
}

// IsSuccessStatus reports whether code falls in the 2xx range.
func IsSuccessStatus(code int) bool {
	return code >= 200 && code <= 299
}
