package model

import (
	"errors"
	"fmt"
	"time"
)

// ErrMissingCredentials is returned by adapters whose API keys are not configured.
var ErrMissingCredentials = errors.New("api credentials not configured")

// HTTPError wraps an upstream HTTP status code.
type HTTPError struct {
	StatusCode int
	RetryAfter time.Duration // from Retry-After header, zero if absent
	Err        error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("HTTP %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

// AggregationError is a fault in the aggregation pipeline itself (for example
// the persisted store failing). It is the only error surfaced to callers as a
// failed request.
type AggregationError struct {
	Op  string
	Err error
}

func (e *AggregationError) Error() string {
	return fmt.Sprintf("aggregation %s: %v", e.Op, e.Err)
}

func (e *AggregationError) Unwrap() error {
	return e.Err
}

// ParamError reports a request parameter that could not be parsed.
type ParamError struct {
	Param string
	Err   error
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Param, e.Err)
}

func (e *ParamError) Unwrap() error {
	return e.Err
}
