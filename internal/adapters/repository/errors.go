package repository

import "errors"

// Sentinel kinds for pick store errors.
var (
	// ErrUnavailable marks connection or timeout failures against the
	// document store. Not locally recoverable; callers surface it as a
	// retryable failure rather than fabricating an empty result.
	ErrUnavailable = errors.New("pick store unavailable")
)
