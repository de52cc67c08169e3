package reservation

import (
	"fmt"
	"strings"
)

// TransportError is a network or HTTP-layer failure: connection errors,
// timeouts, or an unexpected status code. It says nothing about whether the
// credentials or the request were semantically valid.
type TransportError struct {
	Op     string
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: unexpected status %d", e.Op, e.Status)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ParseError means an expected HTML token or response fragment was missing.
// Fatal for the attempt that hit it; never retried in place.
type ParseError struct {
	What string
}

func (e *ParseError) Error() string { return fmt.Sprintf("missing %s in response", e.What) }

// AuthError is a failure during the login step. The upstream site gives no
// direct signal for bad credentials, so an AuthError only ever reflects a
// transport-level problem; a wrong secret usually surfaces downstream as a
// StageError or ConfirmError instead.
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string { return fmt.Sprintf("authenticate: %v", e.Err) }
func (e *AuthError) Unwrap() error { return e.Err }

// StageError is a failure to place the provisional hold.
type StageError struct {
	Err error
}

func (e *StageError) Error() string { return fmt.Sprintf("stage: %v", e.Err) }
func (e *StageError) Unwrap() error { return e.Err }

// ConfirmError is a failure in the confirm sub-protocol, including the case
// where every request returned 200 but the final page lacked the success
// fragment. Body carries a snippet of the last response for diagnostics.
type ConfirmError struct {
	Body string
	Err  error
}

func (e *ConfirmError) Error() string { return fmt.Sprintf("confirm: %v", e.Err) }
func (e *ConfirmError) Unwrap() error { return e.Err }

// AttemptFailure records why one identity's booking flow did not succeed.
type AttemptFailure struct {
	Username string
	Err      error
}

// AttemptLog is the per-identity failure record, in the order attempted.
type AttemptLog []AttemptFailure

// ExhaustedError means every configured identity was tried and none
// produced a confirmed reservation.
type ExhaustedError struct {
	Attempts AttemptLog
}

func (e *ExhaustedError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "all %d identities failed", len(e.Attempts))
	for _, a := range e.Attempts {
		fmt.Fprintf(&b, "; %s: %v", a.Username, a.Err)
	}
	return b.String()
}
