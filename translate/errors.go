package translate

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"
)

// ---------------------------------------------------------------------------
// Sentinel errors
// ---------------------------------------------------------------------------

// ErrInvalidInput is the umbrella for job inputs rejected at Start.
var ErrInvalidInput = errors.New("invalid input")

// ErrNoCues rejects a job with an empty cue list.
var ErrNoCues = fmt.Errorf("%w: no cues to translate", ErrInvalidInput)

// ErrBadWorkerCount rejects a worker count below one.
var ErrBadWorkerCount = fmt.Errorf("%w: worker count must be at least 1", ErrInvalidInput)

// ErrNoClient rejects a job without a translation client.
var ErrNoClient = fmt.Errorf("%w: no translation client", ErrInvalidInput)

// ErrMissingCredential rejects a job whose credential source has no API key.
var ErrMissingCredential = errors.New("missing API credential")

// ErrCancelled marks units left untranslated because the job was cancelled.
var ErrCancelled = errors.New("job cancelled")

// ErrStopped marks units left untranslated because a terminal failure
// stopped dispatch.
var ErrStopped = errors.New("dispatch stopped after terminal failure")

// ---------------------------------------------------------------------------
// Failure classification
// ---------------------------------------------------------------------------

// Class categorizes a unit failure and decides the retry behavior.
type Class int

const (
	// ClassTransient failures (network errors, timeouts, rate limits,
	// provider overload) are retried up to the attempt bound.
	ClassTransient Class = iota
	// ClassTerminal failures (malformed input, exhausted quota) fail the
	// unit at once and stop dispatch of not-yet-started units.
	ClassTerminal
	// ClassInvalidCredentials failures (401/403) behave like terminal
	// failures but name the credential problem for the user.
	ClassInvalidCredentials
	// ClassSkipped marks units that never got a final provider answer:
	// cancelled mid-wait or never dispatched.
	ClassSkipped
)

// String returns the class name for logs.
func (c Class) String() string {
	switch c {
	case ClassTransient:
		return "transient"
	case ClassTerminal:
		return "terminal"
	case ClassInvalidCredentials:
		return "invalid credentials"
	case ClassSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Retryable reports whether a failure of this class may be retried.
func (c Class) Retryable() bool {
	return c == ClassTransient
}

// StopsJob reports whether a failure of this class stops dispatch of
// not-yet-started units. In-flight units still drain normally.
func (c Class) StopsJob() bool {
	return c == ClassTerminal || c == ClassInvalidCredentials
}

// Classify maps a provider error to a failure class. Errors that carry no
// recognizable signal are treated as terminal so an unknown failure mode
// never turns into a silent retry loop.
func Classify(err error) Class {
	if errors.Is(err, context.Canceled) {
		return ClassSkipped
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ClassTransient
	}

	var ra *RetryAfterError
	if errors.As(err, &ra) {
		return ClassTransient
	}

	var se *StatusError
	if errors.As(err, &se) {
		switch {
		case se.Code == 401 || se.Code == 403:
			return ClassInvalidCredentials
		case se.Code == 429:
			return ClassTransient
		case se.Code >= 500:
			return ClassTransient
		default:
			return ClassTerminal
		}
	}

	var ne net.Error
	if errors.As(err, &ne) {
		return ClassTransient
	}

	return ClassTerminal
}

// ---------------------------------------------------------------------------
// Error types
// ---------------------------------------------------------------------------

// UnitError is the terminal error recorded for a failed unit.
type UnitError struct {
	// Index is the cue's ordinal index.
	Index int
	// Class is the failure classification.
	Class Class
	// Attempts is how many provider calls were made.
	Attempts int
	// Err is the underlying error from the last attempt.
	Err error
}

func (e *UnitError) Error() string {
	if e.Attempts == 0 {
		return fmt.Sprintf("unit %d %s: %v", e.Index, e.Class, e.Err)
	}
	return fmt.Sprintf("unit %d %s after %d attempt(s): %v", e.Index, e.Class, e.Attempts, e.Err)
}

func (e *UnitError) Unwrap() error {
	return e.Err
}

// StatusError reports a non-success HTTP status from the provider.
type StatusError struct {
	// Code is the HTTP status code.
	Code int
	// Body is the (truncated) response body for diagnostics.
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("provider returned status %d", e.Code)
	}
	return fmt.Sprintf("provider returned status %d: %s", e.Code, e.Body)
}

// RetryAfterError reports a provider-mandated wait (HTTP 429). The whole
// job pauses for Delay before the next request.
type RetryAfterError struct {
	// Delay is how long the provider asked to wait.
	Delay time.Duration
}

func (e *RetryAfterError) Error() string {
	return fmt.Sprintf("rate limited, retry after %s", e.Delay)
}

// AssemblyError reports a structurally incomplete result set: cue indices
// with no recorded result. It signals a controller bug, not a normal
// runtime condition.
type AssemblyError struct {
	// Missing are the cue indices without a result.
	Missing []int
}

func (e *AssemblyError) Error() string {
	return fmt.Sprintf("assembly incomplete: no result for %d cue(s)", len(e.Missing))
}
