// Package translate implements concurrent subtitle translation through
// HTTP API-based machine translation providers: DeepL and OpenAI-compatible
// chat endpoints.
//
// A job splits the cue list into one unit of work per cue, dispatches the
// units first-in-first-out through a bounded worker pool, and throttles all
// outbound requests with a shared rate limiter so the request rate stays
// independent of the worker count. Transient failures (network errors,
// timeouts, 429, 5xx) are retried with exponential backoff; terminal
// failures (bad credentials, exhausted quota, malformed input) fail the
// unit at once and stop dispatch of not-yet-started units. Results arrive
// in any order and are reassembled by cue index, falling back to the
// source text for units that were not translated.
package translate

import (
	"context"
	"time"

	"github.com/minios-linux/subkit/subtitle"
)

// ---------------------------------------------------------------------------
// Units of work
// ---------------------------------------------------------------------------

// Unit is one cue's translation task, the atomic item scheduled onto the
// worker pool.
type Unit struct {
	// Index is the cue's ordinal index, used to reassemble output order.
	Index int
	// Text is the source text to translate.
	Text string
	// SourceLang and TargetLang are language codes shared by the job.
	SourceLang string
	TargetLang string
}

// UnitResult is the final outcome of one unit.
type UnitResult struct {
	// Index is the cue's ordinal index.
	Index int
	// Text is the translated text. Valid only when Err is nil.
	Text string
	// Err is the terminal error for the unit (a *UnitError), or nil.
	Err error
	// Attempts is how many provider calls were made for this unit.
	Attempts int
}

// UnitsFromCues builds one translation unit per cue, preserving indices.
func UnitsFromCues(cues []subtitle.Cue, srcLang, dstLang string) []Unit {
	units := make([]Unit, len(cues))
	for i, c := range cues {
		units[i] = Unit{
			Index:      c.Index,
			Text:       c.Text,
			SourceLang: srcLang,
			TargetLang: dstLang,
		}
	}
	return units
}

// ---------------------------------------------------------------------------
// External collaborators
// ---------------------------------------------------------------------------

// Client is the translation provider boundary. Implementations must return
// errors that Classify can interpret: *StatusError for HTTP status
// failures, *RetryAfterError for provider-mandated waits, and wrapped
// network errors otherwise.
type Client interface {
	// Name returns the provider display name for logs.
	Name() string
	// Translate translates a single text from srcLang to dstLang.
	Translate(ctx context.Context, text, srcLang, dstLang string) (string, error)
}

// Credentials supplies the provider API key. It is consulted once when a
// job starts; a missing key rejects the job before any unit is dispatched.
type Credentials interface {
	GetAPIKey() (string, bool)
}

// StaticKey is a Credentials implementation carrying a resolved key.
// The empty string reports no key.
type StaticKey string

// GetAPIKey returns the key and whether it is non-empty.
func (k StaticKey) GetAPIKey() (string, bool) {
	return string(k), k != ""
}

// ---------------------------------------------------------------------------
// Job options
// ---------------------------------------------------------------------------

// Options controls how a translation job runs.
type Options struct {
	// Client is the translation provider. Required.
	Client Client
	// Credentials supplies the API key check at job start. A nil value
	// skips the check (local or test clients that need no key).
	Credentials Credentials
	// Workers is the number of parallel workers. Must be at least 1.
	Workers int
	// MaxAttempts is the per-unit attempt bound for transient failures.
	// Default: 3.
	MaxAttempts int
	// RPS is the request-per-second cap shared by all workers. Default: 10.
	RPS float64
	// Burst is the rate limiter burst size. Default: 5.
	Burst int
	// Timeout bounds each provider call. Default: 30s.
	Timeout time.Duration
	// OnProgress is called after every resolved unit with the number of
	// resolved units (succeeded + failed) and the total.
	OnProgress func(done, total int)
	// OnLog emits log messages during translation.
	OnLog func(format string, args ...any)
	// OnError emits error messages during translation.
	OnError func(format string, args ...any)
}

func (o *Options) log(format string, args ...any) {
	if o.OnLog != nil {
		o.OnLog(format, args...)
	}
}

func (o *Options) logError(format string, args ...any) {
	if o.OnError != nil {
		o.OnError(format, args...)
	} else if o.OnLog != nil {
		o.OnLog(format, args...)
	}
}

func (o *Options) progress(done, total int) {
	if o.OnProgress != nil {
		o.OnProgress(done, total)
	}
}

func (o *Options) effectiveMaxAttempts() int {
	if o.MaxAttempts > 0 {
		return o.MaxAttempts
	}
	return 3
}

func (o *Options) effectiveRPS() float64 {
	if o.RPS > 0 {
		return o.RPS
	}
	return 10
}

func (o *Options) effectiveBurst() int {
	if o.Burst > 0 {
		return o.Burst
	}
	return 5
}

func (o *Options) effectiveTimeout() time.Duration {
	if o.Timeout > 0 {
		return o.Timeout
	}
	return 30 * time.Second
}
