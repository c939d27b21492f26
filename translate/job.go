package translate

import (
	"context"
	"errors"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc/pool"

	"github.com/minios-linux/subkit/subtitle"
)

// ---------------------------------------------------------------------------
// Job state
// ---------------------------------------------------------------------------

// State is the lifecycle state of a translation job.
type State int32

const (
	// StatePending: job constructed, no unit dispatched yet.
	StatePending State = iota
	// StateRunning: units are being dispatched and resolved.
	StateRunning
	// StateCancelling: cancel requested; no new dispatch, in-flight
	// units drain to their own completion.
	StateCancelling
	// StateCompleted: every unit has a final result and reassembly
	// succeeded. Completed does not imply every unit was translated —
	// the Summary carries the per-unit counts.
	StateCompleted
	// StateFailed: reassembly could not proceed.
	StateFailed
)

// String returns the state name for logs.
func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateRunning:
		return "running"
	case StateCancelling:
		return "cancelling"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// IsTerminal reports whether the job has reached a final state.
func (s State) IsTerminal() bool {
	return s == StateCompleted || s == StateFailed
}

// ---------------------------------------------------------------------------
// Job
// ---------------------------------------------------------------------------

// Job is one translation run. Start returns it as the handle for
// cancellation and observation; all exported methods are safe for
// concurrent use.
type Job struct {
	id    string
	cues  []subtitle.Cue
	units []Unit
	opts  Options

	// callCtx is the caller's context: it bounds provider calls but is
	// not touched by Cancel, so cancelling never interrupts a call
	// already in progress.
	callCtx context.Context
	// waitCtx is cancelled by Cancel (and by the caller's context). All
	// suspension points between calls — permit waits, pause waits, retry
	// backoff — select on it.
	waitCtx   context.Context
	cancelFn  context.CancelFunc
	limiter    *limiter
	stopFlag   atomic.Bool // terminal failure seen, stop dispatching
	stopLogged atomic.Bool
	cancelled  atomic.Bool

	mu        sync.Mutex
	state     State
	succeeded int
	failed    int
	skipped   int
	results   map[int]UnitResult
	output    []subtitle.Cue
	summary   *Summary

	doneCh chan struct{}
}

// Start validates the inputs, builds one unit per cue, and begins
// dispatching through the worker pool. It returns as soon as the job is
// running; observe completion through Wait or Done.
//
// Start fails with ErrInvalidInput (wrapped) for an empty cue list, a
// worker count below one, or a missing client, and with
// ErrMissingCredential when the credential source reports no API key.
// ctx bounds the whole job: cancelling it aborts waits and in-flight
// calls. Use Cancel for the graceful stop that drains in-flight units.
func Start(ctx context.Context, cues []subtitle.Cue, srcLang, dstLang string, opts Options) (*Job, error) {
	if len(cues) == 0 {
		return nil, ErrNoCues
	}
	if opts.Workers < 1 {
		return nil, ErrBadWorkerCount
	}
	if opts.Client == nil {
		return nil, ErrNoClient
	}
	if opts.Credentials != nil {
		if _, found := opts.Credentials.GetAPIKey(); !found {
			return nil, ErrMissingCredential
		}
	}

	waitCtx, cancelFn := context.WithCancel(ctx)
	j := &Job{
		id:       uuid.NewString(),
		cues:     cues,
		units:    UnitsFromCues(cues, srcLang, dstLang),
		opts:     opts,
		callCtx:  ctx,
		waitCtx:  waitCtx,
		cancelFn: cancelFn,
		limiter:  newLimiter(opts.effectiveRPS(), opts.effectiveBurst()),
		state:    StatePending,
		results:  make(map[int]UnitResult, len(cues)),
		doneCh:   make(chan struct{}),
	}

	j.mu.Lock()
	j.state = StateRunning
	j.mu.Unlock()

	j.opts.log("translating %d cue(s) %s -> %s with %d worker(s) via %s",
		len(cues), srcLang, dstLang, opts.Workers, opts.Client.Name())

	go j.run()
	return j, nil
}

// ID returns the job's unique identifier.
func (j *Job) ID() string {
	return j.id
}

// State returns the current lifecycle state.
func (j *Job) State() State {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.state
}

// Progress returns the number of resolved units (succeeded + failed) and
// the total. The resolved count never decreases.
func (j *Job) Progress() (done, total int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.succeeded + j.failed + j.skipped, len(j.cues)
}

// Cancel requests a graceful stop: no new units are dispatched and every
// wait between calls aborts, but calls already in flight run to their own
// completion or timeout. Cancel is idempotent; cancelling a job that is
// already cancelling or terminal is a no-op.
func (j *Job) Cancel() {
	j.mu.Lock()
	if j.state != StatePending && j.state != StateRunning {
		j.mu.Unlock()
		return
	}
	j.state = StateCancelling
	j.mu.Unlock()

	j.cancelled.Store(true)
	j.cancelFn()
	j.opts.log("cancelling: waiting for in-flight units to drain")
}

// Done returns a channel closed when the job reaches a terminal state.
func (j *Job) Done() <-chan struct{} {
	return j.doneCh
}

// Wait blocks until the job reaches a terminal state or ctx is cancelled.
// The summary is non-nil whenever the job finished, including cancelled
// and partially failed runs; the error is non-nil only when ctx expired
// or the job failed structurally.
func (j *Job) Wait(ctx context.Context) (*Summary, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-j.doneCh:
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.summary, j.summary.Err
}

// Output returns the reassembled cues in original order. Valid once the
// job is done; nil before that.
func (j *Job) Output() []subtitle.Cue {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.output
}

// Results returns a copy of the per-unit results keyed by cue index.
// Valid once the job is done.
func (j *Job) Results() map[int]UnitResult {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make(map[int]UnitResult, len(j.results))
	for k, v := range j.results {
		out[k] = v
	}
	return out
}

// ---------------------------------------------------------------------------
// Controller loop
// ---------------------------------------------------------------------------

// run dispatches units and collects results until every dispatched unit
// has resolved, then finalizes the job. Results are mutated only here,
// never by workers.
func (j *Job) run() {
	resultCh := make(chan UnitResult, len(j.units))

	go func() {
		p := pool.New().WithMaxGoroutines(j.opts.Workers)
		for _, u := range j.units {
			if j.waitCtx.Err() != nil || j.stopFlag.Load() {
				break
			}
			u := u
			p.Go(func() {
				resultCh <- j.translateUnit(u)
			})
		}
		p.Wait()
		close(resultCh)
	}()

	for res := range resultCh {
		j.record(res)
	}
	j.finish()
}

// record stores one resolved unit, updates the tally, and raises the stop
// flag on terminal failures.
func (j *Job) record(res UnitResult) {
	j.mu.Lock()
	j.results[res.Index] = res
	skippedUnit := false
	if res.Err == nil {
		j.succeeded++
	} else if ue := asUnitError(res.Err); ue != nil && ue.Class == ClassSkipped {
		j.skipped++
		skippedUnit = true
	} else {
		j.failed++
	}
	done := j.succeeded + j.failed + j.skipped
	total := len(j.cues)
	j.mu.Unlock()

	if res.Err != nil && !skippedUnit {
		j.opts.logError("%v", res.Err)
		if ue := asUnitError(res.Err); ue != nil && ue.Class.StopsJob() && !j.stopLogged.Swap(true) {
			j.opts.logError("stopping dispatch: %s failure leaves no chance for the remaining units", ue.Class)
		}
	}
	j.opts.progress(done, total)
}

// finish resolves every never-dispatched unit as skipped, reassembles the
// output, and publishes the summary.
func (j *Job) finish() {
	skipErr := ErrStopped
	if j.cancelled.Load() || j.waitCtx.Err() != nil {
		skipErr = ErrCancelled
	}

	j.mu.Lock()
	for _, c := range j.cues {
		if _, ok := j.results[c.Index]; ok {
			continue
		}
		j.results[c.Index] = UnitResult{
			Index: c.Index,
			Err:   &UnitError{Index: c.Index, Class: ClassSkipped, Err: skipErr},
		}
		j.skipped++
	}

	output, ok := Assemble(j.cues, j.results)
	j.output = output

	s := &Summary{
		JobID:     j.id,
		Total:     len(j.cues),
		Succeeded: j.succeeded,
		Failed:    j.failed,
		Skipped:   j.skipped,
	}
	switch {
	case !ok:
		missing := missingIndices(j.cues, j.results)
		s.Err = &AssemblyError{Missing: missing}
		s.Status = StatusFailed
		j.state = StateFailed
	case j.cancelled.Load() && s.Untranslated() > 0:
		s.Status = StatusCancelled
		j.state = StateCompleted
	case s.Succeeded == s.Total:
		s.Status = StatusSuccess
		j.state = StateCompleted
	case s.Succeeded == 0:
		s.Status = StatusFailed
		j.state = StateCompleted
	default:
		s.Status = StatusPartial
		j.state = StateCompleted
	}
	j.summary = s
	done := j.succeeded + j.failed + j.skipped
	total := len(j.cues)
	j.mu.Unlock()

	j.opts.progress(done, total)
	j.opts.log("%s", s)
	j.cancelFn()
	close(j.doneCh)
}

// ---------------------------------------------------------------------------
// Worker: one unit through the retry loop
// ---------------------------------------------------------------------------

// translateUnit runs one unit to its final result: permit wait, provider
// call, classification, and backoff, up to the attempt bound. The permit
// wait and every backoff select on the job's cancel context; the provider
// call itself runs under the caller's context plus the per-call timeout.
//
// Each attempt starts by checking the stop flag: a unit that was blocked
// on pool capacity when another unit failed terminally must not reach the
// provider. The flag is raised here, before the terminal result is
// returned, so it is visible before the pool frees a slot for the next
// queued unit.
func (j *Job) translateUnit(u Unit) UnitResult {
	maxAttempts := j.opts.effectiveMaxAttempts()

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if j.stopFlag.Load() {
			return stoppedResult(u.Index, attempt-1)
		}
		if err := j.limiter.wait(j.waitCtx); err != nil {
			return skippedResult(u.Index, attempt-1)
		}

		callCtx, cancel := context.WithTimeout(j.callCtx, j.opts.effectiveTimeout())
		text, err := j.opts.Client.Translate(callCtx, u.Text, u.SourceLang, u.TargetLang)
		cancel()

		if err == nil {
			return UnitResult{Index: u.Index, Text: text, Attempts: attempt}
		}

		class := Classify(err)
		if class == ClassSkipped {
			return skippedResult(u.Index, attempt)
		}
		if !class.Retryable() || attempt == maxAttempts {
			if class.StopsJob() {
				j.stopFlag.Store(true)
			}
			return UnitResult{
				Index:    u.Index,
				Attempts: attempt,
				Err:      &UnitError{Index: u.Index, Class: class, Attempts: attempt, Err: err},
			}
		}

		var ra *RetryAfterError
		if errors.As(err, &ra) {
			// Pause the whole job, not just this worker.
			j.limiter.pause(ra.Delay)
			j.opts.log("rate limited, pausing all workers for %s (unit %d, attempt %d/%d)",
				ra.Delay, u.Index, attempt, maxAttempts)
			if err := sleepCtx(j.waitCtx, ra.Delay); err != nil {
				return skippedResult(u.Index, attempt)
			}
			j.limiter.unpause()
			continue
		}

		wait := time.Duration(math.Pow(2, float64(attempt-1))) * time.Second
		if err := sleepCtx(j.waitCtx, wait); err != nil {
			return skippedResult(u.Index, attempt)
		}
	}

	// Unreachable: the loop always returns.
	return skippedResult(u.Index, maxAttempts)
}

// skippedResult marks a unit abandoned at a cancellation point.
func skippedResult(index, attempts int) UnitResult {
	return UnitResult{
		Index:    index,
		Attempts: attempts,
		Err:      &UnitError{Index: index, Class: ClassSkipped, Attempts: attempts, Err: ErrCancelled},
	}
}

// stoppedResult marks a unit abandoned because a terminal failure
// elsewhere stopped the job.
func stoppedResult(index, attempts int) UnitResult {
	return UnitResult{
		Index:    index,
		Attempts: attempts,
		Err:      &UnitError{Index: index, Class: ClassSkipped, Attempts: attempts, Err: ErrStopped},
	}
}

func asUnitError(err error) *UnitError {
	var ue *UnitError
	if errors.As(err, &ue) {
		return ue
	}
	return nil
}

// sleepCtx waits for d or until ctx is cancelled.
func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
