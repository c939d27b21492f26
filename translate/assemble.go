package translate

import (
	"fmt"
	"sort"

	"github.com/minios-linux/subkit/subtitle"
)

// ---------------------------------------------------------------------------
// Reassembly
// ---------------------------------------------------------------------------

// Assemble reconstructs the ordered output from out-of-order results.
// Each cue keeps its index and timestamps; the text is replaced by the
// translation when the unit succeeded and kept as the source text when it
// failed or was skipped. This is the only place output order is imposed.
//
// ok is false only when some cue has no result at all, which violates the
// controller's invariant that every unit resolves.
func Assemble(cues []subtitle.Cue, results map[int]UnitResult) ([]subtitle.Cue, bool) {
	output := make([]subtitle.Cue, len(cues))
	ok := true
	for i, c := range cues {
		output[i] = c
		res, found := results[c.Index]
		if !found {
			ok = false
			continue
		}
		if res.Err == nil {
			output[i].Text = res.Text
		}
	}
	return output, ok
}

// missingIndices returns the sorted cue indices without a result.
func missingIndices(cues []subtitle.Cue, results map[int]UnitResult) []int {
	var missing []int
	for _, c := range cues {
		if _, ok := results[c.Index]; !ok {
			missing = append(missing, c.Index)
		}
	}
	sort.Ints(missing)
	return missing
}

// ---------------------------------------------------------------------------
// Summary
// ---------------------------------------------------------------------------

// Status is the overall outcome of a job.
type Status int

const (
	// StatusSuccess: every unit was translated.
	StatusSuccess Status = iota
	// StatusPartial: some units were translated, some were not.
	StatusPartial
	// StatusFailed: no unit was translated, or reassembly failed.
	StatusFailed
	// StatusCancelled: the job was cancelled before every unit resolved.
	StatusCancelled
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusPartial:
		return "partial"
	case StatusFailed:
		return "failed"
	case StatusCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Summary is the per-unit outcome tally of a finished job. A job outcome
// is never a bare success flag: cancelled and partially failed runs still
// produce output, with untranslated cues kept as source text.
type Summary struct {
	// JobID identifies the job.
	JobID string
	// Total is the number of cues in the job.
	Total int
	// Succeeded is the number of translated units.
	Succeeded int
	// Failed is the number of units that failed after their attempts.
	Failed int
	// Skipped is the number of units never translated: cancelled mid-wait
	// or not dispatched after a terminal failure.
	Skipped int
	// Status is the overall outcome.
	Status Status
	// Err is set when the job failed structurally (assembly error).
	Err error
}

// Untranslated returns the number of cues left as source text.
func (s *Summary) Untranslated() int {
	return s.Total - s.Succeeded
}

// String returns a one-line human-readable outcome.
func (s *Summary) String() string {
	switch {
	case s.Err != nil:
		return fmt.Sprintf("translation failed: %v", s.Err)
	case s.Status == StatusSuccess:
		return fmt.Sprintf("translated %d/%d cue(s)", s.Succeeded, s.Total)
	default:
		return fmt.Sprintf("translated %d/%d cue(s), %d failed, %d skipped (%s)",
			s.Succeeded, s.Total, s.Failed, s.Skipped, s.Status)
	}
}
