package failover

import (
	"time"

	"github.com/omarluq/cc-fallback/internal/classify"
)

// Attempt records one (candidate, retry) execution. Attempts are append-only
// and owned exclusively by a single Run invocation; they are never shared
// across concurrent runs.
type Attempt struct {
	Candidate  Candidate
	Success    bool
	Reason     classify.Reason
	ErrMessage string
	Duration   time.Duration
}

// RunResult is returned when some candidate succeeds. Attempts is the full
// chronological log for the run; it is always non-empty and its last entry
// is the successful one.
type RunResult[T any] struct {
	Payload   T
	Candidate Candidate
	Attempts  []Attempt
}

// Retries returns how many failed attempts preceded the success.
func (r *RunResult[T]) Retries() int {
	return len(r.Attempts) - 1
}
