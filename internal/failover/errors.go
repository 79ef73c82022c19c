package failover

import (
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// Sentinel errors returned by the engine.
var (
	// ErrNoCandidates is returned by Run when the engine was built with an
	// empty candidate list.
	ErrNoCandidates = errors.New("failover: no candidates configured")
)

// ExhaustedError is the aggregate failure raised when every candidate has
// been tried without success. It carries the complete attempt log (all
// entries failed) and wraps the most recent underlying error as cause.
type ExhaustedError struct {
	Attempts []Attempt
	cause    error
}

// Error summarizes every failed attempt's candidate and reason, in attempt
// order.
func (e *ExhaustedError) Error() string {
	summaries := lo.Map(e.Attempts, func(a Attempt, _ int) string {
		return fmt.Sprintf("%s: %s", a.Candidate, a.Reason)
	})
	return fmt.Sprintf("failover: all candidates exhausted after %d attempts (%s)",
		len(e.Attempts), strings.Join(summaries, ", "))
}

// Unwrap returns the last underlying provider error.
func (e *ExhaustedError) Unwrap() error {
	return e.cause
}
