package failover_test

import (
	"testing"

	"github.com/omarluq/cc-fallback/internal/classify"
	"github.com/omarluq/cc-fallback/internal/failover"
)

func TestExhaustedErrorMessage(t *testing.T) {
	t.Parallel()

	err := &failover.ExhaustedError{
		Attempts: []failover.Attempt{
			{Candidate: primary, Reason: classify.ReasonRateLimit, ErrMessage: "429"},
			{Candidate: secondary, Reason: classify.ReasonModelUnavailable, ErrMessage: "503"},
		},
	}

	want := "failover: all candidates exhausted after 2 attempts " +
		"(anthropic/claude-opus-4: rate_limit, openrouter/claude-sonnet-4: model_unavailable)"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
