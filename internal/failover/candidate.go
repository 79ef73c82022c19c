// Package failover provides the candidate-sequencing engine for cc-fallback.
//
// An Engine owns an ordered list of candidates (primary first) and, per Run,
// walks them strictly sequentially: each candidate is retried in place up to
// the configured retry budget, recoverable failures advance to the next
// candidate, and fatal failures (cancellation or anything the classifier
// cannot place) propagate immediately. The first success wins.
//
// Engine configuration is immutable after construction; per-run state (the
// attempt log) is private to each Run call, so concurrent Runs against one
// Engine need no synchronization.
package failover

import "strings"

// Candidate identifies one backend endpoint eligible to serve a request:
// a provider name plus a model identifier. Immutable value type.
//
// Candidate list ordering is significant: it is the priority order, primary
// first. Duplicate entries are legal but retries of the same candidate are
// handled by the retry budget, not by repeating it in the list.
type Candidate struct {
	Provider string
	Model    string
}

// Key returns the canonical "provider/model" form used for circuit, cooldown,
// and rate limiter lookups.
func (c Candidate) Key() string {
	return c.Provider + "/" + c.Model
}

// String returns the same "provider/model" form for logging.
func (c Candidate) String() string {
	return c.Key()
}

// ParseCandidate splits a "provider/model" string on the first slash.
// Model identifiers may themselves contain slashes (e.g. ollama registry
// paths), so only the first separator delimits the provider.
func ParseCandidate(s string) (Candidate, bool) {
	provider, model, found := strings.Cut(strings.TrimSpace(s), "/")
	if !found || provider == "" || model == "" {
		return Candidate{}, false
	}
	return Candidate{Provider: provider, Model: model}, true
}
