package failover

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/omarluq/cc-fallback/internal/classify"
)

// Default engine configuration.
const (
	DefaultMaxRetries = 1
	DefaultRetryDelay = time.Second
)

// Work performs one unit of work against one candidate. It is supplied by
// the caller and may be invoked once per retry and once per candidate, so it
// must be safe to call repeatedly.
type Work[T any] func(ctx context.Context, candidate Candidate) (T, error)

// Sleeper waits for the inter-retry delay. The default implementation is
// cancellable: a context cancel during the delay returns ctx.Err().
// Replaceable for tests.
type Sleeper func(ctx context.Context, d time.Duration) error

// Observer is notified of every attempt outcome, including the ones on
// fatal paths whose attempt log is never surfaced to the caller. Purely
// observational; it must not affect control flow.
type Observer func(Attempt)

// settings holds the tunable parts of an Engine so options stay non-generic.
type settings struct {
	maxRetries int
	retryDelay time.Duration
	logger     *zerolog.Logger
	sleep      Sleeper
	observer   Observer
}

// Option configures an Engine at construction time.
type Option func(*settings)

// WithMaxRetries sets how many times each candidate is tried before the
// engine advances to the next one. Values below 1 are treated as 1.
func WithMaxRetries(n int) Option {
	return func(s *settings) {
		if n >= 1 {
			s.maxRetries = n
		}
	}
}

// WithRetryDelay sets the wait between retries of the same candidate.
// Negative values are treated as 0. There is no delay between candidates.
func WithRetryDelay(d time.Duration) Option {
	return func(s *settings) {
		if d >= 0 {
			s.retryDelay = d
		}
	}
}

// WithLogger enables per-attempt logging.
func WithLogger(logger *zerolog.Logger) Option {
	return func(s *settings) {
		s.logger = logger
	}
}

// WithObserver registers an attempt observer.
func WithObserver(observer Observer) Option {
	return func(s *settings) {
		s.observer = observer
	}
}

// WithSleeper replaces the inter-retry sleep. Test seam.
func WithSleeper(sleep Sleeper) Option {
	return func(s *settings) {
		if sleep != nil {
			s.sleep = sleep
		}
	}
}

// Engine walks an ordered candidate list until one succeeds. Configuration
// is immutable after New; reconfiguration means constructing a new Engine.
// Run is safe for concurrent use.
type Engine[T any] struct {
	candidates []Candidate
	settings
}

// New creates an Engine over the given candidate list (priority order,
// primary first). The list is copied; later mutation of the caller's slice
// does not affect the engine.
func New[T any](candidates []Candidate, opts ...Option) *Engine[T] {
	s := settings{
		maxRetries: DefaultMaxRetries,
		retryDelay: DefaultRetryDelay,
		sleep:      sleepContext,
	}
	for _, opt := range opts {
		opt(&s)
	}

	owned := make([]Candidate, len(candidates))
	copy(owned, candidates)

	return &Engine[T]{candidates: owned, settings: s}
}

// Candidates returns a copy of the configured candidate list.
func (e *Engine[T]) Candidates() []Candidate {
	out := make([]Candidate, len(e.candidates))
	copy(out, e.candidates)
	return out
}

// MaxRetries returns the per-candidate retry budget.
func (e *Engine[T]) MaxRetries() int {
	return e.maxRetries
}

// RetryDelay returns the inter-retry delay.
func (e *Engine[T]) RetryDelay() time.Duration {
	return e.retryDelay
}

// Run invokes work against each candidate in order until one succeeds.
//
// Outcomes:
//   - Success: returns a RunResult whose Attempts log ends with the
//     successful attempt. No further candidates are tried.
//   - Cancellation (per classify.IsCancellation): the original error is
//     returned immediately; the partial attempt log is discarded.
//   - Unclassified failure: the original error is returned immediately;
//     the engine cannot assume recoverability, so it never advances.
//   - Recoverable failure: the attempt is recorded; the same candidate is
//     retried after the delay until its budget is spent, then the engine
//     advances. When every candidate is exhausted, Run returns an
//     *ExhaustedError carrying the full attempt log.
func (e *Engine[T]) Run(ctx context.Context, work Work[T]) (*RunResult[T], error) {
	if len(e.candidates) == 0 {
		return nil, ErrNoCandidates
	}

	attempts := make([]Attempt, 0, len(e.candidates)*e.maxRetries)

	var lastErr error

	for _, candidate := range e.candidates {
		for retry := range e.maxRetries {
			start := time.Now()
			payload, err := work(ctx, candidate)
			elapsed := time.Since(start)

			if err == nil {
				attempt := Attempt{Candidate: candidate, Success: true, Duration: elapsed}
				attempts = append(attempts, attempt)
				e.notify(attempt)
				e.logAttempt(attempt, retry, nil)

				return &RunResult[T]{Payload: payload, Candidate: candidate, Attempts: attempts}, nil
			}

			if classify.IsCancellation(err) {
				e.notify(Attempt{Candidate: candidate, ErrMessage: err.Error(), Duration: elapsed})
				e.logFatal(candidate, err, "cancellation")

				return nil, err
			}

			reason, recoverable := classify.ClassifyError(err)
			if !recoverable {
				e.notify(Attempt{Candidate: candidate, ErrMessage: err.Error(), Duration: elapsed})
				e.logFatal(candidate, err, "unclassified")

				return nil, err
			}

			attempt := Attempt{
				Candidate:  candidate,
				Reason:     reason,
				ErrMessage: err.Error(),
				Duration:   elapsed,
			}
			attempts = append(attempts, attempt)
			lastErr = err
			e.notify(attempt)
			e.logAttempt(attempt, retry, err)

			if retry < e.maxRetries-1 && e.retryDelay > 0 {
				if sleepErr := e.sleep(ctx, e.retryDelay); sleepErr != nil {
					// Cancelled while waiting; still a cancellation.
					return nil, sleepErr
				}
			}
		}
	}

	return nil, &ExhaustedError{Attempts: attempts, cause: lastErr}
}

func (e *Engine[T]) notify(attempt Attempt) {
	if e.observer != nil {
		e.observer(attempt)
	}
}

func (e *Engine[T]) logAttempt(attempt Attempt, retry int, err error) {
	if e.logger == nil {
		return
	}

	if attempt.Success {
		e.logger.Info().
			Str("candidate", attempt.Candidate.Key()).
			Int("retry", retry).
			Dur("duration", attempt.Duration).
			Msg("candidate succeeded")

		return
	}

	e.logger.Warn().
		Str("candidate", attempt.Candidate.Key()).
		Str("reason", attempt.Reason.String()).
		Int("retry", retry).
		Dur("duration", attempt.Duration).
		Err(err).
		Msg("candidate failed")
}

func (e *Engine[T]) logFatal(candidate Candidate, err error, kind string) {
	if e.logger == nil {
		return
	}

	e.logger.Warn().
		Str("candidate", candidate.Key()).
		Str("kind", kind).
		Err(err).
		Msg("fatal failure, aborting failover")
}

// sleepContext waits for d or until ctx is cancelled, whichever comes first.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
