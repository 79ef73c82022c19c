package relay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/tidwall/gjson"

	"github.com/omarluq/cc-fallback/internal/classify"
	"github.com/omarluq/cc-fallback/internal/config"
	"github.com/omarluq/cc-fallback/internal/cooldown"
	"github.com/omarluq/cc-fallback/internal/failover"
	"github.com/omarluq/cc-fallback/internal/health"
	"github.com/omarluq/cc-fallback/internal/ratelimit"
	"github.com/omarluq/cc-fallback/internal/upstream"
)

// ErrLimited is returned by the work function when the local pacer denies a
// dispatch. Its wording intentionally classifies as a rate limit so failover
// treats a locally-limited candidate the same as a provider-side 429.
var ErrLimited = errors.New("relay: local rate limit exceeded")

// RequestModel extracts the model field from a messages request body.
// Returns None when the body is not JSON or the field is absent or empty.
func RequestModel(body []byte) mo.Option[string] {
	model := gjson.GetBytes(body, "model").Str
	if model == "" {
		return mo.None[string]()
	}
	return mo.Some(model)
}

// Handler serves POST /v1/messages through the failover engine.
//
// Per request it takes a config snapshot, filters the configured candidate
// list down to eligible candidates (circuit not OPEN, not benched), builds
// an engine over them, and runs the upstream client as the work function.
// Reload swaps the upstream client and limiters after a config change.
type Handler struct {
	runtime config.RuntimeConfig
	tracker *health.Tracker
	bench   *cooldown.Bench
	logger  *zerolog.Logger

	mu     sync.RWMutex
	client *upstream.Client
	limits *ratelimit.Registry
}

// NewHandler wires the handler with its collaborators.
func NewHandler(
	runtime config.RuntimeConfig,
	client *upstream.Client,
	limits *ratelimit.Registry,
	tracker *health.Tracker,
	bench *cooldown.Bench,
	logger *zerolog.Logger,
) *Handler {
	return &Handler{
		runtime: runtime,
		client:  client,
		limits:  limits,
		tracker: tracker,
		bench:   bench,
		logger:  logger,
	}
}

// Reload rebuilds the upstream client and rate limiters from a new config.
// The candidate list itself is read from the runtime snapshot per request,
// so it needs no rebuild here.
func (h *Handler) Reload(cfg *config.Config) {
	client := upstream.NewClient(cfg.Upstreams)
	limits := ratelimit.NewRegistry(upstreamLimits(cfg.Upstreams))

	h.mu.Lock()
	h.client = client
	h.limits = limits
	h.mu.Unlock()
}

// UpstreamLimits extracts the name -> rpm map the limiter registry wants.
func upstreamLimits(upstreams []config.UpstreamConfig) map[string]int {
	return lo.SliceToMap(upstreams, func(u config.UpstreamConfig) (string, int) {
		return u.Name, u.RPM
	})
}

func (h *Handler) collaborators() (*upstream.Client, *ratelimit.Registry) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.client, h.limits
}

// ServeHTTP implements the messages endpoint.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	body, err := io.ReadAll(r.Body)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request_error", "failed to read request body")
		return
	}

	// Requested model, for observability only; candidates decide what runs.
	if model, ok := RequestModel(body).Get(); ok {
		logger.Debug().Str("model", model).Msg("request model")
	}

	cfg := h.runtime.Get()

	candidates, err := cfg.Fallback.ParseCandidates()
	if err != nil {
		logger.Error().Err(err).Msg("candidate list invalid")
		WriteError(w, http.StatusInternalServerError, "api_error", "fallback candidates misconfigured")
		return
	}

	if !cfg.Fallback.IsEnabled() && len(candidates) > 1 {
		candidates = candidates[:1]
	}

	eligible := h.eligible(candidates)
	if len(eligible) == 0 {
		WriteError(w, http.StatusServiceUnavailable, "overloaded_error",
			"all fallback candidates are cooling down or circuit-broken")
		return
	}

	result, err := h.run(r.Context(), cfg, eligible, body)
	if err != nil {
		h.writeFailure(r.Context(), w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set(HeaderCandidate, result.Candidate.Key())
	w.Header().Set(HeaderAttempts, fmt.Sprintf("%d", len(result.Attempts)))
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write(result.Payload); err != nil {
		logger.Error().Err(err).Msg("failed to write response")
	}
}

// eligible filters out candidates whose circuit is OPEN or that are benched.
func (h *Handler) eligible(candidates []failover.Candidate) []failover.Candidate {
	return lo.Filter(candidates, func(c failover.Candidate, _ int) bool {
		key := c.Key()
		if h.bench != nil && h.bench.Benched(key) {
			return false
		}
		if h.tracker != nil && h.tracker.GetState(key) == health.StateOpen {
			return false
		}
		return true
	})
}

// run builds a per-request engine and executes the failover loop.
func (h *Handler) run(
	ctx context.Context,
	cfg *config.Config,
	candidates []failover.Candidate,
	body []byte,
) (*failover.RunResult[[]byte], error) {
	client, limits := h.collaborators()

	opts := []failover.Option{
		failover.WithMaxRetries(cfg.Fallback.GetMaxRetries()),
		failover.WithRetryDelay(cfg.Fallback.GetRetryDelay()),
		failover.WithObserver(h.observe),
	}
	if cfg.Fallback.LogAttempts {
		opts = append(opts, failover.WithLogger(h.logger))
	}

	engine := failover.New[[]byte](candidates, opts...)

	work := func(ctx context.Context, candidate failover.Candidate) ([]byte, error) {
		if !limits.Allow(candidate.Provider) {
			return nil, fmt.Errorf("%w: %s", ErrLimited, candidate.Provider)
		}
		return client.Do(ctx, candidate, body)
	}

	result, err := engine.Run(ctx, work)

	var exhausted *failover.ExhaustedError
	if errors.As(err, &exhausted) {
		h.benchExhausted(exhausted)
	}

	return result, err
}

// observe feeds attempt outcomes into the circuit tracker. Only classified
// failures count against a candidate; cancellations and unclassified
// failures say nothing about candidate health.
func (h *Handler) observe(attempt failover.Attempt) {
	if h.tracker == nil {
		return
	}

	key := attempt.Candidate.Key()

	switch {
	case attempt.Success:
		h.tracker.RecordSuccess(key)
	case attempt.Reason != classify.ReasonUnknown:
		h.tracker.RecordFailure(key, errors.New(attempt.ErrMessage))
	}
}

// benchExhausted puts quota-bound candidates on the cooldown bench after a
// fully exhausted run. Retrying a spent quota immediately only burns budget.
func (h *Handler) benchExhausted(exhausted *failover.ExhaustedError) {
	if h.bench == nil {
		return
	}

	for _, attempt := range exhausted.Attempts {
		if attempt.Reason == classify.ReasonRateLimit || attempt.Reason == classify.ReasonBilling {
			if err := h.bench.Add(attempt.Candidate.Key()); err != nil {
				h.logger.Warn().Err(err).
					Str("candidate", attempt.Candidate.Key()).
					Msg("failed to bench candidate")
			}
		}
	}
}

// writeFailure maps a failed run to an HTTP response.
func (h *Handler) writeFailure(ctx context.Context, w http.ResponseWriter, err error) {
	logger := zerolog.Ctx(ctx)

	var exhausted *failover.ExhaustedError
	switch {
	case errors.As(err, &exhausted):
		logger.Error().Err(err).Int("attempts", len(exhausted.Attempts)).Msg("all candidates exhausted")
		writeJSON(w, http.StatusBadGateway, ErrorResponse{
			Type: "error",
			Error: ErrorDetail{
				Type:     "overloaded_error",
				Message:  exhausted.Error(),
				Attempts: summarize(exhausted.Attempts),
			},
		})

	case classify.IsCancellation(err):
		logger.Debug().Err(err).Msg("request cancelled")
		WriteError(w, StatusClientClosedRequest, "cancelled", "request was cancelled")

	case errors.Is(err, failover.ErrNoCandidates):
		WriteError(w, http.StatusServiceUnavailable, "overloaded_error", "no candidates available")

	default:
		// Non-recoverable propagation: surface the upstream's own status if
		// the error carries one.
		if code := classify.StatusCode(err); code != 0 {
			logger.Warn().Err(err).Int("status", code).Msg("non-recoverable upstream failure")
			WriteError(w, code, "upstream_error", err.Error())
			return
		}

		logger.Error().Err(err).Msg("request failed")
		WriteError(w, http.StatusInternalServerError, "api_error", err.Error())
	}
}

// summarize converts attempts to their wire form.
func summarize(attempts []failover.Attempt) []AttemptSummary {
	return lo.Map(attempts, func(a failover.Attempt, _ int) AttemptSummary {
		return AttemptSummary{
			Candidate:  a.Candidate.Key(),
			Reason:     a.Reason.String(),
			Error:      a.ErrMessage,
			DurationMS: a.Duration.Milliseconds(),
		}
	})
}
