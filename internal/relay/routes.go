package relay

import (
	"net/http"

	"github.com/samber/lo"

	"github.com/omarluq/cc-fallback/internal/failover"
	"github.com/omarluq/cc-fallback/internal/health"
)

// SetupRoutes creates the HTTP handler with all routes configured.
// Routes:
//   - POST /v1/messages - serve through the failover engine
//   - GET /candidates - candidate list with circuit/cooldown status
//   - GET /healthz - liveness check
func SetupRoutes(handler *Handler) http.Handler {
	mux := http.NewServeMux()

	// Middleware order: request ID first so access logs carry it.
	var messages http.Handler = handler
	messages = LoggingMiddleware()(messages)
	messages = RequestIDMiddleware()(messages)

	mux.Handle("POST /v1/messages", messages)
	mux.HandleFunc("GET /candidates", handler.handleCandidates)
	mux.HandleFunc("GET /healthz", handleHealthz)

	return mux
}

func handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// CandidateStatus is the wire form of one candidate on GET /candidates.
type CandidateStatus struct {
	Candidate  string `json:"candidate"`
	Provider   string `json:"provider"`
	Model      string `json:"model"`
	Priority   int    `json:"priority"`
	Circuit    string `json:"circuit"`
	Benched    bool   `json:"benched"`
	CooldownMS int64  `json:"cooldown_ms,omitempty"`
}

// handleCandidates reports the configured candidates in priority order with
// their circuit state and cooldown status.
func (h *Handler) handleCandidates(w http.ResponseWriter, _ *http.Request) {
	cfg := h.runtime.Get()

	candidates, err := cfg.Fallback.ParseCandidates()
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "api_error", "fallback candidates misconfigured")
		return
	}

	statuses := lo.Map(candidates, func(c failover.Candidate, i int) CandidateStatus {
		key := c.Key()

		status := CandidateStatus{
			Candidate: key,
			Provider:  c.Provider,
			Model:     c.Model,
			Priority:  i,
			Circuit:   health.StateClosed.String(),
		}

		if h.tracker != nil {
			status.Circuit = h.tracker.GetState(key).String()
		}

		if h.bench != nil && h.bench.Benched(key) {
			status.Benched = true
			status.CooldownMS = h.bench.Remaining(key).Milliseconds()
		}

		return status
	})

	writeJSON(w, http.StatusOK, map[string]any{"candidates": statuses})
}
