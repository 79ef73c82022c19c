package relay

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
)

// Custom header constants for fallback metadata.
const (
	// HeaderCandidate names the candidate that ultimately served the request.
	HeaderCandidate = "X-CC-Fallback-Candidate"
	// HeaderAttempts is the total attempt count for the run.
	HeaderAttempts = "X-CC-Fallback-Attempts"
)

// StatusClientClosedRequest is the nginx convention for a client that went
// away mid-request; used when a run dies to cancellation.
const StatusClientClosedRequest = 499

// ErrorResponse matches Anthropic's error response format.
type ErrorResponse struct {
	Type  string      `json:"type"`
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains the error type and message.
type ErrorDetail struct {
	Type     string           `json:"type"`
	Message  string           `json:"message"`
	Attempts []AttemptSummary `json:"attempts,omitempty"`
}

// AttemptSummary is the wire form of one failed attempt in an exhaustion
// response.
type AttemptSummary struct {
	Candidate  string `json:"candidate"`
	Reason     string `json:"reason"`
	Error      string `json:"error,omitempty"`
	DurationMS int64  `json:"duration_ms"`
}

// WriteError writes an Anthropic-format error response.
func WriteError(w http.ResponseWriter, statusCode int, errorType, message string) {
	writeJSON(w, statusCode, ErrorResponse{
		Type: "error",
		Error: ErrorDetail{
			Type:    errorType,
			Message: message,
		},
	})
}

// writeJSON marshals v and writes it with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode error response")
	}
}
