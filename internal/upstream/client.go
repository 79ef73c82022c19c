// Package upstream performs one unit of work against one fallback candidate:
// an Anthropic-compatible messages call to the candidate's provider with the
// request body's model field rewritten to the candidate's model.
package upstream

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/sjson"

	"github.com/omarluq/cc-fallback/internal/config"
	"github.com/omarluq/cc-fallback/internal/failover"
)

const (
	// AnthropicVersion is the API version header sent to all upstreams.
	AnthropicVersion = "2023-06-01"

	// messagesPath is the Anthropic-compatible completion endpoint.
	messagesPath = "/v1/messages"

	// maxErrorBodyBytes bounds how much of an error response is kept for
	// classification and logging.
	maxErrorBodyBytes = 2048
)

// Endpoint holds the resolved settings for one upstream provider.
type Endpoint struct {
	Name    string
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Client dispatches requests to candidate upstreams. Safe for concurrent
// use; endpoints are fixed at construction (hot reload swaps the whole
// client).
type Client struct {
	endpoints  map[string]Endpoint
	httpClient *http.Client
}

// NewClient builds a client from the configured upstreams. The http.Client
// has no global timeout; per-request deadlines come from each endpoint's
// configured timeout.
func NewClient(upstreams []config.UpstreamConfig) *Client {
	endpoints := make(map[string]Endpoint, len(upstreams))
	for _, u := range upstreams {
		endpoints[u.Name] = Endpoint{
			Name:    u.Name,
			BaseURL: strings.TrimRight(u.BaseURL, "/"),
			APIKey:  u.APIKey,
			Timeout: u.GetTimeoutOption().OrElse(config.DefaultUpstreamTimeoutMS * time.Millisecond),
		}
	}

	return &Client{
		endpoints:  endpoints,
		httpClient: &http.Client{},
	}
}

// Endpoint returns the endpoint for the named provider.
func (c *Client) Endpoint(name string) (Endpoint, bool) {
	ep, found := c.endpoints[name]
	return ep, found
}

// Do sends body to the candidate's provider with the model field rewritten
// to the candidate's model. Returns the response body on 2xx, a *StatusError
// on any other status, and the transport error otherwise. Safe to invoke
// repeatedly for the same request: body is never mutated in place.
func (c *Client) Do(ctx context.Context, candidate failover.Candidate, body []byte) ([]byte, error) {
	endpoint, found := c.Endpoint(candidate.Provider)
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, candidate.Provider)
	}

	rewritten, err := sjson.SetBytes(body, "model", candidate.Model)
	if err != nil {
		return nil, fmt.Errorf("upstream: failed to rewrite model: %w", err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, endpoint.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost,
		endpoint.BaseURL+messagesPath, bytes.NewReader(rewritten))
	if err != nil {
		return nil, fmt.Errorf("upstream: failed to build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("anthropic-version", AnthropicVersion)
	if endpoint.APIKey != "" {
		req.Header.Set("x-api-key", endpoint.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer closeBody(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return nil, &StatusError{Code: resp.StatusCode, Body: string(snippet)}
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("upstream: failed to read response: %w", err)
	}

	return payload, nil
}

func closeBody(body io.ReadCloser) {
	//nolint:errcheck // best effort close
	body.Close()
}
