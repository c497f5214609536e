package vrp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultSolveTimeout bounds a single solve request.
	DefaultSolveTimeout = 30 * time.Second

	// maxResponseBytes caps the response body read to guard against a
	// misbehaving endpoint.
	maxResponseBytes = 8 << 20
)

// SolverStatusError is a non-2xx response from the solve endpoint. When
// the error body carried a structured message it is preserved here, so
// callers can prefer it over the transport-level text.
type SolverStatusError struct {
	Code    int
	Message string
}

func (e *SolverStatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("solver returned status %d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("solver returned status %d", e.Code)
}

// SolverOption configures a SolverClient.
type SolverOption func(*SolverClient)

// WithHTTPClient overrides the default HTTP client (useful for testing).
func WithHTTPClient(client *http.Client) SolverOption {
	return func(c *SolverClient) {
		c.client = client
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) SolverOption {
	return func(c *SolverClient) {
		c.timeout = d
	}
}

// SolverClient posts scenarios to the external route-solving service.
type SolverClient struct {
	baseURL string
	timeout time.Duration
	client  *http.Client
}

// NewSolverClient creates a client for the solver at baseURL, e.g.
// "http://localhost:5002". The solve endpoint path is fixed at /api/solve.
func NewSolverClient(baseURL string, opts ...SolverOption) *SolverClient {
	c := &SolverClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: DefaultSolveTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.client == nil {
		c.client = &http.Client{Timeout: c.timeout}
	}
	return c
}

// Solve posts the scenario and decodes the solver result. A non-2xx
// response becomes a *SolverStatusError carrying the body's message field
// when one can be decoded. The scenario travels exactly as defined in the
// wire contract: nodes, num_vehicles, available_skills, vehicle_skills.
func (c *SolverClient) Solve(ctx context.Context, s Scenario) (*SolverResult, error) {
	if c.baseURL == "" {
		return nil, fmt.Errorf("solve: solver URL is empty")
	}

	payload, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("solve: marshal scenario: %w", err)
	}

	url := c.baseURL + "/api/solve"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("solve: creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("solve: HTTP POST %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("solve: reading response from %s: %w", url, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &SolverStatusError{
			Code:    resp.StatusCode,
			Message: extractErrorMessage(body),
		}
	}

	var result SolverResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("solve: decode response: %w", err)
	}
	return &result, nil
}

// extractErrorMessage pulls the message field out of an error body. The
// solver reports failures as {"status":"error","message":...} even on
// 4xx/5xx responses; anything undecodable yields an empty string so the
// caller falls back to the transport error text.
func extractErrorMessage(body []byte) string {
	var probe struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &probe); err != nil {
		return ""
	}
	return strings.TrimSpace(probe.Message)
}
