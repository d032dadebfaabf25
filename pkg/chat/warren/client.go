package warren

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// DefaultBaseURL points at a locally running agent server.
const DefaultBaseURL = "http://localhost:8283"

// Client is a minimal HTTP client for the Warren agent server.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	retry      *RetryPolicy
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithBaseURL sets the server base URL. A trailing slash is trimmed.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		for len(baseURL) > 0 && baseURL[len(baseURL)-1] == '/' {
			baseURL = baseURL[:len(baseURL)-1]
		}
		c.baseURL = baseURL
	}
}

// WithAPIKey sets the bearer token sent with every request.
func WithAPIKey(key string) ClientOption {
	return func(c *Client) { c.apiKey = key }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = httpClient }
}

// WithTimeout sets the request timeout on the underlying HTTP client.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) { c.httpClient.Timeout = timeout }
}

// WithRetry enables transparent retries with the given policy.
func WithRetry(policy *RetryPolicy) ClientOption {
	return func(c *Client) { c.retry = policy }
}

// NewClient creates a Client for the server at DefaultBaseURL unless
// overridden by options.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured server base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// do sends one JSON request and decodes the JSON response into out (when
// out is non-nil). Non-2xx responses become errors carrying status and body.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	attempt := func() error {
		var reqBody io.Reader
		if body != nil {
			encoded, err := json.Marshal(body)
			if err != nil {
				return fmt.Errorf("marshaling request: %w", err)
			}
			reqBody = bytes.NewReader(encoded)
		}

		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if c.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.apiKey)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("sending request: %w", err)
		}
		defer resp.Body.Close()

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("reading response: %w", err)
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return fmt.Errorf("warren API error (status %d): %s", resp.StatusCode, string(respBody))
		}

		if out != nil {
			if err := json.Unmarshal(respBody, out); err != nil {
				return fmt.Errorf("parsing response: %w", err)
			}
		}
		return nil
	}

	if c.retry != nil {
		return c.retry.Execute(ctx, attempt)
	}
	return attempt()
}

// ListMessages returns up to limit events from the agent's history, oldest
// first. A limit of zero or less leaves paging to the server default.
func (c *Client) ListMessages(ctx context.Context, agentID string, limit int) ([]Event, error) {
	path := fmt.Sprintf("/v1/agents/%s/messages", url.PathEscape(agentID))
	if limit > 0 {
		path += fmt.Sprintf("?limit=%d", limit)
	}
	var events []Event
	if err := c.do(ctx, http.MethodGet, path, nil, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// CreateMessages submits new input to the agent and returns the events the
// turn produced.
func (c *Client) CreateMessages(ctx context.Context, agentID string, req CreateRequest) (*CreateResponse, error) {
	path := fmt.Sprintf("/v1/agents/%s/messages", url.PathEscape(agentID))
	var resp CreateResponse
	if err := c.do(ctx, http.MethodPost, path, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetAgent fetches the agent's read-only description.
func (c *Client) GetAgent(ctx context.Context, agentID string) (*Agent, error) {
	path := fmt.Sprintf("/v1/agents/%s", url.PathEscape(agentID))
	var agent Agent
	if err := c.do(ctx, http.MethodGet, path, nil, &agent); err != nil {
		return nil, err
	}
	return &agent, nil
}

// Health probes the server health endpoint.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/v1/health", nil, nil)
}
