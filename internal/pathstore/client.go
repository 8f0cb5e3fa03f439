package pathstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"time"
)

// Client talks to the pathstore key/value HTTP API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// RetryableError indicates a transient store failure (429 or 5xx).
type RetryableError struct {
	StatusCode int
	Message    string
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("retryable error (status %d): %s", e.StatusCode, truncate(e.Message, 200))
}

// NodeRequest is the body for PUT /kv/{key}.
type NodeRequest struct {
	Value     any    `json:"value"`
	MergeMode string `json:"merge_mode,omitempty"`
	Source    string `json:"source,omitempty"`
	ExpiresAt string `json:"expires_at,omitempty"`
}

// NodeResponse is the response from GET /kv/{key}.
type NodeResponse struct {
	Key   string          `json:"key_path"`
	Value json.RawMessage `json:"value"`
}

// ListChildrenResponse is a single node from a prefix scan.
type ListChildrenResponse = NodeResponse

// LinkRequest is the body for PUT /links.
type LinkRequest struct {
	From          string  `json:"from_key"`
	To            string  `json:"to_key"`
	Weight        float64 `json:"weight"`
	Summary       string  `json:"summary,omitempty"`
	Bidirectional bool    `json:"bidirectional,omitempty"`
}

// do sends one request. A JSON body is encoded from in; on success the
// response is decoded into out when out is non-nil. Status codes outside ok
// become errors, 429 and 5xx as a RetryableError. With allow404 a 404
// returns found=false and no error.
func (c *Client) do(ctx context.Context, op, method, path string, in, out any, allow404 bool, ok ...int) (found bool, err error) {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return false, fmt.Errorf("%s: marshal: %w", op, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return false, fmt.Errorf("%s: create request: %w", op, err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if allow404 && resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if !slices.Contains(ok, resp.StatusCode) {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return false, fmt.Errorf("%s: %w", op, &RetryableError{StatusCode: resp.StatusCode, Message: string(msg)})
		}
		return false, fmt.Errorf("%s: status %d: %s", op, resp.StatusCode, truncate(string(msg), 200))
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return false, fmt.Errorf("%s: decode: %w", op, err)
		}
	}
	return true, nil
}

// PutNode stores or replaces the node at key.
func (c *Client) PutNode(ctx context.Context, key string, req NodeRequest) error {
	_, err := c.do(ctx, "put node "+key, http.MethodPut, "/kv/"+key, req, nil, false,
		http.StatusOK, http.StatusCreated)
	return err
}

// GetNode retrieves a node by key. A missing node yields nil, nil.
func (c *Client) GetNode(ctx context.Context, key string) (*NodeResponse, error) {
	var node NodeResponse
	found, err := c.do(ctx, "get node "+key, http.MethodGet, "/kv/"+key, nil, &node, true, http.StatusOK)
	if err != nil || !found {
		return nil, err
	}
	return &node, nil
}

// DeleteNode deletes a node and optionally its children.
func (c *Client) DeleteNode(ctx context.Context, key string, recursive bool) error {
	path := "/kv/" + key
	if recursive {
		path += "?children=true"
	}
	_, err := c.do(ctx, "delete node "+key, http.MethodDelete, path, nil, nil, false,
		http.StatusOK, http.StatusNoContent)
	return err
}

// ListChildren does a prefix scan under key.
func (c *Client) ListChildren(ctx context.Context, key string, limit int) ([]ListChildrenResponse, error) {
	path := "/kv/" + key + "/*"
	if limit > 0 {
		path += "?limit=" + url.QueryEscape(strconv.Itoa(limit))
	}
	var result struct {
		Nodes []ListChildrenResponse `json:"nodes"`
	}
	if _, err := c.do(ctx, "list children "+key, http.MethodGet, path, nil, &result, false, http.StatusOK); err != nil {
		return nil, err
	}
	return result.Nodes, nil
}

// PutLink creates or updates an edge between two nodes.
func (c *Client) PutLink(ctx context.Context, req LinkRequest) error {
	_, err := c.do(ctx, "put link", http.MethodPut, "/links", req, nil, false,
		http.StatusOK, http.StatusCreated)
	return err
}

// Close drops idle connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
