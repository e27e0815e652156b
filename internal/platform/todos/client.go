// Package todos provides a client for the external todo feed merged
// into the tasks API.
package todos

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// DefaultFetchLimit caps how many external todos are merged into a
// response.
const DefaultFetchLimit = 5

// Todo is one entry from the external feed.
type Todo struct {
	ID        int    `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

// Client fetches todos from the configured external endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Client for the given endpoint URL with the given
// request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// FetchTodos retrieves up to limit todos from the external endpoint.
// A non-positive limit uses DefaultFetchLimit.
func (c *Client) FetchTodos(ctx context.Context, limit int) ([]Todo, error) {
	if limit <= 0 {
		limit = DefaultFetchLimit
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build external todos request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch external todos: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("external todos endpoint returned status %d", resp.StatusCode)
	}

	var todos []Todo
	if err := json.NewDecoder(resp.Body).Decode(&todos); err != nil {
		return nil, fmt.Errorf("failed to decode external todos: %w", err)
	}

	if len(todos) > limit {
		todos = todos[:limit]
	}
	return todos, nil
}
