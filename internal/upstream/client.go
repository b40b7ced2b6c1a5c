// Package upstream is the JSON client for the remote inventory/sales API.
// It implements the catalog lookup, sale submission gateway, invoice number
// source and listing ports consumed by the terminal.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/lumenpos/lumenpos/internal/platform/httpx"
	"github.com/lumenpos/lumenpos/internal/sales"
)

// TokenSource supplies the bearer token attached to every request. An empty
// token means "not signed in" and is simply omitted.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Client wraps interactions with the remote API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
}

// NewClient constructs a new client against baseURL.
func NewClient(baseURL string, tokens TokenSource) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		tokens: tokens,
	}
}

// apiEnvelope is the standard response wrapper the API uses.
type apiEnvelope[T any] struct {
	Results T      `json:"results"`
	Message string `json:"message,omitempty"`
}

// apiErrorBody is the body of a 4xx response. A 422 carries per-field
// validation errors keyed the same way the form keys them.
type apiErrorBody struct {
	Message string              `json:"message,omitempty"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("upstream: encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("upstream: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return fmt.Errorf("upstream: read token: %w", err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("upstream: %s %s: %w", method, path, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= 400 {
		return c.mapError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("upstream: decode response: %w", err)
	}
	return nil
}

func (c *Client) mapError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return httpx.ErrUnauthorized
	case http.StatusNotFound:
		return httpx.ErrNotFound
	case http.StatusUnprocessableEntity:
		var body apiErrorBody
		if err := json.Unmarshal(raw, &body); err == nil && len(body.Errors) > 0 {
			return &sales.Rejection{FieldErrors: body.Errors}
		}
		return fmt.Errorf("%w: status 422", httpx.ErrValidation)
	}
	return fmt.Errorf("upstream: %s returned status %d", resp.Request.URL.Path, resp.StatusCode)
}
