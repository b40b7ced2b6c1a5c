package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
)

// Permission is one named capability of the signed-in user.
type Permission struct {
	Name string `json:"name"`
}

// User is the remote profile of the signed-in cashier.
type User struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Email       string       `json:"email"`
	Permissions []Permission `json:"permissions"`
}

// Login exchanges credentials for a bearer token. The API expects a
// multipart form rather than JSON on this one endpoint.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if err := writer.WriteField("email", email); err != nil {
		return "", fmt.Errorf("upstream: write login form: %w", err)
	}
	if err := writer.WriteField("password", password); err != nil {
		return "", fmt.Errorf("upstream: write login form: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("upstream: close login form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/login", body)
	if err != nil {
		return "", fmt.Errorf("upstream: build login request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("upstream: login: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= 400 {
		return "", c.mapError(resp)
	}

	var payload struct {
		Token string `json:"token"`
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("upstream: read login response: %w", err)
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return "", fmt.Errorf("upstream: decode login response: %w", err)
	}
	if payload.Token == "" {
		return "", fmt.Errorf("upstream: login response carried no token")
	}
	return payload.Token, nil
}

// Logout invalidates the server-side token. A failure here is not fatal;
// the terminal clears its local token regardless.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/logout", nil, nil)
}

// Profile fetches the signed-in user, validating the stored token.
func (c *Client) Profile(ctx context.Context) (User, error) {
	var envelope apiEnvelope[User]
	if err := c.do(ctx, http.MethodGet, "/profile", nil, &envelope); err != nil {
		return User{}, err
	}
	return envelope.Results, nil
}
