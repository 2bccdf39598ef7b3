// Package keyctl implements the operator CLI that pushes vendor API keys to a
// running interview backend and reports its status.
package keyctl

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

const requestTimeout = 30 * time.Second

// Client calls the backend's key management endpoints.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: requestTimeout}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), httpClient: httpClient}
}

// SetKeyResult is the server's answer to a key update.
type SetKeyResult struct {
	Message  string `json:"message"`
	Verified *bool  `json:"verified"`
	Warning  string `json:"warning"`
}

type Status struct {
	Status           string `json:"status"`
	Message          string `json:"message"`
	APIKeyConfigured bool   `json:"api_key_configured"`
	DatabaseUp       bool   `json:"database_connected"`
	AvatarConfigured bool   `json:"-"`
}

// ServerError is a non-2xx reply from the backend.
type ServerError struct {
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

func (c *Client) SetOpenAIKey(ctx context.Context, key string) (*SetKeyResult, error) {
	var out SetKeyResult
	if err := c.do(ctx, http.MethodPost, "/api/set-api-key", map[string]string{"api_key": key}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SetHeygenKey(ctx context.Context, key string) (*SetKeyResult, error) {
	var out SetKeyResult
	if err := c.do(ctx, http.MethodPost, "/api/avatar/set-key", map[string]string{"api_key": key}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Status(ctx context.Context) (*Status, error) {
	var st Status
	if err := c.do(ctx, http.MethodGet, "/api/health", nil, &st); err != nil {
		return nil, err
	}
	var avatar struct {
		Configured bool `json:"configured"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/avatar/config", nil, &avatar); err != nil {
		return nil, err
	}
	st.AvatarConfigured = avatar.Configured
	return &st, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&e)
		if e.Error == "" {
			e.Error = http.StatusText(resp.StatusCode)
		}
		return &ServerError{Status: resp.StatusCode, Message: e.Error}
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
