// Package heygen talks to the HeyGen streaming-avatar REST API.
package heygen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/dmitrijs2005/aiinterview/internal/common"
	"github.com/dmitrijs2005/aiinterview/internal/netx"
)

const (
	vendorName = "Heygen"

	DefaultAvatarID = "ad8d7dd2"
	DefaultVoiceID  = "11labs.sarah"

	apiKeyHeader   = "X-Api-Key"
	startPath      = "/v1/talking-photo/streaming/start"
	maxErrorBody   = 64 << 10
	defaultContent = "application/octet-stream"
)

// AvatarConfig selects the avatar and voice for a session. Empty fields fall
// back to the defaults.
type AvatarConfig struct {
	AvatarID string `json:"avatar_id"`
	VoiceID  string `json:"voice_id"`
}

type startRequest struct {
	Text         string `json:"text"`
	AvatarID     string `json:"avatar_id"`
	VoiceID      string `json:"voice_id"`
	OutputFormat string `json:"output_format"`
	Streaming    bool   `json:"streaming"`
}

// Client is safe for concurrent use. The API key is passed per call since
// it may change at runtime.
type Client struct {
	baseURL    string
	httpClient *http.Client
	proxyHosts []string
}

// New returns a client for baseURL. Proxied stream URLs must point at the
// base URL host or at one of proxyHosts (subdomains included).
func New(baseURL string, httpClient *http.Client, proxyHosts []string) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	baseURL = strings.TrimRight(baseURL, "/")

	hosts := append([]string(nil), proxyHosts...)
	if u, err := url.Parse(baseURL); err == nil && u.Hostname() != "" {
		hosts = append(hosts, u.Hostname())
	}
	return &Client{baseURL: baseURL, httpClient: httpClient, proxyHosts: hosts}
}

// BaseURL returns the API root without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// StartStreaming opens a talking-photo streaming session and returns the
// vendor's JSON response unchanged.
func (c *Client) StartStreaming(ctx context.Context, apiKey, text string, cfg AvatarConfig) (json.RawMessage, error) {
	if cfg.AvatarID == "" {
		cfg.AvatarID = DefaultAvatarID
	}
	if cfg.VoiceID == "" {
		cfg.VoiceID = DefaultVoiceID
	}

	body, err := json.Marshal(startRequest{
		Text:         text,
		AvatarID:     cfg.AvatarID,
		VoiceID:      cfg.VoiceID,
		OutputFormat: "mp4",
		Streaming:    true,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+startPath, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(apiKeyHeader, apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &common.VendorError{Vendor: vendorName, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError(resp)
	}

	var out json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &common.VendorError{Vendor: vendorName, Status: resp.StatusCode, Message: fmt.Sprintf("invalid response: %v", err)}
	}
	return out, nil
}

// Stream is an open upstream media response. The caller must Close it.
type Stream struct {
	Body        io.ReadCloser
	ContentType string
	Status      int
}

func (s *Stream) Close() error {
	return s.Body.Close()
}

// OpenStream fetches rawURL with the vendor key attached. URLs outside the
// allowed hosts are rejected before any request is made so the key is never
// sent elsewhere.
func (c *Client) OpenStream(ctx context.Context, apiKey, rawURL string) (*Stream, error) {
	u, err := url.Parse(rawURL)
	if err != nil || !netx.HostAllowed(u, c.proxyHosts) {
		return nil, common.NewValidationError("Streaming URL host is not allowed")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set(apiKeyHeader, apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &common.VendorError{Vendor: vendorName, Message: err.Error()}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, statusError(resp)
	}

	ct := resp.Header.Get("Content-Type")
	if ct == "" {
		ct = defaultContent
	}
	return &Stream{Body: resp.Body, ContentType: ct, Status: resp.StatusCode}, nil
}

func statusError(resp *http.Response) *common.VendorError {
	ve := &common.VendorError{
		Vendor:  vendorName,
		Status:  resp.StatusCode,
		Message: fmt.Sprintf("%d %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var details any
	if len(raw) > 0 && json.Unmarshal(raw, &details) == nil {
		ve.Details = details
	}
	return ve
}
