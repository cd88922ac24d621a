// SPDX-License-Identifier: MPL-2.0

// Package twitch lists live followed streams and keeps the bitbar plugin's
// cache of deferrals and hidden streams.
package twitch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultBaseURL       = "https://api.twitch.tv/kraken"
	maxJSONResponseBytes = 10 << 20
)

type (
	// Streams is the followed-streams response.
	Streams struct {
		Streams []Stream `json:"streams"`
	}

	// Stream is one live broadcast.
	Stream struct {
		Game       string    `json:"game"`
		Viewers    int       `json:"viewers"`
		CreatedAt  time.Time `json:"created_at"`
		IsPlaylist bool      `json:"is_playlist"`
		StreamType string    `json:"stream_type"`
		Channel    Channel   `json:"channel"`
	}

	// Channel is the broadcaster.
	Channel struct {
		ID          int64  `json:"_id"`
		Name        string `json:"name"`
		DisplayName string `json:"display_name"`
		Status      string `json:"status"`
		URL         string `json:"url"`
		Game        string `json:"game"`
	}

	// StatusError reports a non-2xx response.
	StatusError struct {
		Code   int
		Status string
	}

	// Client queries the Twitch API.
	Client struct {
		httpClient *http.Client
		baseURL    string
		token      string
		userAgent  string
	}

	// ClientOption configures a Client.
	ClientOption func(*Client)
)

func (e *StatusError) Error() string {
	return "twitch API: " + e.Status
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(t *Client) {
		t.httpClient = c
	}
}

// WithBaseURL overrides the API base URL, primarily for test servers.
func WithBaseURL(base string) ClientOption {
	return func(t *Client) {
		t.baseURL = strings.TrimRight(base, "/")
	}
}

// WithToken sets the OAuth token.
func WithToken(token string) ClientOption {
	return func(t *Client) {
		t.token = token
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) ClientOption {
	return func(t *Client) {
		t.userAgent = ua
	}
}

// NewClient creates a Client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: http.DefaultClient,
		baseURL:    defaultBaseURL,
		userAgent:  "syncbin/dev",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FollowedLive lists live streams of followed channels.
func (c *Client) FollowedLive(ctx context.Context) (*Streams, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/streams/followed?stream_type=live", http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.twitchtv.v5+json")
	req.Header.Set("User-Agent", c.userAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "OAuth "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }() // read-only response body

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode, Status: resp.Status}
	}

	var streams Streams
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxJSONResponseBytes)).Decode(&streams); err != nil {
		return nil, fmt.Errorf("decoding streams: %w", err)
	}
	return &streams, nil
}
