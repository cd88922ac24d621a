// SPDX-License-Identifier: MPL-2.0

// Package discord fetches voice channel occupancy from per-guild status
// endpoints.
package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"syncbin-cli/internal/config"

	"golang.org/x/sync/errgroup"
)

const (
	// DefaultTimeout bounds each guild request.
	DefaultTimeout = 30050 * time.Millisecond

	maxJSONResponseBytes = 10 << 20
)

type (
	// Guild is the JSON document served at a guild's apiUrl.
	Guild struct {
		Channels []Channel `json:"channels"`
	}

	// Channel is one voice channel.
	Channel struct {
		Name      string     `json:"name"`
		Snowflake FlexString `json:"snowflake"`
		Members   []Member   `json:"members"`
	}

	// Member is a user connected to a channel.
	Member struct {
		Username      string     `json:"username"`
		Discriminator FlexString `json:"discriminator"`
	}

	// FlexString accepts a JSON string or number.
	FlexString string

	// StatusError reports a non-2xx response.
	StatusError struct {
		URL    string
		Status string
	}

	// Result pairs a configured guild with its state or error.
	Result struct {
		Guild config.Guild
		State *Guild
		Err   error
	}

	// Client fetches guild states.
	Client struct {
		httpClient *http.Client
		userAgent  string
		timeout    time.Duration
	}

	// ClientOption configures a Client.
	ClientOption func(*Client)
)

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s for url: %s", e.Status, e.URL)
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *FlexString) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = FlexString(str)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*s = FlexString(n.String())
	return nil
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(d *Client) {
		d.httpClient = c
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) ClientOption {
	return func(d *Client) {
		d.userAgent = ua
	}
}

// WithTimeout bounds each guild request.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(d *Client) {
		d.timeout = timeout
	}
}

// NewClient creates a Client with http.DefaultClient and DefaultTimeout.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: http.DefaultClient,
		userAgent:  "syncbin/dev",
		timeout:    DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchGuild fetches one guild, with basic auth when configured.
func (c *Client) FetchGuild(ctx context.Context, g config.Guild) (*Guild, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.APIURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if g.HasAuth() {
		req.SetBasicAuth(g.Username, g.Password)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }() // read-only response body

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{URL: g.APIURL, Status: strconv.Itoa(resp.StatusCode) + " " + http.StatusText(resp.StatusCode)}
	}

	var guild Guild
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxJSONResponseBytes)).Decode(&guild); err != nil {
		return nil, fmt.Errorf("decoding guild state: %w", err)
	}
	return &guild, nil
}

// FetchAll fetches every guild concurrently. Results keep the order of
// guilds; a failing guild only sets its own Err.
func (c *Client) FetchAll(ctx context.Context, guilds []config.Guild) []Result {
	results := make([]Result, len(guilds))
	var g errgroup.Group
	for i, guild := range guilds {
		g.Go(func() error {
			state, err := c.FetchGuild(ctx, guild)
			results[i] = Result{Guild: guild, State: state, Err: err}
			return nil
		})
	}
	_ = g.Wait() // per-guild errors live in results
	return results
}
