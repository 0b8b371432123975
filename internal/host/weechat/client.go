// ABOUTME: WeeChat relay API client implementing the bufpick Host interface
// ABOUTME: Lists buffers via GET /api/buffers and runs commands via POST /api/input

package weechat

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/2389/bufpick/internal/buffers"
	"github.com/2389/bufpick/internal/host"
)

// coreBuffer is where commands without a buffer context are executed.
const coreBuffer = "core.weechat"

// apiBuffer is the subset of a buffer object returned by GET /api/buffers.
type apiBuffer struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"short_name"`
	Number    int    `json:"number"`
	Type      string `json:"type"`
	Hidden    bool   `json:"hidden"`
}

// inputRequest is the JSON body for POST /api/input.
type inputRequest struct {
	BufferName string `json:"buffer_name"`
	Command    string `json:"command"`
}

// errorResponse is the JSON error body returned by the relay.
type errorResponse struct {
	Error string `json:"error"`
}

// Client talks to a WeeChat relay of type "api".
type Client struct {
	baseURL  string
	password string
	client   *http.Client
	logger   *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithPassword sets the relay password (relay.network.password).
func WithPassword(password string) Option {
	return func(c *Client) {
		c.password = password
	}
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.client = hc
	}
}

// WithInsecureTLS skips certificate verification, for relays using a
// self-signed certificate.
func WithInsecureTLS() Option {
	return func(c *Client) {
		c.client = &http.Client{
			Timeout: c.client.Timeout,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, //nolint:gosec // opt-in for self-signed relays
			},
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a relay client for baseURL, e.g. "http://localhost:9000".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("component", "weechat")
	return c
}

var _ host.Host = (*Client)(nil)
var _ host.Notifier = (*Client)(nil)

// ListBuffers returns all buffers in WeeChat's numbering order.
func (c *Client) ListBuffers(ctx context.Context) (buffers.List, error) {
	var resp []apiBuffer
	if err := c.do(ctx, http.MethodGet, "/api/buffers?lines=0&nicks=false", nil, &resp); err != nil {
		return nil, fmt.Errorf("listing buffers: %w", err)
	}

	list := make(buffers.List, 0, len(resp))
	for _, b := range resp {
		list = append(list, buffers.Entry{Number: b.Number, Name: b.Name})
	}
	c.logger.Debug("relay buffers fetched", "count", len(list))
	return list, nil
}

// CurrentBuffer always fails: the relay API has no notion of the buffer
// displayed in the user's window. Callers pass the current buffer explicitly.
func (c *Client) CurrentBuffer(ctx context.Context) (string, error) {
	return "", host.ErrNoCurrentBuffer
}

// SwitchBuffer runs "/buffer <name>".
func (c *Client) SwitchBuffer(ctx context.Context, name string) error {
	if name == "" {
		return fmt.Errorf("switching buffer: %w", host.ErrUnknownBuffer)
	}
	return c.Input(ctx, coreBuffer, "/buffer "+name)
}

// Notify prints message in the core buffer.
func (c *Client) Notify(ctx context.Context, message string) error {
	return c.Input(ctx, coreBuffer, "/print -core bufpick: "+message)
}

// Input sends text or a command to a buffer.
func (c *Client) Input(ctx context.Context, bufferName, command string) error {
	req := inputRequest{BufferName: bufferName, Command: command}
	if err := c.do(ctx, http.MethodPost, "/api/input", req, nil); err != nil {
		return fmt.Errorf("sending input to %s: %w", bufferName, err)
	}
	return nil
}

// do performs one API request, decoding a JSON response into out when non-nil.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.password != "" {
		req.SetBasicAuth("plain", c.password)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.handleErrorResponse(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// handleErrorResponse extracts the error message from non-2xx responses.
func (c *Client) handleErrorResponse(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var errResp errorResponse
	if json.Unmarshal(body, &errResp) == nil && errResp.Error != "" {
		return fmt.Errorf("relay error (%d): %s", resp.StatusCode, errResp.Error)
	}
	return fmt.Errorf("relay returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
}
