// Package webhook posts meeting transcripts to the receiving HTTP endpoint.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 10 * time.Second

// maxDiagnosticBody caps how much of a failure response body is retained
// for logging.
const maxDiagnosticBody = 2048

// Payload is the JSON body sent to the webhook endpoint.
type Payload struct {
	MeetingID  string   `json:"meeting_id"`
	Title      string   `json:"title"`
	Transcript string   `json:"transcript"`
	Attendees  []string `json:"attendees"`
	Stage      bool     `json:"stage"`
}

// NewPayload builds the delivery payload for a transcript file. The meeting
// ID and title are the file's base name without extension; attendees always
// marshal as an empty array, never null.
func NewPayload(path, transcript string, stage bool) Payload {
	base := filepath.Base(path)
	meetingID := strings.TrimSuffix(base, filepath.Ext(base))
	return Payload{
		MeetingID:  meetingID,
		Title:      meetingID,
		Transcript: transcript,
		Attendees:  []string{},
		Stage:      stage,
	}
}

// StatusError reports a response outside the [200,300) success range.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("webhook returned status %d", e.Code)
}

// Deliverer sends a transcript payload to the webhook endpoint.
type Deliverer interface {
	Deliver(ctx context.Context, p Payload) error
}

// Client implements Deliverer against a fixed webhook URL.
type Client struct {
	url        string
	httpClient *http.Client
}

// Option configures the Client.
type Option func(*Client)

// WithTimeout sets the HTTP request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// NewClient creates a webhook client for the given endpoint URL.
func NewClient(url string, opts ...Option) *Client {
	c := &Client{
		url: url,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// URL returns the configured endpoint URL.
func (c *Client) URL() string {
	return c.url
}

// Deliver posts the payload as JSON. Any status in [200,300) is success.
// Transport failures are returned as-is; other statuses produce a
// *StatusError carrying a body snippet for diagnosis.
func (c *Client) Deliver(ctx context.Context, p Payload) error {
	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxDiagnosticBody))
	return &StatusError{
		Code: resp.StatusCode,
		Body: string(snippet),
	}
}
