// Package upstream talks to the two external HTTP boundaries the gateway
// consumes: the Upload Service and the Chat Service. Both go through one
// shared client so timeout policy lives in a single place.
package upstream

import (
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultTimeout bounds every upstream request unless configured otherwise.
// A zero timeout disables the bound entirely.
const DefaultTimeout = 60 * time.Second

// Client is the shared transport for all upstream calls.
type Client struct {
	http *http.Client
}

// NewClient builds the shared transport. timeout <= 0 leaves requests
// unbounded.
func NewClient(timeout time.Duration) *Client {
	hc := &http.Client{}
	if timeout > 0 {
		hc.Timeout = timeout
	}
	return &Client{http: hc}
}

// StatusError reports a non-2xx upstream response.
type StatusError struct {
	Status int
	Body   []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream returned status %d", e.Status)
}

// do issues the request and maps the outcome: transport errors come back as
// is, non-2xx statuses become *StatusError, and a 2xx yields the raw body.
func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upstream request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read upstream response: %w", err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &StatusError{Status: resp.StatusCode, Body: body}
	}
	return body, nil
}
