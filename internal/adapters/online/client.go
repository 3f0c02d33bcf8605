package online

import (
	"context"
	"fmt"
	"io"
	"missing-maps-service/internal/platform/obs"
	"net/http"
	"time"
)

const (
	maxErrorBody    = 4 << 10
	maxResponseBody = 32 << 20
)

// Client performs plain GET requests against the online routing service.
// Each call is a single attempt. Safe for concurrent use.
type Client struct {
	session   *http.Client
	userAgent string
}

type ClientOption func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.session = hc }
}

func WithUserAgent(ua string) ClientOption {
	return func(c *Client) { c.userAgent = ua }
}

// NewClient returns a Client whose requests time out after timeout.
// A zero timeout leaves the transport default in place.
func NewClient(timeout time.Duration, opts ...ClientOption) *Client {
	c := &Client{
		session:   &http.Client{Timeout: timeout},
		userAgent: "missing-maps-service",
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// MakeRequest fetches url and returns the response body. Status codes of 400
// and above are returned as errors carrying the code and body.
func (c *Client) MakeRequest(ctx context.Context, url string) (_ string, err error) {
	defer obs.Time(ctx, "online.MakeRequest")(&err)

	req, err := c.newRequest(ctx, http.MethodGet, url)
	if err != nil {
		return "", fmt.Errorf("online request: %w", err)
	}

	resp, err := c.do(req)
	if err != nil {
		return "", fmt.Errorf("online request: %w", err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return "", fmt.Errorf("online request: read body: %w", err)
	}

	return string(b), nil
}
