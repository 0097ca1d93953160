package httpclient

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Option defines a function type to modify the Client instance.
type Option func(*Client)

// WithHTTPClient swaps the underlying http.Client (primarily for testing
// with a fake transport).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the per-request timeout on the underlying http.Client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.http.Timeout = timeout
		}
	}
}

// WithRetries sets how many attempts are made before a network-level
// failure is surfaced. Values below one are treated as a single attempt.
func WithRetries(retries int) Option {
	return func(c *Client) {
		if retries >= 1 {
			c.retries = retries
		}
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}
