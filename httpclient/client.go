// Package httpclient wraps net/http with the fixed request pipeline used for
// every call to the trip-planner backend: attachAuth (request phase), the
// base call with timing instrumentation and transient retries, and
// handleAuthFailureAndRetry (response phase). External third-party endpoints
// go through the same base call but never through the auth stages.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// unauthorizedSignal is the exact backend message that distinguishes an
// invalid/expired access token from any other 401. Only this signal routes a
// response into the refresh stage.
const unauthorizedSignal = "Unauthorized"

const defaultRetries = 3

// SessionHooks is the narrow view of the session controller the pipeline
// needs: the current token for attachAuth, and the refresh path for
// handleAuthFailureAndRetry. The pipeline only reads the token; all token
// mutation happens behind HandleAuthFailure.
type SessionHooks interface {
	// Token returns the current access token, or "" for an anonymous request.
	Token() string
	// HandleAuthFailure performs (or joins) a token refresh after a request
	// bearing staleToken failed with the unauthorized signal. It returns the
	// token to replay with.
	HandleAuthFailure(ctx context.Context, staleToken string) (string, error)
}

// Client is the HTTP client core for both internal backend calls and
// external third-party calls.
type Client struct {
	baseURL string
	http    *http.Client
	logger  zerolog.Logger
	retries int
	session SessionHooks
}

// New creates a Client for the backend at baseURL. The session hooks are
// attached separately (AttachSession) because the session controller itself
// performs its network calls through this client.
func New(baseURL string, options ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
		logger:  zerolog.Nop(),
		retries: defaultRetries,
	}

	for _, opt := range options {
		opt(c)
	}

	return c
}

// AttachSession wires the session controller into the auth stages of the
// pipeline. Until it is called every request goes out anonymous.
func (c *Client) AttachSession(session SessionHooks) {
	c.session = session
}

// Get performs a GET against an internal backend path.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, c.baseURL+path, query, nil, out, true)
}

// Post performs a POST against an internal backend path.
func (c *Client) Post(ctx context.Context, path string, body any, out any) error {
	return c.do(ctx, http.MethodPost, c.baseURL+path, nil, body, out, true)
}

// Put performs a PUT against an internal backend path.
func (c *Client) Put(ctx context.Context, path string, body any, out any) error {
	return c.do(ctx, http.MethodPut, c.baseURL+path, nil, body, out, true)
}

// Patch performs a PATCH against an internal backend path.
func (c *Client) Patch(ctx context.Context, path string, body any, out any) error {
	return c.do(ctx, http.MethodPatch, c.baseURL+path, nil, body, out, true)
}

// Delete performs a DELETE against an internal backend path. Some backend
// endpoints expect a body on DELETE (account deletion), so one is allowed.
func (c *Client) Delete(ctx context.Context, path string, body any, out any) error {
	return c.do(ctx, http.MethodDelete, c.baseURL+path, nil, body, out, true)
}

// DownloadBlob fetches raw bytes (PDF export) from an internal backend path,
// going through the full auth pipeline.
func (c *Client) DownloadBlob(ctx context.Context, path string) ([]byte, error) {
	var blob []byte
	if err := c.do(ctx, http.MethodGet, c.baseURL+path, nil, nil, &blob, true); err != nil {
		return nil, err
	}
	return blob, nil
}

// ExternalGet performs a GET against an absolute third-party URL. The bearer
// token is never attached to external requests.
func (c *Client) ExternalGet(ctx context.Context, rawURL string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, rawURL, query, nil, out, false)
}

// ExternalPost performs a POST against an absolute third-party URL.
func (c *Client) ExternalPost(ctx context.Context, rawURL string, body any, out any) error {
	return c.do(ctx, http.MethodPost, rawURL, nil, body, out, false)
}

// response is the raw outcome of the base call, before normalization.
type response struct {
	statusCode int
	body       []byte
}

// do runs the request pipeline: marshal, attachAuth, base call,
// handleAuthFailureAndRetry, decode. Every failure resolves to an *APIError.
func (c *Client) do(ctx context.Context, method, rawURL string, query url.Values, body, out any, internal bool) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "[Client.do] marshal request body")
		}
	}

	if len(query) > 0 {
		separator := "?"
		if strings.Contains(rawURL, "?") {
			separator = "&"
		}
		rawURL += separator + query.Encode()
	}

	// attachAuth: read the current token from session state, never from
	// storage. An empty token is a legitimate anonymous request.
	bearer := ""
	if internal && c.session != nil {
		bearer = c.session.Token()
	}

	res, err := c.send(ctx, method, rawURL, payload, bearer)
	if err != nil {
		return err
	}
	if res.statusCode < http.StatusBadRequest {
		return decode(res.body, out)
	}

	apiErr := newAPIError(res.statusCode, res.body)

	// handleAuthFailureAndRetry: a single transparent replay, and only for
	// the exact unauthorized signal on an internal request.
	if internal && c.session != nil && !authRetryDisabled(ctx) &&
		apiErr.StatusCode == http.StatusUnauthorized && apiErr.Message() == unauthorizedSignal {
		freshToken, refreshErr := c.session.HandleAuthFailure(ctx, bearer)
		if refreshErr != nil {
			// Refresh failed; the session controller has already escalated
			// to logout. The original failure propagates to the caller.
			return apiErr
		}

		replay, err := c.send(ctx, method, rawURL, payload, freshToken)
		if err != nil {
			return err
		}
		if replay.statusCode < http.StatusBadRequest {
			return decode(replay.body, out)
		}
		// At most one retry per original request: a second unauthorized
		// signal here is surfaced, never refreshed again.
		return newAPIError(replay.statusCode, replay.body)
	}

	return apiErr
}

// send performs the base call: builds the request, applies headers, retries
// network-level failures up to the configured attempt count, and logs timing
// for every attempt. HTTP error statuses are not retried here; they belong
// to the response stages above.
func (c *Client) send(ctx context.Context, method, rawURL string, payload []byte, bearer string) (*response, error) {
	requestID := uuid.New().String()

	var lastErr error
	for attempt := 0; attempt < max(1, c.retries); attempt++ {
		req, err := http.NewRequestWithContext(ctx, method, rawURL, bytes.NewReader(payload))
		if err != nil {
			return nil, transportError(errors.Wrap(err, "[Client.send] build request"))
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Request-ID", requestID)
		if bearer != "" {
			req.Header.Set("Authorization", "Bearer "+bearer)
		}

		start := time.Now()
		resp, err := c.http.Do(req)
		duration := time.Since(start)

		if err != nil {
			lastErr = err
			c.logger.Debug().
				Str("request_id", requestID).
				Str("method", method).
				Str("url", rawURL).
				Dur("duration", duration).
				Int("attempt", attempt+1).
				Err(err).
				Msg("request failed")
			// A cancelled context fails every further attempt the same
			// way; stop retrying immediately.
			if ctx.Err() != nil {
				break
			}
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()

		c.logger.Debug().
			Str("request_id", requestID).
			Str("method", method).
			Str("url", rawURL).
			Int("status", resp.StatusCode).
			Dur("duration", duration).
			Msg("request completed")

		if readErr != nil {
			lastErr = readErr
			continue
		}

		return &response{statusCode: resp.StatusCode, body: body}, nil
	}

	return nil, transportError(lastErr)
}

func decode(body []byte, out any) error {
	if out == nil {
		return nil
	}
	if blob, ok := out.(*[]byte); ok {
		*blob = body
		return nil
	}
	if len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return errors.Wrap(err, "[Client.do] decode response body")
	}
	return nil
}
