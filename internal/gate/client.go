// Package gate sends open-gate requests and classifies how they settle.
package gate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultEndpoint is the backend route that opens the gate.
	DefaultEndpoint = "https://backend-ri6qxvjyda-uw.a.run.app/api/open"

	// DefaultTimeout bounds each attempt, end to end.
	DefaultTimeout = 2000 * time.Millisecond

	// maxBodySnippet caps how much of a failed response body is kept.
	maxBodySnippet = 512
)

// Client issues open requests against a single endpoint.
type Client struct {
	endpoint   string
	request    Request
	timeout    time.Duration
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client. Its own Timeout is
// left alone; the per-attempt deadline still applies.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTransport sets the RoundTripper used for requests.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) { c.httpClient = &http.Client{Transport: rt} }
}

// NewClient returns a Client that POSTs OpenRequest to endpoint. An empty
// endpoint means DefaultEndpoint.
func NewClient(endpoint string, opts ...Option) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	c := &Client{
		endpoint:   endpoint,
		request:    OpenRequest(),
		timeout:    DefaultTimeout,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint returns the URL requests are sent to.
func (c *Client) Endpoint() string { return c.endpoint }

// Open performs one attempt and reports how it settled. It never returns an
// error: every failure is folded into the Outcome. No retry is made.
func (c *Client) Open(parent context.Context) Outcome {
	ctx, cancel := context.WithTimeout(parent, c.timeout)
	defer cancel()

	body, err := json.Marshal(c.request)
	if err != nil {
		return TransportError(fmt.Sprintf("marshaling request body: %v", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return TransportError(fmt.Sprintf("creating request: %v", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return TransportError(c.transportMessage(parent, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return Success(resp.StatusCode)
	}

	// A body that cannot be read in time still leaves a usable diagnosis.
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodySnippet))
	return HTTPError(resp.StatusCode, statusText(resp), string(snippet))
}

// transportMessage extracts the text of the underlying failure, dropping the
// `Post "<url>": ` prefix added by *url.Error. The fixed timeout is named only
// when the per-attempt deadline fired, not the caller's.
func (c *Client) transportMessage(parent context.Context, err error) string {
	if errors.Is(err, context.DeadlineExceeded) && parent.Err() == nil {
		return fmt.Sprintf("aborted after %s", c.timeout)
	}
	var uerr *url.Error
	if errors.As(err, &uerr) && uerr.Err != nil {
		return uerr.Err.Error()
	}
	return err.Error()
}

func statusText(resp *http.Response) string {
	if text, ok := strings.CutPrefix(resp.Status, strconv.Itoa(resp.StatusCode)+" "); ok {
		return text
	}
	return http.StatusText(resp.StatusCode)
}
