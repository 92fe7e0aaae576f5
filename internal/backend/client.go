// Package backend is the gateway to the remote order-management service.
//
// Every operation of the two front ends that touches authoritative data goes
// through this client: menu snapshots, order lifecycle calls, auth, and
// merchant menu management. The client is stateless and reentrant; bearer
// tokens are passed per call, never stored.
package backend

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-faster/jx"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// DefaultTimeout bounds each backend call. A call that exceeds it fails with
// UnavailableError rather than hanging the inbound request.
const DefaultTimeout = 5 * time.Second

// maxErrorBody caps how much of an unstructured error body is echoed back to
// the user in a RejectedError message.
const maxErrorBody = 200

// Client talks to the backend over its HTTP contract.
type Client struct {
	base string
	http *http.Client
}

// NewClient creates a Client for the backend at baseURL. A non-positive
// timeout falls back to DefaultTimeout. Outbound requests are traced via
// otelhttp.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// do performs one backend call and returns the raw response body.
// A bearer token is attached when non-empty. Transport failures map to
// UnavailableError, non-2xx responses to RejectedError.
func (c *Client) do(ctx context.Context, method, path, token string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return nil, &UnavailableError{Err: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &UnavailableError{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &UnavailableError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &RejectedError{
			StatusCode: resp.StatusCode,
			Message:    errorMessage(resp.StatusCode, data),
		}
	}
	return data, nil
}

// errorMessage extracts the backend's structured error message from a
// non-2xx body. The backend reports errors as {"error": "..."}; anything
// else is summarized as status plus a truncated raw body.
func errorMessage(status int, body []byte) string {
	d := jx.DecodeBytes(body)
	var msg string
	err := d.Obj(func(d *jx.Decoder, key string) error {
		if key != "error" {
			return d.Skip()
		}
		s, err := d.Str()
		if err != nil {
			return err
		}
		msg = s
		return nil
	})
	if err == nil && msg != "" {
		return msg
	}

	raw := strings.TrimSpace(string(body))
	if len(raw) > maxErrorBody {
		cut := maxErrorBody
		for cut > 0 && !utf8.RuneStart(raw[cut]) {
			cut--
		}
		raw = raw[:cut]
	}
	if raw == "" {
		return http.StatusText(status)
	}
	return "HTTP " + strconv.Itoa(status) + ": " + raw
}
