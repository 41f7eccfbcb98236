package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// RequestIDHeader carries the per-request identifier sent to the backend.
const RequestIDHeader = "X-Request-ID"

// RequestOptions describes a single call. Body is JSON encoded when non-nil;
// Query values are appended to the target URL; Headers are merged over the
// default JSON content type.
type RequestOptions struct {
	Body    any
	Query   url.Values
	Headers map[string]string
}

// Event is reported to observers once per request.
type Event struct {
	Method    string
	Path      string
	RequestID string
	Status    int
	Outcome   Outcome
	Duration  time.Duration
	Err       error
}

// Observer receives request events (logging, metrics).
type Observer interface {
	ObserveRequest(Event)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(Event)

// ObserveRequest implements Observer.
func (f ObserverFunc) ObserveRequest(evt Event) {
	f(evt)
}

// Client issues JSON requests against a backend base URL.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	headers   map[string]string
	observers []Observer
	now       func() time.Time
	newID     func() string
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.http = client
		}
	}
}

// WithTimeout applies a whole-request timeout. Zero keeps requests unbounded.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout <= 0 {
			return
		}
		clone := *c.http
		clone.Timeout = timeout
		c.http = &clone
	}
}

// WithHeader adds a default header sent on every request.
func WithHeader(key, value string) Option {
	return func(c *Client) {
		key = strings.TrimSpace(key)
		if key == "" {
			return
		}
		c.headers[key] = value
	}
}

// WithObserver registers an observer for request events.
func WithObserver(observer Observer) Option {
	return func(c *Client) {
		if observer != nil {
			c.observers = append(c.observers, observer)
		}
	}
}

// WithRequestIDGenerator overrides the request id source.
func WithRequestIDGenerator(fn func() string) Option {
	return func(c *Client) {
		if fn != nil {
			c.newID = fn
		}
	}
}

// NewClient constructs a Client rooted at baseURL.
func NewClient(baseURL string, options ...Option) (*Client, error) {
	trimmed := strings.TrimSpace(baseURL)
	if trimmed == "" {
		return nil, errors.New("bridge: base URL is required")
	}
	parsed, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("bridge: parse base URL: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("bridge: base URL %q must be absolute", baseURL)
	}

	c := &Client{
		baseURL: parsed,
		http:    &http.Client{},
		headers: map[string]string{"Content-Type": "application/json"},
		now:     time.Now,
		newID:   func() string { return uuid.NewString() },
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(c)
	}
	return c, nil
}

// BaseURL returns the backend root the client resolves paths against.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// FetchJSON issues one request and always returns a Result. Network failures
// yield OutcomeTransportError with Err wrapping ErrTransport; every response,
// whatever its status, yields an envelope.
func (c *Client) FetchJSON(ctx context.Context, method, target string, opts RequestOptions) Result {
	requestID := c.newID()
	started := c.now()

	result := c.do(ctx, method, target, opts, requestID)
	result.RequestID = requestID

	evt := Event{
		Method:    method,
		Path:      target,
		RequestID: requestID,
		Status:    result.Envelope.Status,
		Outcome:   result.Outcome,
		Duration:  c.now().Sub(started),
		Err:       result.Err,
	}
	for _, observer := range c.observers {
		observer.ObserveRequest(evt)
	}
	return result
}

func (c *Client) do(ctx context.Context, method, target string, opts RequestOptions, requestID string) Result {
	endpoint, err := c.resolve(target, opts.Query)
	if err != nil {
		return Result{Outcome: OutcomeTransportError, Err: fmt.Errorf("%w: %v", ErrTransport, err)}
	}

	var body io.Reader
	if opts.Body != nil {
		payload, err := json.Marshal(opts.Body)
		if err != nil {
			return Result{Outcome: OutcomeTransportError, Err: fmt.Errorf("%w: encode body: %v", ErrTransport, err)}
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return Result{Outcome: OutcomeTransportError, Err: fmt.Errorf("%w: %v", ErrTransport, err)}
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	for k, v := range opts.Headers {
		req.Header.Set(k, v)
	}
	req.Header.Set(RequestIDHeader, requestID)

	resp, err := c.http.Do(req)
	if err != nil {
		return Result{Outcome: OutcomeTransportError, Err: fmt.Errorf("%w: %v", ErrTransport, err)}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{
			Outcome:  OutcomeTransportError,
			Envelope: Envelope{Status: resp.StatusCode},
			Err:      fmt.Errorf("%w: read body: %v", ErrTransport, err),
		}
	}

	return Result{
		Outcome:  outcomeForStatus(resp.StatusCode),
		Envelope: Envelope{Status: resp.StatusCode, Data: decodeBody(raw)},
		Raw:      raw,
	}
}

func (c *Client) resolve(target string, query url.Values) (string, error) {
	ref, err := url.Parse(target)
	if err != nil {
		return "", fmt.Errorf("parse target %q: %w", target, err)
	}
	resolved := c.baseURL.ResolveReference(ref)
	if !ref.IsAbs() && strings.HasPrefix(target, "/") && c.baseURL.Path != "" && c.baseURL.Path != "/" {
		// keep a base path prefix such as http://host/backend
		resolved.Path = strings.TrimRight(c.baseURL.Path, "/") + ref.Path
		resolved.RawPath = ""
		if ref.RawPath != "" {
			resolved.RawPath = strings.TrimRight(c.baseURL.EscapedPath(), "/") + ref.RawPath
		}
	}
	if len(query) > 0 {
		merged := resolved.Query()
		for key, values := range query {
			for _, v := range values {
				merged.Add(key, v)
			}
		}
		resolved.RawQuery = merged.Encode()
	}
	return resolved.String(), nil
}
