package api

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

const (
	contentTypeJSON      = "application/json;charset=UTF-8"
	defaultSilentHeader  = "X-Silent"
	defaultTimeout       = 15 * time.Second
	maxEnvelopeBodyBytes = 8 << 20
)

type silentContextKey struct{}
type requestIDContextKey struct{}

// WithSilent marks ctx so the request it carries opts out of global error
// notifications. The rejection still propagates to the caller.
func WithSilent(ctx context.Context) context.Context {
	return context.WithValue(ctx, silentContextKey{}, true)
}

func silentFromContext(ctx context.Context) bool {
	if ctx == nil {
		return false
	}
	silent, _ := ctx.Value(silentContextKey{}).(bool)
	return silent
}

// WithRequestID attaches a caller-chosen request id to ctx, overriding the
// generated one.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDContextKey{}, id)
}

func requestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDContextKey{}).(string)
	return id
}

// TokenSource supplies the bearer token for outgoing requests. Absence of a
// token is not an error: unauthenticated requests simply go out unstamped.
type TokenSource interface {
	AccessToken(ctx context.Context) (string, bool)
}

// Notification is a user-facing message raised by the error pipeline.
type Notification struct {
	Level   string
	Text    string
	Code    int
	Status  int
	Request string
}

// Notifier receives user-facing notifications from the client. Nil notifier
// means notifications are dropped.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// RequestInterceptor runs on every outgoing request, after the built-in
// stamps. Returning an error fails the call before it leaves the process.
type RequestInterceptor func(*http.Request) error

// ResponseInterceptor runs on every response before envelope handling.
type ResponseInterceptor func(*http.Response) error

// Config carries the transport settings of a [Client].
type Config struct {
	BaseURL      string
	Timeout      time.Duration
	SilentHeader string
	UserAgent    string
}

// Client is the primary backend client. It never attempts a token refresh;
// a 401 goes straight to the unauthorized hook. See [LegacyClient] for the
// refresh-once variant.
//
// Client instances are intended to be configured during initialization and
// then treated as immutable; they are safe for concurrent use.
type Client struct {
	base         *url.URL
	http         *http.Client
	tokens       TokenSource
	notifier     Notifier
	unauthorized func(context.Context)
	silentHeader string
	userAgent    string

	reqInterceptors  []RequestInterceptor
	respInterceptors []ResponseInterceptor
}

// Option customizes a [Client] at construction time.
type Option func(*Client)

// WithHTTPClient replaces the underlying [http.Client].
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTokenSource installs the bearer-token source.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithNotifier installs the user-notification sink.
func WithNotifier(n Notifier) Option {
	return func(c *Client) { c.notifier = n }
}

// WithUnauthorizedHook installs the hook fired on any 401 response. The App
// uses it to clear the persisted session and force navigation to the login
// screen.
func WithUnauthorizedHook(hook func(context.Context)) Option {
	return func(c *Client) { c.unauthorized = hook }
}

// WithRequestInterceptor appends an interceptor to the outgoing chain.
func WithRequestInterceptor(i RequestInterceptor) Option {
	return func(c *Client) {
		if i != nil {
			c.reqInterceptors = append(c.reqInterceptors, i)
		}
	}
}

// WithResponseInterceptor appends an interceptor to the incoming chain.
func WithResponseInterceptor(i ResponseInterceptor) Option {
	return func(c *Client) {
		if i != nil {
			c.respInterceptors = append(c.respInterceptors, i)
		}
	}
}

// NewClient creates a [Client] for the backend at cfg.BaseURL.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, errors.New("api: base URL is required")
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("api: invalid base URL: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, errors.New("api: base URL must be absolute")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.SilentHeader == "" {
		cfg.SilentHeader = defaultSilentHeader
	}

	c := &Client{
		base:         base,
		http:         &http.Client{Timeout: cfg.Timeout},
		silentHeader: cfg.SilentHeader,
		userAgent:    cfg.UserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// NewAbortHandle returns the inert cancellation handle for this client.
func (c *Client) NewAbortHandle() *AbortHandle {
	return &AbortHandle{}
}

// Get issues a GET and decodes the envelope data into out.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	_, err := c.do(ctx, http.MethodGet, path, query, nil, out, doOptions{})
	return err
}

// GetPage issues a GET against a paginated list endpoint, decoding the
// envelope data into out and returning the pagination metadata.
func (c *Client) GetPage(ctx context.Context, path string, query url.Values, out any) (PageMeta, error) {
	return c.do(ctx, http.MethodGet, path, query, nil, out, doOptions{})
}

// Post issues a POST with a JSON body and decodes the envelope data into out.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	_, err := c.do(ctx, http.MethodPost, path, nil, body, out, doOptions{})
	return err
}

// Put issues a PUT with a JSON body and decodes the envelope data into out.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	_, err := c.do(ctx, http.MethodPut, path, nil, body, out, doOptions{})
	return err
}

// Delete issues a DELETE.
func (c *Client) Delete(ctx context.Context, path string) error {
	_, err := c.do(ctx, http.MethodDelete, path, nil, nil, nil, doOptions{})
	return err
}

type doOptions struct {
	// skipUnauthorizedHook suppresses the 401 hook; the legacy client sets
	// it for the first attempt so a refresh can run before the session is
	// torn down.
	skipUnauthorizedHook bool
	// overrideToken replaces the token-source token for this call.
	overrideToken string
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any, opts doOptions) (PageMeta, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	target := c.base.JoinPath(path)
	if len(query) > 0 {
		target.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return PageMeta{}, fmt.Errorf("api: encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), reader)
	if err != nil {
		return PageMeta{}, fmt.Errorf("api: build request: %w", err)
	}
	c.stamp(ctx, req, opts)

	for _, interceptor := range c.reqInterceptors {
		if err := interceptor(req); err != nil {
			return PageMeta{}, fmt.Errorf("api: request interceptor: %w", err)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.notify(ctx, req, Notification{
			Level:   "error",
			Text:    "network unreachable",
			Request: req.Header.Get("X-Request-Id"),
		})
		return PageMeta{}, fmt.Errorf("api: transport: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	for _, interceptor := range c.respInterceptors {
		if err := interceptor(resp); err != nil {
			return PageMeta{}, fmt.Errorf("api: response interceptor: %w", err)
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return PageMeta{}, c.statusError(ctx, req, resp, opts)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxEnvelopeBodyBytes))
	if err != nil {
		return PageMeta{}, fmt.Errorf("api: read response: %w", err)
	}
	env, err := decodeEnvelope(raw)
	if err != nil {
		return PageMeta{}, err
	}

	if !env.Success() {
		appErr := &Error{Code: env.Code, Message: env.Message}
		c.notify(ctx, req, Notification{
			Level:   "error",
			Text:    env.Message,
			Code:    env.Code,
			Request: req.Header.Get("X-Request-Id"),
		})
		return PageMeta{}, appErr
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return PageMeta{}, fmt.Errorf("api: decode envelope data: %w", err)
		}
	}
	return env.pageMeta(), nil
}

// stamp applies the built-in request interceptors: bearer token, content
// type, request id, silent-mode header, user agent.
func (c *Client) stamp(ctx context.Context, req *http.Request, opts doOptions) {
	token := opts.overrideToken
	if token == "" && c.tokens != nil {
		if t, ok := c.tokens.AccessToken(ctx); ok {
			token = t
		}
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	req.Header.Set("Content-Type", contentTypeJSON)

	id := requestIDFromContext(ctx)
	if id == "" {
		id = uuid.NewString()
	}
	req.Header.Set("X-Request-Id", id)

	if silentFromContext(ctx) {
		req.Header.Set(c.silentHeader, "true")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
}

// statusError maps a non-2xx response to an error and its user-facing
// notification. Each status class gets a distinct message; 401 additionally
// tears the session down through the unauthorized hook.
func (c *Client) statusError(ctx context.Context, req *http.Request, resp *http.Response, opts doOptions) error {
	message := statusMessage(resp.StatusCode)
	if env, err := decodeEnvelope(readBodyBestEffort(resp)); err == nil && env.Message != "" {
		message = env.Message
	}

	if resp.StatusCode == http.StatusUnauthorized {
		if !opts.skipUnauthorizedHook {
			if c.unauthorized != nil {
				c.unauthorized(ctx)
			}
			c.notify(ctx, req, Notification{
				Level:   "warning",
				Text:    message,
				Status:  resp.StatusCode,
				Request: req.Header.Get("X-Request-Id"),
			})
		}
		return fmt.Errorf("%w: %s", ErrUnauthenticated, message)
	}

	c.notify(ctx, req, Notification{
		Level:   "error",
		Text:    message,
		Status:  resp.StatusCode,
		Request: req.Header.Get("X-Request-Id"),
	})
	return &Error{Message: message, Status: resp.StatusCode}
}

func readBodyBestEffort(resp *http.Response) []byte {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxEnvelopeBodyBytes))
	if err != nil {
		return nil
	}
	return raw
}

func statusMessage(status int) string {
	switch {
	case status == http.StatusUnauthorized:
		return "login expired, please sign in again"
	case status == http.StatusForbidden:
		return "no access permission"
	case status == http.StatusNotFound:
		return "resource not found"
	case status >= 500:
		return "server error, please retry later"
	default:
		return "request failed"
	}
}

// notify forwards a notification unless the request opted into silent mode.
func (c *Client) notify(ctx context.Context, req *http.Request, n Notification) {
	if c.notifier == nil {
		return
	}
	if req.Header.Get(c.silentHeader) != "" {
		return
	}
	c.notifier.Notify(ctx, n)
}
