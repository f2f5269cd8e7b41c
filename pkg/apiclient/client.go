// Package apiclient is the typed client of the inventory REST API. Every
// method maps to one endpoint. Failures come back as *APIError and are also
// surfaced through the configured Notifier; a 401 on an existing session
// expires it and sends the Navigator to the login page.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fekuna/omnipos-inventory-service/pkg/i18n"
	"github.com/fekuna/omnipos-inventory-service/pkg/logger"
	"github.com/fekuna/omnipos-inventory-service/pkg/response"
	"go.uber.org/zap"
)

const (
	DefaultBaseURL = "http://localhost:5001/api"
	DefaultTimeout = 15 * time.Second
	LoginPath      = "/login"
)

// TokenSource supplies the bearer token for outgoing requests.
type TokenSource interface {
	Token() string
}

// SessionHandler is told when the server rejects the current session.
type SessionHandler interface {
	HasSession() bool
	HandleSessionExpiry()
}

type Navigator interface {
	CurrentPath() string
	Navigate(path string)
}

// Notifier shows a short, user-facing error message (a toast).
type Notifier interface {
	Error(message string)
}

type APIError struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	// Network is set when the request never got a response.
	Network bool  `json:"network"`
	Err     error `json:"-"`
}

func (e *APIError) Error() string {
	if e.Network {
		return fmt.Sprintf("api: network error: %v", e.Err)
	}
	return fmt.Sprintf("api: %d %s", e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error { return e.Err }

// StatusCode returns the HTTP status of an *APIError, or 0.
func StatusCode(err error) int {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae.StatusCode
	}
	return 0
}

// Blob is a downloaded file.
type Blob struct {
	Filename    string
	ContentType string
	Data        []byte
}

type Page[T any] struct {
	Items      []T
	Pagination response.Pagination
}

type Client struct {
	baseURL  string
	http     *http.Client
	tokens   TokenSource
	session  SessionHandler
	nav      Navigator
	notifier Notifier
	lang     string
	logger   logger.ZapLogger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

func WithSessionHandler(s SessionHandler) Option {
	return func(c *Client) { c.session = s }
}

func WithNavigator(n Navigator) Option {
	return func(c *Client) { c.nav = n }
}

func WithNotifier(n Notifier) Option {
	return func(c *Client) { c.notifier = n }
}

// WithLanguage selects the toast language and is sent as Accept-Language.
func WithLanguage(lang string) Option {
	return func(c *Client) { c.lang = lang }
}

func WithLogger(log logger.ZapLogger) Option {
	return func(c *Client) { c.logger = log }
}

func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
		lang:    "en",
		logger:  logger.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetSessionHandler wires the session after construction; the session
// itself needs a client to log in.
func (c *Client) SetSessionHandler(s SessionHandler) { c.session = s }

func (c *Client) SetTokenSource(ts TokenSource) { c.tokens = ts }

type tokenKey struct{}

// WithToken overrides the token source for requests made with ctx.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

func (c *Client) token(ctx context.Context) string {
	if t, ok := ctx.Value(tokenKey{}).(string); ok {
		return t
	}
	if c.tokens != nil {
		return c.tokens.Token()
	}
	return ""
}

type envelope struct {
	Success     bool                 `json:"success"`
	Message     string               `json:"message"`
	Data        json.RawMessage      `json:"data"`
	Pagination  *response.Pagination `json:"pagination"`
	UnreadCount *int                 `json:"unreadCount"`
}

type request struct {
	method      string
	path        string
	query       url.Values
	body        io.Reader
	contentType string
}

func jsonRequest(method, path string, query url.Values, payload interface{}) (*request, error) {
	r := &request{method: method, path: path, query: query}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		r.body = bytes.NewReader(data)
		r.contentType = "application/json"
	}
	return r, nil
}

func (c *Client) send(ctx context.Context, r *request) (*http.Response, error) {
	u := c.baseURL + r.path
	if len(r.query) > 0 {
		u += "?" + r.query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, r.method, u, r.body)
	if err != nil {
		return nil, err
	}
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	req.Header.Set("Accept-Language", c.lang)
	if t := c.token(ctx); t != "" {
		req.Header.Set("Authorization", "Bearer "+t)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		apiErr := &APIError{Network: true, Message: i18n.T("error.network", c.lang), Err: err}
		c.logger.Warn("api request failed", zap.String("method", r.method), zap.String("path", r.path), zap.Error(err))
		c.notify("error.network")
		return nil, apiErr
	}
	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		return nil, c.fail(resp)
	}
	return resp, nil
}

// do sends r and decodes the JSON envelope, filling out with data.
func (c *Client) do(ctx context.Context, r *request, out interface{}) (*envelope, error) {
	resp, err := c.send(ctx, r)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode %s %s: %w", r.method, r.path, err)
	}
	if out != nil && len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return nil, fmt.Errorf("decode %s %s data: %w", r.method, r.path, err)
		}
	}
	return &env, nil
}

func (c *Client) call(ctx context.Context, method, path string, query url.Values, payload, out interface{}) (*envelope, error) {
	r, err := jsonRequest(method, path, query, payload)
	if err != nil {
		return nil, err
	}
	return c.do(ctx, r, out)
}

func (c *Client) download(ctx context.Context, path string, query url.Values) (*Blob, error) {
	resp, err := c.send(ctx, &request{method: http.MethodGet, path: path, query: query})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return &Blob{
		Filename:    filenameOf(resp.Header.Get("Content-Disposition")),
		ContentType: resp.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

// fail turns an error response into an *APIError and runs the status side effects.
func (c *Client) fail(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err == nil {
		apiErr.Message = env.Message
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		c.expireSession()
	case resp.StatusCode == http.StatusForbidden:
		c.notify("error.forbidden")
	case resp.StatusCode == http.StatusNotFound:
		c.notify("error.not_found")
	case resp.StatusCode >= http.StatusInternalServerError:
		c.notify("error.server")
	}
	return apiErr
}

// expireSession clears an existing session and redirects to the login page,
// unless the user is already there.
func (c *Client) expireSession() {
	if c.session == nil || !c.session.HasSession() {
		return
	}
	c.session.HandleSessionExpiry()
	if c.nav != nil && c.nav.CurrentPath() != LoginPath {
		c.nav.Navigate(LoginPath)
	}
}

func (c *Client) notify(messageID string) {
	if c.notifier != nil {
		c.notifier.Error(i18n.T(messageID, c.lang))
	}
}

func filenameOf(disposition string) string {
	if disposition == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(disposition)
	if err != nil {
		return ""
	}
	return params["filename"]
}
