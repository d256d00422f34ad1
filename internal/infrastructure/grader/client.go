package grader

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

	"go.uber.org/zap"

	"github.com/helxplatform/eduhelx-student-ext/domain"
)

// Config describes how the client authenticates against the grader API.
type Config struct {
	APIURL    string
	UserOnyen string
	// AutogenPassword selects password auth when non-empty.
	AutogenPassword string
	// AccessToken is the appstore token used otherwise.
	AccessToken string
	// JWTRefreshLeeway refreshes the grader token this long before expiry.
	JWTRefreshLeeway time.Duration
}

// Client is a typed snapshot/mutation client for the grader API. Fetch
// methods either return a fully formed, internally consistent snapshot or a
// TRANSPORT-classified error; consumers never see wire shapes or partial
// objects.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	tokens  *tokenManager
	// cwd anchors UI-visible paths; the UI treats it as "/".
	cwd    string
	logger *zap.Logger
}

// New constructs a grader API client. cwd is the server's working directory.
func New(cfg Config, cwd string, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	base, err := url.Parse(strings.TrimRight(cfg.APIURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("grader: invalid api url %q: %w", cfg.APIURL, err)
	}
	c := &Client{
		baseURL: base,
		http:    &http.Client{},
		cwd:     cwd,
		logger:  logger,
	}
	c.tokens = newTokenManager(c, cfg)
	return c, nil
}

// StatusError carries the HTTP status and body of a non-2xx grader response.
type StatusError struct {
	Status int
	Body   []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("grader api status %d: %s", e.Status, snippet(e.Body))
}

// StatusOf extracts the HTTP status from a transport error, 0 when the
// request never produced a response.
func StatusOf(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Status
	}
	return 0
}

func snippet(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > 300 {
		return s[:300] + "..."
	}
	return s
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + path
	if query != nil {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// do executes one authenticated request and decodes the JSON response into
// out (ignored when nil). Every failure is classified as TRANSPORT.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out interface{}) error {
	token, err := c.tokens.accessToken(ctx)
	if err != nil {
		return err
	}
	return c.roundTrip(ctx, method, path, query, in, out, token)
}

// doUnauthenticated exists for the login call itself, which cannot require a
// token.
func (c *Client) doUnauthenticated(ctx context.Context, method, path string, in, out interface{}) error {
	return c.roundTrip(ctx, method, path, nil, in, out, "")
}

func (c *Client) roundTrip(ctx context.Context, method, path string, query url.Values, in, out interface{}, token string) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return domain.WrapError(domain.ErrCodeInternal, "grader request encode failed", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, query), body)
	if err != nil {
		return domain.WrapError(domain.ErrCodeTransport, "grader request build failed", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.WrapError(domain.ErrCodeTransport, "grader api unreachable", err)
	}
	raw, readErr := io.ReadAll(resp.Body)
	resp.Body.Close()
	if readErr != nil {
		return domain.WrapError(domain.ErrCodeTransport, "grader response read failed", readErr)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return domain.WrapError(domain.ErrCodeTransport, "grader api request failed",
			&StatusError{Status: resp.StatusCode, Body: raw})
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return domain.WrapError(domain.ErrCodeTransport, "grader response decode failed", err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) post(ctx context.Context, path string, in, out interface{}) error {
	return c.do(ctx, http.MethodPost, path, nil, in, out)
}

func (c *Client) patch(ctx context.Context, path string, in, out interface{}) error {
	return c.do(ctx, http.MethodPatch, path, nil, in, out)
}
