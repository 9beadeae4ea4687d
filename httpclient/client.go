package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/kbukum/modelgate/resilience"
)

// maxBodySize bounds how much of a response is read.
const maxBodySize = 16 << 20

// Client sends JSON requests to one backend with retry, circuit breaking
// and a concurrency cap.
type Client struct {
	httpClient *http.Client
	config     Config
	cb         *resilience.CircuitBreaker
	bh         *resilience.Bulkhead
}

// New creates a client from cfg.
func New(cfg Config) (*Client, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	tlsCfg, err := cfg.TLS.Build()
	if err != nil {
		return nil, err
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if tlsCfg != nil {
		transport.TLSClientConfig = tlsCfg
	}

	c := &Client{
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout,
		},
		config: cfg,
	}
	if cfg.CircuitBreaker != nil {
		cbCfg := *cfg.CircuitBreaker
		if cbCfg.IsFailure == nil {
			// 4xx answers mean the backend is up.
			cbCfg.IsFailure = IsRetryable
		}
		c.cb = resilience.NewCircuitBreaker(cbCfg)
	}
	if cfg.Bulkhead != nil {
		c.bh = resilience.NewBulkhead(*cfg.Bulkhead)
	}
	return c, nil
}

// Do sends req, retrying retryable failures when retry is configured.
// Non-2xx responses are returned together with a classified *Error.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	if c.config.Retry == nil {
		return c.doOnce(ctx, req)
	}
	return resilience.Retry(ctx, *c.config.Retry, func() (*Response, error) {
		return c.doOnce(ctx, req)
	})
}

// PostJSON posts body to path and returns the raw response body.
func (c *Client) PostJSON(ctx context.Context, path string, body any) ([]byte, error) {
	resp, err := c.Do(ctx, Request{Method: http.MethodPost, Path: path, Body: body})
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// CircuitState reports the breaker state, or closed when no breaker is set.
func (c *Client) CircuitState() resilience.State {
	if c.cb == nil {
		return resilience.StateClosed
	}
	return c.cb.State()
}

func (c *Client) doOnce(ctx context.Context, req Request) (*Response, error) {
	var resp *Response
	err := c.bh.Execute(ctx, func() error {
		var err error
		resp, err = resilience.Guard(c.cb, func() (*Response, error) {
			return c.send(ctx, req)
		})
		return err
	})
	if errors.Is(err, resilience.ErrCircuitOpen) || errors.Is(err, resilience.ErrBulkheadFull) {
		return nil, newOverloadedError(err)
	}
	return resp, err
}

func (c *Client) send(ctx context.Context, req Request) (*Response, error) {
	httpReq, err := c.buildRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, &Error{Code: ErrCodeTimeout, Message: ctxErr.Error(), Err: ctxErr}
		}
		return nil, transportError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, NewConnectionError(fmt.Errorf("read response body: %w", err))
	}

	result := &Response{
		StatusCode: resp.StatusCode,
		Headers:    flattenHeaders(resp.Header),
		Body:       body,
	}
	if classErr := ClassifyStatusCode(resp.StatusCode, body); classErr != nil {
		return result, classErr
	}
	return result, nil
}

func (c *Client) buildRequest(ctx context.Context, req Request) (*http.Request, error) {
	url := req.Path
	if c.config.BaseURL != "" && !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		url = strings.TrimRight(c.config.BaseURL, "/") + "/" + strings.TrimLeft(req.Path, "/")
	}

	var body io.Reader
	if req.Body != nil {
		data, ok := req.Body.([]byte)
		if !ok {
			var err error
			if data, err = json.Marshal(req.Body); err != nil {
				return nil, NewValidationError(fmt.Sprintf("encode body: %v", err))
			}
		}
		body = bytes.NewReader(data)
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, NewValidationError(fmt.Sprintf("create request: %v", err))
	}

	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	for k, v := range c.config.Headers {
		httpReq.Header.Set(k, v)
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	auth := c.config.Auth
	if req.Auth != nil {
		auth = req.Auth
	}
	auth.apply(httpReq)

	return httpReq, nil
}

func flattenHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, v := range h {
		if len(v) > 0 {
			out[k] = v[0]
		}
	}
	return out
}
