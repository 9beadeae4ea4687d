package llm

import (
	"context"
	stderrors "errors"
	"fmt"
	"maps"
	"strings"

	"github.com/kbukum/modelgate/errors"
	"github.com/kbukum/modelgate/httpclient"
	"github.com/kbukum/modelgate/model"
	"github.com/kbukum/modelgate/observability"
	"github.com/kbukum/modelgate/resilience"
	"github.com/kbukum/modelgate/validation"
	"github.com/kbukum/modelgate/version"
)

// ErrNoDialect is returned by NewWithDialect for a nil dialect.
var ErrNoDialect = stderrors.New("llm: dialect is required")

// Adapter is a config-driven model backed by an HTTP chat endpoint. It
// composes an httpclient.Client with a Dialect and implements model.Model
// and model.JSONGenerator.
type Adapter struct {
	*model.Base

	client   *httpclient.Client
	dialect  Dialect
	version  string
	chatPath string
	jsonMode bool
}

var (
	_ model.Model                 = (*Adapter)(nil)
	_ model.JSONGenerator         = (*Adapter)(nil)
	_ observability.HealthChecker = (*Adapter)(nil)
)

// New creates an adapter using the dialect registered under cfg.Dialect.
func New(cfg Config) (*Adapter, error) {
	d, err := GetDialect(cfg.Dialect)
	if err != nil {
		return nil, errors.InvalidParameter("dialect", err.Error())
	}
	return NewWithDialect(d, cfg)
}

// NewWithDialect creates an adapter with an explicit dialect.
func NewWithDialect(d Dialect, cfg Config) (*Adapter, error) {
	if d == nil {
		return nil, ErrNoDialect
	}
	if cfg.Dialect == "" {
		cfg.Dialect = d.Name()
	}
	cfg.ApplyDefaults()
	if err := validation.Validate(cfg); err != nil {
		return nil, err
	}

	params, err := initialParameters(cfg)
	if err != nil {
		return nil, err
	}

	headers := map[string]string{"User-Agent": version.UserAgent()}
	maps.Copy(headers, cfg.Headers)

	httpCfg := httpclient.Config{
		BaseURL: cfg.BaseURL,
		Timeout: cfg.Timeout,
		Auth:    httpclient.BearerAuth(cfg.APIKey),
		Headers: headers,
		TLS:     cfg.TLS,
		Retry:   cfg.Retry,
	}
	if cfg.CircuitBreaker != nil {
		cb := *cfg.CircuitBreaker
		cb.Name = cfg.Name
		httpCfg.CircuitBreaker = &cb
	}
	if cfg.Concurrency != nil {
		httpCfg.Bulkhead = cfg.Concurrency
	}
	client, err := httpclient.New(httpCfg)
	if err != nil {
		return nil, fmt.Errorf("llm: create client for %s: %w", cfg.Name, err)
	}

	chatPath := cfg.ChatPath
	if chatPath == "" {
		chatPath = d.ChatPath()
	}

	return &Adapter{
		Base:     model.NewBase(cfg.Name, cfg.Description, params),
		client:   client,
		dialect:  d,
		version:  cfg.Version,
		chatPath: chatPath,
		jsonMode: cfg.JSONMode,
	}, nil
}

func initialParameters(cfg Config) (model.ParameterSet, error) {
	var (
		p   model.ParameterSet
		err error
	)
	if cfg.Temperature != nil {
		if p, err = p.WithTemperature(*cfg.Temperature); err != nil {
			return p, err
		}
	}
	if cfg.MaxTokens != nil {
		if p, err = p.WithMaxTokens(*cfg.MaxTokens); err != nil {
			return p, err
		}
	}
	return p, nil
}

// Generate performs one chat round trip and returns the reply text.
func (a *Adapter) Generate(ctx context.Context, prompt model.Prompt, params model.ParameterSet) (string, error) {
	return a.complete(ctx, prompt, params, false)
}

// GenerateJSON is Generate with the backend's JSON output mode enabled when
// the model is configured with json_mode. Otherwise it is plain Generate.
func (a *Adapter) GenerateJSON(ctx context.Context, prompt model.Prompt, params model.ParameterSet) (string, error) {
	return a.complete(ctx, prompt, params, a.jsonMode)
}

// JSONMode reports whether typed calls request JSON output from the backend.
func (a *Adapter) JSONMode() bool { return a.jsonMode }

// Dialect returns the adapter's wire dialect.
func (a *Adapter) Dialect() Dialect { return a.dialect }

// Version returns the upstream model id.
func (a *Adapter) Version() string { return a.version }

// CheckHealth reports the backend as seen by the circuit breaker.
func (a *Adapter) CheckHealth(context.Context) observability.Health {
	h := observability.Health{
		Name:    a.Name(),
		Status:  observability.HealthStatusUp,
		Details: map[string]string{"dialect": a.dialect.Name(), "version": a.version},
	}
	switch state := a.client.CircuitState(); state {
	case resilience.StateOpen:
		h.Status = observability.HealthStatusDown
		h.Message = "circuit " + state.String()
	case resilience.StateHalfOpen:
		h.Status = observability.HealthStatusDegraded
		h.Message = "circuit " + state.String()
	}
	return h
}

func (a *Adapter) complete(ctx context.Context, prompt model.Prompt, params model.ParameterSet, jsonMode bool) (string, error) {
	req := ChatRequest{
		Model:    a.version,
		Messages: toMessages(prompt.Messages()),
		JSON:     jsonMode,
	}
	if t, ok := params.Temperature(); ok {
		req.Temperature = &t
	}
	if n, ok := params.MaxTokens(); ok {
		req.MaxTokens = &n
	}

	body, err := a.dialect.BuildRequest(req)
	if err != nil {
		return "", errors.Internal(fmt.Errorf("llm: build %s request: %w", a.dialect.Name(), err))
	}

	raw, err := a.client.PostJSON(ctx, a.chatPath, body)
	if err != nil {
		return "", a.classify(err)
	}

	resp, err := a.dialect.ParseResponse(raw)
	if err != nil {
		var rejected *RejectedError
		if stderrors.As(err, &rejected) {
			return "", errors.BackendRejected(a.Name(), rejected.Error())
		}
		return "", errors.BackendResponseInvalid(a.Name(), err)
	}
	return resp.Content, nil
}

// classify maps transport failures onto the three generation error kinds.
func (a *Adapter) classify(err error) error {
	httpErr, ok := httpclient.AsError(err)
	if !ok {
		return errors.BackendUnavailable(a.Name(), err)
	}

	switch httpErr.Code {
	case httpclient.ErrCodeTimeout, httpclient.ErrCodeConnection,
		httpclient.ErrCodeServer, httpclient.ErrCodeOverloaded:
		return errors.BackendUnavailable(a.Name(), err).
			WithDetail("status", httpErr.StatusCode)
	default:
		return errors.BackendRejected(a.Name(), a.rejectionReason(httpErr)).
			WithDetail("status", httpErr.StatusCode).
			WithCause(err)
	}
}

// rejectionReason prefers the backend's own error message over the status text.
func (a *Adapter) rejectionReason(httpErr *httpclient.Error) string {
	if len(httpErr.Body) > 0 {
		var rejected *RejectedError
		if _, err := a.dialect.ParseResponse(httpErr.Body); stderrors.As(err, &rejected) {
			return rejected.Error()
		}
	}
	reason := strings.ToLower(httpErr.Message)
	if httpErr.StatusCode > 0 {
		reason = fmt.Sprintf("HTTP %d %s", httpErr.StatusCode, reason)
	}
	return reason
}

func toMessages(msgs []model.Message) []Message {
	out := make([]Message, len(msgs))
	for i, m := range msgs {
		out[i] = Message{Role: string(m.Role), Content: m.Content}
	}
	return out
}
