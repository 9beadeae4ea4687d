package dispatch

import (
	"context"
	"fmt"
	"slices"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/modelgate/errors"
	"github.com/kbukum/modelgate/logger"
	"github.com/kbukum/modelgate/model"
	"github.com/kbukum/modelgate/observability"
)

// CapabilityTextGeneration is the only capability served by default.
const CapabilityTextGeneration = "text-generation"

const outcomeSuccess = "success"

// Resolver finds a model by name. *registry.Registry satisfies it.
type Resolver interface {
	Lookup(name string) (model.Model, error)
}

// Dispatcher routes capability requests to registered models.
// It is safe for concurrent use and holds no per-request state.
type Dispatcher struct {
	resolver     Resolver
	capabilities map[string]struct{}
	defaultModel string
	log          *logger.Logger
	tracer       trace.Tracer
	meter        metric.Meter
	metrics      *observability.DispatchMetrics
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithCapabilities replaces the set of served capability tags.
func WithCapabilities(caps ...string) Option {
	return func(d *Dispatcher) {
		d.capabilities = make(map[string]struct{}, len(caps))
		for _, c := range caps {
			d.capabilities[c] = struct{}{}
		}
	}
}

// WithDefaultModel sets the model used when a request names none.
func WithDefaultModel(name string) Option {
	return func(d *Dispatcher) { d.defaultModel = name }
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(d *Dispatcher) { d.log = l.WithComponent("dispatch") }
}

// WithTracer sets the tracer used for dispatch spans.
func WithTracer(t trace.Tracer) Option {
	return func(d *Dispatcher) { d.tracer = t }
}

// WithMeter sets the meter the dispatch instruments are created on.
func WithMeter(m metric.Meter) Option {
	return func(d *Dispatcher) { d.meter = m }
}

// New creates a dispatcher over r.
func New(r Resolver, opts ...Option) (*Dispatcher, error) {
	if r == nil {
		return nil, errors.InvalidParameter("resolver", "is required")
	}
	d := &Dispatcher{
		resolver:     r,
		capabilities: map[string]struct{}{CapabilityTextGeneration: {}},
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.log == nil {
		d.log = logger.WithComponent("dispatch")
	}
	if d.tracer == nil {
		d.tracer = observability.Tracer()
	}
	if d.meter == nil {
		d.meter = observability.Meter()
	}
	metrics, err := observability.NewDispatchMetrics(d.meter)
	if err != nil {
		return nil, err
	}
	d.metrics = metrics
	return d, nil
}

// Capabilities returns the served capability tags, sorted.
func (d *Dispatcher) Capabilities() []string {
	out := make([]string, 0, len(d.capabilities))
	for c := range d.capabilities {
		out = append(out, c)
	}
	slices.Sort(out)
	return out
}

// Supports reports whether capability is served.
func (d *Dispatcher) Supports(capability string) bool {
	_, ok := d.capabilities[capability]
	return ok
}

// Execute resolves modelName, checks capability and returns the generated text.
//
// The steps run in order: resolve the model, check the capability, then
// decode params into the prompt and per-call overrides. An unknown model
// fails with MODEL_NOT_FOUND before params are looked at or any backend is
// contacted. Backend failures keep their error code.
func (d *Dispatcher) Execute(ctx context.Context, capability, modelName string, params Params) (string, error) {
	return run(ctx, d, capability, modelName, paramsDecoder(capability, modelName, params), generateText)
}

// Do is Execute for an already built Request.
func (d *Dispatcher) Do(ctx context.Context, req Request) (string, error) {
	return run(ctx, d, req.Capability, req.Model, prebuilt(req), generateText)
}

// ExecuteTyped is Execute with the generated text decoded as T.
func ExecuteTyped[T any](ctx context.Context, d *Dispatcher, capability, modelName string, params Params) (T, error) {
	return run(ctx, d, capability, modelName, paramsDecoder(capability, modelName, params), generateTyped[T])
}

// DoTyped is Do with the generated text decoded as T. A response that is not
// valid JSON for T fails with DECODE_FAILED.
func DoTyped[T any](ctx context.Context, d *Dispatcher, req Request) (T, error) {
	return run(ctx, d, req.Capability, req.Model, prebuilt(req), generateTyped[T])
}

type requestFunc func() (Request, error)

func paramsDecoder(capability, modelName string, params Params) requestFunc {
	return func() (Request, error) { return RequestFromParams(capability, modelName, params) }
}

func prebuilt(req Request) requestFunc {
	return func() (Request, error) { return req, nil }
}

func generateText(ctx context.Context, m model.Model, prompt model.Prompt, p model.ParameterSet) (string, error) {
	return m.Generate(ctx, prompt, p)
}

func generateTyped[T any](ctx context.Context, m model.Model, prompt model.Prompt, p model.ParameterSet) (T, error) {
	return model.GenerateTyped[T](ctx, m, prompt, p)
}

func run[T any](ctx context.Context, d *Dispatcher, capability, name string,
	request requestFunc, generate func(context.Context, model.Model, model.Prompt, model.ParameterSet) (T, error)) (T, error) {
	var zero T

	if name == "" {
		name = d.defaultModel
	}

	ctx, span := d.tracer.Start(ctx, observability.SpanDispatch, trace.WithAttributes(
		attribute.String(observability.AttrModel, name),
		attribute.String(observability.AttrCapability, capability),
	))
	defer span.End()
	if id := logger.RequestIDFromContext(ctx); id != "" {
		span.SetAttributes(attribute.String(observability.AttrRequestID, id))
	}

	start := time.Now()
	d.metrics.Start(ctx, name)
	log := d.log.WithContext(ctx).WithFields(map[string]any{
		logger.FieldModel:      name,
		logger.FieldCapability: capability,
	})

	out, err := execute(ctx, d, capability, name, request, generate)
	elapsed := time.Since(start)

	outcome := outcomeSuccess
	if err != nil {
		outcome = string(errors.CodeOf(err))
		if outcome == "" {
			outcome = string(errors.ErrCodeInternal)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
		log.WithError(err).Warn("dispatch failed", logger.Fields(
			logger.FieldCode, outcome,
			logger.FieldDuration, elapsed.Milliseconds(),
		))
		out = zero
	} else {
		span.SetStatus(codes.Ok, "")
		log.Debug("dispatch completed", logger.DurationFields("execute", elapsed))
	}
	span.SetAttributes(attribute.String(observability.AttrOutcome, outcome))
	d.metrics.Finish(ctx, name, capability, outcome, elapsed)

	return out, err
}

// execute resolves the model, checks capability, builds the request and
// merges overrides over the stored parameters, in that order.
func execute[T any](ctx context.Context, d *Dispatcher, capability, name string,
	request requestFunc, generate func(context.Context, model.Model, model.Prompt, model.ParameterSet) (T, error)) (T, error) {
	var zero T

	m, err := d.resolver.Lookup(name)
	if err != nil {
		return zero, err
	}
	if !d.Supports(capability) {
		return zero, errors.CapabilityNotSupported(capability).WithDetail("model", name)
	}

	req, err := request()
	if err != nil {
		return zero, err
	}

	params := m.Parameters().Merge(req.Overrides)
	out, err := generate(ctx, m, req.Prompt, params)
	if err != nil {
		return zero, fmt.Errorf("%s via %s: %w", capability, name, err)
	}
	return out, nil
}
