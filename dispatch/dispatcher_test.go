package dispatch_test

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/kbukum/modelgate/dispatch"
	"github.com/kbukum/modelgate/errors"
	"github.com/kbukum/modelgate/logger"
	"github.com/kbukum/modelgate/model"
	"github.com/kbukum/modelgate/model/modeltest"
	"github.com/kbukum/modelgate/registry"
)

const textGen = dispatch.CapabilityTextGeneration

func newDispatcher(t *testing.T, models ...model.Model) *dispatch.Dispatcher {
	t.Helper()
	reg := registry.New()
	reg.MustRegister(models...)
	d, err := dispatch.New(reg, dispatch.WithLogger(logger.Nop()))
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func TestExecute_ReturnsTextVerbatim(t *testing.T) {
	fake := modeltest.New("deepseek-chat", modeltest.MustParams(0.7, 1024))
	fake.Reply = "  Paris.\n"
	d := newDispatcher(t, fake)

	got, err := d.Execute(context.Background(), textGen, "deepseek-chat", dispatch.Params{"prompt": "Capital of France?"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "  Paris.\n" {
		t.Errorf("got %q", got)
	}
	if fake.LastPrompt().Text != "Capital of France?" {
		t.Errorf("prompt = %q", fake.LastPrompt().Text)
	}
}

func TestExecute_UnknownModel(t *testing.T) {
	fake := modeltest.New("deepseek-chat", model.ParameterSet{})
	d := newDispatcher(t, fake)

	_, err := d.Execute(context.Background(), textGen, "gpt-9000", dispatch.Params{"prompt": "hi"})
	if !errors.Is(err, errors.ErrCodeModelNotFound) {
		t.Fatalf("expected MODEL_NOT_FOUND, got %v", err)
	}
	if fake.Calls() != 0 {
		t.Errorf("no backend should be contacted, calls = %d", fake.Calls())
	}
}

func TestExecute_ResolvesBeforeDecodingParams(t *testing.T) {
	fake := modeltest.New("deepseek-chat", model.ParameterSet{})
	d := newDispatcher(t, fake)

	tests := []struct {
		name       string
		capability string
		model      string
		params     dispatch.Params
		want       errors.ErrorCode
	}{
		{"unknown model, no prompt", textGen, "gpt-9000", dispatch.Params{}, errors.ErrCodeModelNotFound},
		{"unknown model, bad temperature", textGen, "gpt-9000", dispatch.Params{"prompt": "hi", "temperature": 5.0}, errors.ErrCodeModelNotFound},
		{"unknown model, bad history", textGen, "gpt-9000", dispatch.Params{"history": "oops"}, errors.ErrCodeModelNotFound},
		{"unsupported capability, no prompt", "image-generation", "deepseek-chat", dispatch.Params{}, errors.ErrCodeCapabilityNotSupported},
		{"known model, no prompt", textGen, "deepseek-chat", dispatch.Params{}, errors.ErrCodeInvalidParameter},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := d.Execute(context.Background(), tc.capability, tc.model, tc.params)
			if !errors.Is(err, tc.want) {
				t.Errorf("expected %s, got %v", tc.want, err)
			}
			_, err = dispatch.ExecuteTyped[map[string]any](context.Background(), d, tc.capability, tc.model, tc.params)
			if !errors.Is(err, tc.want) {
				t.Errorf("typed: expected %s, got %v", tc.want, err)
			}
		})
	}
	if fake.Calls() != 0 {
		t.Errorf("calls = %d", fake.Calls())
	}
}

func TestExecute_UnsupportedCapability(t *testing.T) {
	fake := modeltest.New("deepseek-chat", model.ParameterSet{})
	d := newDispatcher(t, fake)

	_, err := d.Execute(context.Background(), "image-generation", "deepseek-chat", dispatch.Params{"prompt": "a cat"})
	if !errors.Is(err, errors.ErrCodeCapabilityNotSupported) {
		t.Fatalf("expected CAPABILITY_NOT_SUPPORTED, got %v", err)
	}
	if fake.Calls() != 0 {
		t.Errorf("calls = %d", fake.Calls())
	}

	// Model resolution comes first.
	_, err = d.Execute(context.Background(), "image-generation", "missing", dispatch.Params{"prompt": "a cat"})
	if !errors.Is(err, errors.ErrCodeModelNotFound) {
		t.Errorf("expected MODEL_NOT_FOUND, got %v", err)
	}
}

func TestExecute_CustomCapabilities(t *testing.T) {
	reg := registry.New()
	reg.MustRegister(modeltest.New("m", model.ParameterSet{}))
	d, err := dispatch.New(reg, dispatch.WithCapabilities("text-generation", "summarization"), dispatch.WithLogger(logger.Nop()))
	if err != nil {
		t.Fatal(err)
	}
	if !d.Supports("summarization") || d.Supports("translation") {
		t.Errorf("capabilities = %v", d.Capabilities())
	}
	if got := d.Capabilities(); len(got) != 2 || got[0] != "summarization" {
		t.Errorf("Capabilities() = %v", got)
	}
}

func TestExecute_PreservesBackendErrorKind(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code errors.ErrorCode
	}{
		{"unavailable", errors.BackendUnavailable("m", stderrors.New("connection refused")), errors.ErrCodeBackendUnavailable},
		{"invalid", errors.BackendResponseInvalid("m", stderrors.New("no choices")), errors.ErrCodeBackendResponseInvalid},
		{"rejected", errors.BackendRejected("m", "invalid api key"), errors.ErrCodeBackendRejected},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fake := modeltest.New("m", model.ParameterSet{})
			fake.Err = tc.err
			d := newDispatcher(t, fake)

			_, err := d.Execute(context.Background(), textGen, "m", dispatch.Params{"prompt": "x"})
			if !errors.Is(err, tc.code) {
				t.Errorf("expected %s, got %v", tc.code, err)
			}
		})
	}
}

func TestExecute_OverridesDoNotMutateStoredParameters(t *testing.T) {
	fake := modeltest.New("m", modeltest.MustParams(0.7, 100))
	d := newDispatcher(t, fake)

	_, err := d.Execute(context.Background(), textGen, "m", dispatch.Params{"prompt": "x", "temperature": 0.1})
	if err != nil {
		t.Fatal(err)
	}
	temp, _ := fake.LastParams().Temperature()
	maxTokens, _ := fake.LastParams().MaxTokens()
	if temp != 0.1 || maxTokens != 100 {
		t.Errorf("effective params = %s", fake.LastParams())
	}
	if stored, _ := fake.Parameters().Temperature(); stored != 0.7 {
		t.Errorf("stored temperature changed to %v", stored)
	}
}

func TestExecute_InvalidParams(t *testing.T) {
	fake := modeltest.New("m", model.ParameterSet{})
	d := newDispatcher(t, fake)

	tests := []struct {
		name   string
		params dispatch.Params
	}{
		{"missing prompt", dispatch.Params{}},
		{"prompt not string", dispatch.Params{"prompt": 42}},
		{"temperature out of range", dispatch.Params{"prompt": "x", "temperature": 3.0}},
		{"temperature not number", dispatch.Params{"prompt": "x", "temperature": "hot"}},
		{"max tokens zero", dispatch.Params{"prompt": "x", "max_tokens": 0}},
		{"max tokens fractional", dispatch.Params{"prompt": "x", "max_tokens": 1.5}},
		{"bad role", dispatch.Params{"history": []map[string]string{{"role": "robot", "content": "hi"}}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := d.Execute(context.Background(), textGen, "m", tc.params)
			if !errors.Is(err, errors.ErrCodeInvalidParameter) {
				t.Errorf("expected INVALID_PARAMETER, got %v", err)
			}
		})
	}
	if fake.Calls() != 0 {
		t.Errorf("calls = %d", fake.Calls())
	}
}

func TestRequestFromParams_History(t *testing.T) {
	var decoded dispatch.Params
	raw := `{"prompt":"and now?","max_tokens":64,"history":[{"role":"user","content":"hi"},{"role":"assistant","content":"hello"}]}`
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&decoded); err != nil {
		t.Fatal(err)
	}

	req, err := dispatch.RequestFromParams(textGen, "m", decoded)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	msgs := req.Prompt.Messages()
	if len(msgs) != 3 || msgs[1].Role != model.RoleAssistant || msgs[2].Content != "and now?" {
		t.Errorf("messages = %+v", msgs)
	}
	if n, ok := req.Overrides.MaxTokens(); !ok || n != 64 {
		t.Errorf("max tokens = %d, %v", n, ok)
	}
}

func TestExecuteTyped(t *testing.T) {
	type verdict struct {
		Label string  `json:"label"`
		Score float64 `json:"score"`
	}
	fake := modeltest.New("m", model.ParameterSet{})
	fake.Reply = "```json\n{\"label\":\"positive\",\"score\":0.9}\n```"
	d := newDispatcher(t, fake)

	got, err := dispatch.ExecuteTyped[verdict](context.Background(), d, textGen, "m", dispatch.Params{"prompt": "rate it"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Label != "positive" || got.Score != 0.9 {
		t.Errorf("got %+v", got)
	}

	req := dispatch.Request{Capability: textGen, Model: "m", Prompt: model.Text("rate it")}
	if got, err := dispatch.DoTyped[verdict](context.Background(), d, req); err != nil || got.Label != "positive" {
		t.Errorf("DoTyped = %+v, %v", got, err)
	}

	for _, reply := range []string{"I think it is positive", "null", `{"label":"positive"}}`} {
		fake.Reply = reply
		v, err := dispatch.ExecuteTyped[verdict](context.Background(), d, textGen, "m", dispatch.Params{"prompt": "rate it"})
		if !errors.Is(err, errors.ErrCodeDecodeFailed) {
			t.Errorf("reply %q: expected DECODE_FAILED, got %+v, %v", reply, v, err)
		}
	}
}

func TestExecute_DefaultModel(t *testing.T) {
	fake := modeltest.New("deepseek-chat", model.ParameterSet{})
	fake.Reply = "ok"
	reg := registry.New()
	reg.MustRegister(fake)
	d, err := dispatch.New(reg, dispatch.WithDefaultModel("deepseek-chat"), dispatch.WithLogger(logger.Nop()))
	if err != nil {
		t.Fatal(err)
	}
	if got, err := d.Execute(context.Background(), textGen, "", dispatch.Params{"prompt": "x"}); err != nil || got != "ok" {
		t.Errorf("got %q, %v", got, err)
	}
}

func TestExecute_Concurrent(t *testing.T) {
	fake := modeltest.New("m", model.ParameterSet{})
	fake.ReplyFunc = func(p model.Prompt, _ model.ParameterSet) (string, error) {
		return "echo: " + p.Text, nil
	}
	d := newDispatcher(t, fake)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			prompt := fmt.Sprintf("p%d", i)
			got, err := d.Execute(context.Background(), textGen, "m", dispatch.Params{"prompt": prompt})
			if err != nil || got != "echo: "+prompt {
				t.Errorf("got %q, %v", got, err)
			}
		}(i)
	}
	wg.Wait()
	if fake.Calls() != 32 {
		t.Errorf("calls = %d", fake.Calls())
	}
}

func TestExecute_ConcurrentParameterSwaps(t *testing.T) {
	low := modeltest.MustParams(0.2, 128)
	high := modeltest.MustParams(1.4, 4096)

	fake := modeltest.New("m", low)
	fake.ReplyFunc = func(_ model.Prompt, p model.ParameterSet) (string, error) {
		if p != low && p != high {
			t.Errorf("torn parameter set observed: %s", p)
		}
		return "ok", nil
	}
	d := newDispatcher(t, fake)

	stop := make(chan struct{})
	swapped := make(chan struct{})
	go func() {
		defer close(swapped)
		for i := 0; ; i++ {
			select {
			case <-stop:
				return
			default:
			}
			if i%2 == 0 {
				fake.SetParameters(high)
			} else {
				fake.SetParameters(low)
			}
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				if _, err := d.Execute(context.Background(), textGen, "m", dispatch.Params{"prompt": "x"}); err != nil {
					t.Errorf("unexpected error: %v", err)
					return
				}
				if p := fake.LastParams(); p != low && p != high {
					t.Errorf("last params torn: %s", p)
					return
				}
			}
		}()
	}
	wg.Wait()
	close(stop)
	<-swapped
}

func TestExecute_RecordsSpanAndMetrics(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	fake := modeltest.New("m", model.ParameterSet{})
	reg := registry.New()
	reg.MustRegister(fake)
	d, err := dispatch.New(reg,
		dispatch.WithLogger(logger.Nop()),
		dispatch.WithTracer(tp.Tracer("test")),
		dispatch.WithMeter(mp.Meter("test")),
	)
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	_, _ = d.Execute(ctx, textGen, "m", dispatch.Params{"prompt": "x"})
	_, _ = d.Execute(ctx, textGen, "nope", dispatch.Params{"prompt": "x"})
	_, _ = d.Execute(ctx, textGen, "m", dispatch.Params{})

	spans := sr.Ended()
	if len(spans) != 3 {
		t.Fatalf("expected 3 spans, got %d", len(spans))
	}
	if spans[0].Name() != "dispatch.execute" || spans[0].Status().Code != codes.Ok {
		t.Errorf("first span = %s %v", spans[0].Name(), spans[0].Status())
	}
	if spans[1].Status().Code != codes.Error || spans[1].Status().Description != string(errors.ErrCodeModelNotFound) {
		t.Errorf("second span status = %v", spans[1].Status())
	}

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatal(err)
	}
	outcomes := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "modelgate.dispatch.requests" {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				t.Fatalf("requests data = %T", m.Data)
			}
			for _, dp := range sum.DataPoints {
				v, _ := dp.Attributes.Value(attribute.Key("modelgate.outcome"))
				outcomes[v.AsString()] += dp.Value
			}
		}
	}
	if outcomes["success"] != 1 || outcomes[string(errors.ErrCodeModelNotFound)] != 1 ||
		outcomes[string(errors.ErrCodeInvalidParameter)] != 1 {
		t.Errorf("outcomes = %v", outcomes)
	}
}

func TestNew_RequiresResolver(t *testing.T) {
	if _, err := dispatch.New(nil); !errors.Is(err, errors.ErrCodeInvalidParameter) {
		t.Errorf("expected INVALID_PARAMETER, got %v", err)
	}
}
