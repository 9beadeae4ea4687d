package bootstrap

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kbukum/modelgate/config"
	"github.com/kbukum/modelgate/dispatch"
	"github.com/kbukum/modelgate/errors"
	"github.com/kbukum/modelgate/llm"
	"github.com/kbukum/modelgate/logger"
	"github.com/kbukum/modelgate/model/modeltest"
)

// chatServer answers OpenAI-style chat completions with the last user message reversed.
func chatServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode: %v", err)
		}
		last := req.Messages[len(req.Messages)-1].Content
		_ = json.NewEncoder(w).Encode(map[string]any{
			"model": req.Model,
			"choices": []map[string]any{{
				"message": map[string]string{"role": "assistant", "content": req.Model + ":" + last},
			}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(baseURL string) *Config {
	return &Config{
		ServiceConfig: config.ServiceConfig{Name: "modelgate-test"},
		Models: []llm.Config{
			{Name: "deepseek-chat", Dialect: "openai", BaseURL: baseURL, Version: "deepseek-chat"},
			{Name: "glm-4", Dialect: "openai", BaseURL: baseURL, Version: "THUDM/glm-4-9b-chat"},
		},
	}
}

func TestNew_WiresConfiguredModels(t *testing.T) {
	srv := chatServer(t)
	app, err := New(context.Background(), testConfig(srv.URL), WithLogger(logger.Nop()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := app.Registry.Names(); len(got) != 2 {
		t.Fatalf("registered = %v", got)
	}
	if app.Cfg.Dispatch.DefaultModel != "deepseek-chat" {
		t.Errorf("default model = %q", app.Cfg.Dispatch.DefaultModel)
	}

	text, err := app.Dispatcher.Execute(context.Background(), dispatch.CapabilityTextGeneration, "glm-4", dispatch.Params{"prompt": "hi"})
	if err != nil {
		t.Fatal(err)
	}
	if text != "THUDM/glm-4-9b-chat:hi" {
		t.Errorf("text = %q", text)
	}
	if err := app.Shutdown(); err != nil {
		t.Errorf("Shutdown: %v", err)
	}
}

func TestNew_ExtraModels(t *testing.T) {
	srv := chatServer(t)
	fake := modeltest.New("local-fake", modeltest.MustParams(0.5, 10))
	fake.Reply = "fake reply"

	app, err := New(context.Background(), testConfig(srv.URL), WithLogger(logger.Nop()), WithModels(fake))
	if err != nil {
		t.Fatal(err)
	}
	text, err := app.Dispatcher.Execute(context.Background(), dispatch.CapabilityTextGeneration, "local-fake", dispatch.Params{"prompt": "x"})
	if err != nil || text != "fake reply" {
		t.Errorf("got %q, %v", text, err)
	}

	dup := modeltest.New("deepseek-chat", modeltest.MustParams(0.5, 10))
	if _, err := New(context.Background(), testConfig(srv.URL), WithLogger(logger.Nop()), WithModels(dup)); !errors.Is(err, errors.ErrCodeDuplicateModel) {
		t.Errorf("expected DUPLICATE_MODEL, got %v", err)
	}
}

func TestNew_InvalidModelConfig(t *testing.T) {
	cfg := testConfig("https://api.deepseek.com")
	cfg.Models[1].Dialect = "carrier-pigeon"
	if _, err := New(context.Background(), cfg, WithLogger(logger.Nop())); !errors.Is(err, errors.ErrCodeInvalidParameter) {
		t.Errorf("expected INVALID_PARAMETER, got %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"no models", func(c *Config) { c.Models = nil }, "at least one model"},
		{"duplicate", func(c *Config) { c.Models[1].Name = "deepseek-chat" }, "duplicate model name"},
		{"unknown default", func(c *Config) { c.Dispatch.DefaultModel = "gpt-9000" }, "default_model"},
		{"bad sample rate", func(c *Config) { c.Observability.SampleRate = 2 }, "sample_rate"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := testConfig("https://api.deepseek.com")
			tc.mutate(cfg)
			cfg.ApplyDefaults()
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tc.errMsg) {
				t.Errorf("expected error containing %q, got %v", tc.errMsg, err)
			}
		})
	}
}

func TestSessionAndRunTask(t *testing.T) {
	srv := chatServer(t)
	app, err := New(context.Background(), testConfig(srv.URL), WithLogger(logger.Nop()))
	if err != nil {
		t.Fatal(err)
	}

	stopped := false
	app.OnStop(func(context.Context) error { stopped = true; return nil })

	err = app.RunTask(context.Background(), func(ctx context.Context) error {
		s, err := app.NewSession("")
		if err != nil {
			return err
		}
		reply, err := s.Ask(ctx, "ping")
		if err != nil {
			return err
		}
		if reply != "deepseek-chat:ping" {
			t.Errorf("reply = %q", reply)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("RunTask: %v", err)
	}
	if !stopped {
		t.Error("stop hooks did not run")
	}
}
