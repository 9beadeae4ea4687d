package model_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/kbukum/modelgate/errors"
	"github.com/kbukum/modelgate/model"
	"github.com/kbukum/modelgate/model/modeltest"
)

type verdict struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

type jsonModel struct {
	*modeltest.Fake
	jsonCalls int
}

func (j *jsonModel) GenerateJSON(ctx context.Context, p model.Prompt, params model.ParameterSet) (string, error) {
	j.jsonCalls++
	return j.Generate(ctx, p, params)
}

func TestGenerateTyped_Decodes(t *testing.T) {
	m := modeltest.New("m", model.ParameterSet{})
	m.Reply = `{"label":"spam","score":0.93}`

	got, err := model.GenerateTyped[verdict](context.Background(), m, model.Text("classify"), model.ParameterSet{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Label != "spam" || got.Score != 0.93 {
		t.Errorf("got %+v", got)
	}
}

func TestGenerateTyped_CodeFence(t *testing.T) {
	m := modeltest.New("m", model.ParameterSet{})
	m.Reply = "```json\n{\"label\":\"ham\",\"score\":0.1}\n```"

	got, err := model.GenerateTyped[verdict](context.Background(), m, model.Text("x"), model.ParameterSet{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Label != "ham" {
		t.Errorf("got %+v", got)
	}
}

func TestGenerateTyped_DecodeFailed(t *testing.T) {
	replies := []string{
		"not json at all",
		"",
		`{"label": 3}`,
		`{"label":"a"} trailing`,
		"null",
		"```json\nnull\n```",
		`{"label":"a"}}`,
		`{"label":"a"}]`,
		`{"label":"a"} {"label":"b"}`,
	}
	for _, reply := range replies {
		t.Run(reply, func(t *testing.T) {
			m := modeltest.New("m", model.ParameterSet{})
			m.Reply = reply
			_, err := model.GenerateTyped[verdict](context.Background(), m, model.Text("x"), model.ParameterSet{})
			if !errors.Is(err, errors.ErrCodeDecodeFailed) {
				t.Fatalf("expected DECODE_FAILED, got %v", err)
			}
		})
	}
}

func TestGenerateTyped_PropagatesBackendError(t *testing.T) {
	m := modeltest.New("m", model.ParameterSet{})
	m.Err = errors.BackendUnavailable("m", fmt.Errorf("connection refused"))

	_, err := model.GenerateTyped[verdict](context.Background(), m, model.Text("x"), model.ParameterSet{})
	if !errors.Is(err, errors.ErrCodeBackendUnavailable) {
		t.Fatalf("expected BACKEND_UNAVAILABLE, got %v", err)
	}
	if errors.Is(err, errors.ErrCodeDecodeFailed) {
		t.Error("backend failure must not surface as DECODE_FAILED")
	}
}

func TestGenerateTyped_PrefersJSONGenerator(t *testing.T) {
	m := &jsonModel{Fake: modeltest.New("m", model.ParameterSet{})}
	m.Reply = `{"label":"x","score":1}`

	if _, err := model.GenerateTyped[verdict](context.Background(), m, model.Text("x"), model.ParameterSet{}); err != nil {
		t.Fatal(err)
	}
	if m.jsonCalls != 1 {
		t.Errorf("GenerateJSON calls = %d, want 1", m.jsonCalls)
	}
}

func TestBase_UpdateParameters(t *testing.T) {
	b := model.NewBase("m", "d", modeltest.MustParams(0.7, 100))

	_, err := b.UpdateParameters(func(p model.ParameterSet) (model.ParameterSet, error) {
		return p.WithTemperature(5)
	})
	if !errors.Is(err, errors.ErrCodeInvalidParameter) {
		t.Fatalf("expected INVALID_PARAMETER, got %v", err)
	}
	if v, _ := b.Parameters().Temperature(); v != 0.7 {
		t.Errorf("failed update must not store anything, temperature = %v", v)
	}

	next, err := b.UpdateParameters(func(p model.ParameterSet) (model.ParameterSet, error) {
		return p.WithTemperature(1.5)
	})
	if err != nil {
		t.Fatal(err)
	}
	if v, _ := next.Temperature(); v != 1.5 {
		t.Errorf("temperature = %v", v)
	}
	if n, _ := b.Parameters().MaxTokens(); n != 100 {
		t.Errorf("max_tokens = %d, want preserved 100", n)
	}
}

func TestUpdateParameters_Merges(t *testing.T) {
	m := modeltest.New("m", modeltest.MustParams(0.7, 100))
	override, _ := model.ParameterSet{}.WithMaxTokens(300)

	got := model.UpdateParameters(m, override)
	if n, _ := got.MaxTokens(); n != 300 {
		t.Errorf("max_tokens = %d", n)
	}
	if v, _ := m.Parameters().Temperature(); v != 0.7 {
		t.Errorf("temperature = %v", v)
	}
}

// Readers racing a writer must only ever see one of the two complete values.
func TestBase_SetParametersNeverTorn(t *testing.T) {
	a := modeltest.MustParams(0.1, 10)
	b := modeltest.MustParams(1.9, 990)
	base := model.NewBase("m", "", a)

	var wg sync.WaitGroup
	stop := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; ; i++ {
			select {
			case <-stop:
				return
			default:
			}
			if i%2 == 0 {
				base.SetParameters(b)
			} else {
				base.SetParameters(a)
			}
		}
	}()

	for i := 0; i < 10000; i++ {
		got := base.Parameters()
		if got != a && got != b {
			close(stop)
			wg.Wait()
			t.Fatalf("observed torn parameter set %v", got)
		}
	}
	close(stop)
	wg.Wait()
}
