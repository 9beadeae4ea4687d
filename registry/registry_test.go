package registry

import (
	"fmt"
	"sync"
	"testing"

	"github.com/kbukum/modelgate/errors"
	"github.com/kbukum/modelgate/model"
	"github.com/kbukum/modelgate/model/modeltest"
)

func TestRegister_Lookup(t *testing.T) {
	r := New()
	m := modeltest.New("deepseek-chat", model.ParameterSet{})
	if err := r.Register(m); err != nil {
		t.Fatal(err)
	}

	got, err := r.Lookup("deepseek-chat")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != model.Model(m) {
		t.Error("Lookup returned a different adapter")
	}
}

func TestLookup_CaseSensitive(t *testing.T) {
	r := New()
	r.MustRegister(modeltest.New("deepseek-chat", model.ParameterSet{}))

	for _, name := range []string{"DeepSeek-Chat", "gpt-9000", ""} {
		if _, err := r.Lookup(name); !errors.Is(err, errors.ErrCodeModelNotFound) {
			t.Errorf("Lookup(%q) = %v, want MODEL_NOT_FOUND", name, err)
		}
	}
}

func TestRegister_DuplicateKeepsFirst(t *testing.T) {
	r := New()
	first := modeltest.New("qwen", model.ParameterSet{})
	second := modeltest.New("qwen", model.ParameterSet{})

	if err := r.Register(first); err != nil {
		t.Fatal(err)
	}
	if err := r.Register(second); !errors.Is(err, errors.ErrCodeDuplicateModel) {
		t.Fatalf("expected DUPLICATE_MODEL, got %v", err)
	}
	got, _ := r.Lookup("qwen")
	if got != model.Model(first) {
		t.Error("duplicate registration replaced the original")
	}
	if r.Len() != 1 {
		t.Errorf("Len = %d", r.Len())
	}
}

func TestRegister_RejectsInvalid(t *testing.T) {
	r := New()
	if err := r.Register(nil); !errors.Is(err, errors.ErrCodeInvalidParameter) {
		t.Errorf("nil model: %v", err)
	}
	if err := r.Register(modeltest.New("", model.ParameterSet{})); !errors.Is(err, errors.ErrCodeInvalidParameter) {
		t.Errorf("empty name: %v", err)
	}
}

func TestAll_IsSnapshot(t *testing.T) {
	r := New()
	r.MustRegister(modeltest.New("a", model.ParameterSet{}))

	snap := r.All()
	r.MustRegister(modeltest.New("b", model.ParameterSet{}))
	delete(snap, "a")

	if len(snap) != 0 {
		t.Errorf("snapshot changed size: %d", len(snap))
	}
	if _, err := r.Lookup("a"); err != nil {
		t.Error("mutating the snapshot must not affect the registry")
	}
	if got := r.Names(); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("Names() = %v", got)
	}
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	r := New()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_ = r.Register(modeltest.New(fmt.Sprintf("m-%d", i), model.ParameterSet{}))
		}(i)
		go func() {
			defer wg.Done()
			_ = r.All()
			_, _ = r.Lookup("m-0")
		}()
	}
	wg.Wait()
	if r.Len() != 20 {
		t.Errorf("Len = %d, want 20", r.Len())
	}
}
