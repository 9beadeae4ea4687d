// Package modeltest provides an in-memory model.Model for tests.
package modeltest

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/kbukum/modelgate/model"
)

// Fake is a scripted model. It returns Reply (or the result of ReplyFunc) and
// records every call.
type Fake struct {
	*model.Base

	// Reply is returned by Generate when ReplyFunc is nil.
	Reply string
	// ReplyFunc, when set, computes the reply for each call.
	ReplyFunc func(prompt model.Prompt, params model.ParameterSet) (string, error)
	// Err is returned by Generate when set.
	Err error

	calls atomic.Int64

	mu         sync.Mutex
	lastPrompt model.Prompt
	lastParams model.ParameterSet
}

// New creates a Fake with the given name and default parameters.
func New(name string, params model.ParameterSet) *Fake {
	return &Fake{Base: model.NewBase(name, "fake model "+name, params)}
}

// Generate records the call and returns the scripted result.
func (f *Fake) Generate(ctx context.Context, prompt model.Prompt, params model.ParameterSet) (string, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.lastPrompt = prompt
	f.lastParams = params
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if f.Err != nil {
		return "", f.Err
	}
	if f.ReplyFunc != nil {
		return f.ReplyFunc(prompt, params)
	}
	return f.Reply, nil
}

// Calls returns how many times Generate was invoked.
func (f *Fake) Calls() int { return int(f.calls.Load()) }

// LastPrompt returns the prompt of the most recent call.
func (f *Fake) LastPrompt() model.Prompt {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastPrompt
}

// LastParams returns the effective parameters of the most recent call.
func (f *Fake) LastParams() model.ParameterSet {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastParams
}

// MustParams builds a ParameterSet or panics; for test fixtures only.
func MustParams(temperature float64, maxTokens int) model.ParameterSet {
	p, err := model.NewParameterSet(temperature, maxTokens)
	if err != nil {
		panic(err)
	}
	return p
}
