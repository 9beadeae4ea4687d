package session

import (
	"context"
	"strings"
	"sync"

	"github.com/kbukum/modelgate/dispatch"
	"github.com/kbukum/modelgate/errors"
	"github.com/kbukum/modelgate/model"
)

// Catalog is the read side of the model registry a session needs.
type Catalog interface {
	Lookup(name string) (model.Model, error)
	Names() []string
}

// Session is one caller's chat: the model in use and the conversation so far.
// Methods are safe for concurrent use, but a session is meant for one caller.
type Session struct {
	dispatcher *dispatch.Dispatcher
	catalog    Catalog

	mu      sync.Mutex
	current string
	conv    *model.Conversation
}

// New starts a session on modelName, which must be registered.
func New(d *dispatch.Dispatcher, c Catalog, modelName string) (*Session, error) {
	if _, err := c.Lookup(modelName); err != nil {
		return nil, err
	}
	return &Session{
		dispatcher: d,
		catalog:    c,
		current:    modelName,
		conv:       model.NewConversation(),
	}, nil
}

// Ask sends text with the conversation so far and returns the reply. The
// exchange is recorded only when generation succeeds.
func (s *Session) Ask(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", errors.InvalidParameter("prompt", "is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cp := s.conv.Checkpoint()
	history := s.conv.Messages()
	s.conv.AppendUser(text)

	reply, err := s.dispatcher.Do(ctx, dispatch.Request{
		Capability: dispatch.CapabilityTextGeneration,
		Model:      s.current,
		Prompt:     model.Prompt{Text: text, History: history},
	})
	if err != nil {
		s.conv.Rollback(cp)
		return "", err
	}
	s.conv.AppendAssistant(reply)
	return reply, nil
}

// Use switches to another registered model. The conversation is kept.
func (s *Session) Use(name string) error {
	if _, err := s.catalog.Lookup(name); err != nil {
		return err
	}
	s.mu.Lock()
	s.current = name
	s.mu.Unlock()
	return nil
}

// Current returns the model in use.
func (s *Session) Current() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// SetTemperature changes the stored temperature of the current model. It
// affects every caller of that model, not only this session.
func (s *Session) SetTemperature(v float64) (model.ParameterSet, error) {
	if _, err := (model.ParameterSet{}).WithTemperature(v); err != nil {
		return model.ParameterSet{}, err
	}
	m, err := s.catalog.Lookup(s.Current())
	if err != nil {
		return model.ParameterSet{}, err
	}
	if u, ok := m.(model.ParameterUpdater); ok {
		return u.UpdateParameters(func(cur model.ParameterSet) (model.ParameterSet, error) {
			return cur.WithTemperature(v)
		})
	}
	next, err := m.Parameters().WithTemperature(v)
	if err != nil {
		return model.ParameterSet{}, err
	}
	m.SetParameters(next)
	return next, nil
}

// Clear drops the conversation history.
func (s *Session) Clear() {
	s.mu.Lock()
	s.conv.Reset()
	s.mu.Unlock()
}

// History returns a copy of the conversation.
func (s *Session) History() []model.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conv.Messages()
}

// Models lists the registered model names.
func (s *Session) Models() []string {
	return s.catalog.Names()
}
