package model

import (
	"testing"

	"github.com/kbukum/modelgate/errors"
)

func TestConversation_AppendAndMessages(t *testing.T) {
	c := NewConversation()
	c.AppendUser("hi")
	c.AppendAssistant("hello")
	if err := c.Append(RoleUser, "again"); err != nil {
		t.Fatal(err)
	}

	msgs := c.Messages()
	if len(msgs) != 3 || c.Len() != 3 {
		t.Fatalf("len = %d", len(msgs))
	}
	if msgs[0].Role != RoleUser || msgs[1].Role != RoleAssistant || msgs[2].Content != "again" {
		t.Errorf("unexpected order %+v", msgs)
	}

	msgs[0].Content = "mutated"
	if c.Messages()[0].Content != "hi" {
		t.Error("Messages must return a copy")
	}
}

func TestConversation_RejectsUnknownRole(t *testing.T) {
	c := NewConversation()
	err := c.Append(Role("system"), "x")
	if !errors.Is(err, errors.ErrCodeInvalidParameter) {
		t.Fatalf("expected INVALID_PARAMETER, got %v", err)
	}
	if c.Len() != 0 {
		t.Error("rejected message must not be stored")
	}
}

func TestConversation_ResetAndRollback(t *testing.T) {
	c := NewConversation()
	c.AppendUser("one")
	c.AppendAssistant("two")

	cp := c.Checkpoint()
	c.AppendUser("three")
	c.Rollback(cp)
	if c.Len() != 2 {
		t.Errorf("Rollback left %d messages, want 2", c.Len())
	}

	c.Rollback(10)
	c.Rollback(-1)
	if c.Len() != 2 {
		t.Error("out-of-range rollback should be ignored")
	}

	c.Reset()
	if c.Len() != 0 {
		t.Error("Reset should clear everything")
	}
}

func TestPrompt_Messages(t *testing.T) {
	if got := Text("hi").Messages(); len(got) != 1 || got[0] != (Message{Role: RoleUser, Content: "hi"}) {
		t.Errorf("Text().Messages() = %+v", got)
	}

	history := []Message{
		{Role: RoleUser, Content: "q1"},
		{Role: RoleAssistant, Content: "a1"},
		{Role: RoleUser, Content: "q2"},
	}
	got := Prompt{Text: "q2", History: history}.Messages()
	if len(got) != 3 {
		t.Errorf("history ending with the prompt must not repeat it: %+v", got)
	}

	got = Prompt{Text: "q3", History: history}.Messages()
	if len(got) != 4 || got[3].Content != "q3" {
		t.Errorf("prompt should be appended: %+v", got)
	}
}
