package model

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"strings"

	"github.com/kbukum/modelgate/errors"
)

// GenerateTyped runs one generation and decodes the text as T.
//
// Generation failures are returned unchanged; only a successful generation
// whose text is not valid JSON for T yields DECODE_FAILED.
func GenerateTyped[T any](ctx context.Context, m Model, prompt Prompt, params ParameterSet) (T, error) {
	var (
		text string
		err  error
	)
	if jg, ok := m.(JSONGenerator); ok {
		text, err = jg.GenerateJSON(ctx, prompt, params)
	} else {
		text, err = m.Generate(ctx, prompt, params)
	}
	if err != nil {
		var zero T
		return zero, err
	}
	return Decode[T](m.Name(), text)
}

// Decode parses generated text as T. Surrounding markdown code fences are
// tolerated; anything else that is not exactly one JSON value for T fails
// with DECODE_FAILED, including an empty text and a bare null.
func Decode[T any](modelName, text string) (T, error) {
	var out T
	body := stripCodeFence(text)
	if body == "" {
		return out, errors.DecodeFailed(modelName, errEmptyOutput)
	}
	if body == "null" {
		return out, errors.DecodeFailed(modelName, errNullOutput)
	}
	dec := json.NewDecoder(strings.NewReader(body))
	if err := dec.Decode(&out); err != nil {
		var zero T
		return zero, errors.DecodeFailed(modelName, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		var zero T
		return zero, errors.DecodeFailed(modelName, errTrailingData)
	}
	return out, nil
}

var (
	errEmptyOutput  = stderrors.New("empty output")
	errNullOutput   = stderrors.New("output is null")
	errTrailingData = stderrors.New("trailing data after JSON value")
)

// stripCodeFence removes a leading ```lang line and trailing ``` if present.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if idx := strings.Index(s, "\n"); idx >= 0 {
		s = s[idx+1:]
	} else {
		return ""
	}
	if idx := strings.LastIndex(s, "```"); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}
