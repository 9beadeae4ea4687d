package model

import (
	"context"
)

// Model is the contract every text-generation backend satisfies to take part
// in the registry.
type Model interface {
	// Name returns the stable unique identifier (e.g. "deepseek-chat").
	Name() string

	// Description returns a human-readable summary.
	Description() string

	// Parameters returns a snapshot of the current default parameters.
	Parameters() ParameterSet

	// SetParameters atomically replaces the default parameters.
	SetParameters(p ParameterSet)

	// Generate performs one synchronous round trip to the backend and returns
	// the extracted text. Failures are BACKEND_UNAVAILABLE,
	// BACKEND_RESPONSE_INVALID or BACKEND_REJECTED.
	Generate(ctx context.Context, prompt Prompt, params ParameterSet) (string, error)
}

// JSONGenerator is implemented by backends that can constrain their output to
// JSON (e.g. response_format / format=json). GenerateTyped prefers it.
type JSONGenerator interface {
	GenerateJSON(ctx context.Context, prompt Prompt, params ParameterSet) (string, error)
}
