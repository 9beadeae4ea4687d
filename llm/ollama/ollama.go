// Package ollama implements the Ollama native chat dialect (/api/chat).
// Importing the package registers it as "ollama".
package ollama

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kbukum/modelgate/llm"
)

// Name is the registered dialect name.
const Name = "ollama"

func init() {
	llm.RegisterDialect(Name, Dialect{})
}

// Dialect maps requests to POST /api/chat with streaming disabled.
type Dialect struct{}

func (Dialect) Name() string     { return Name }
func (Dialect) ChatPath() string { return "/api/chat" }

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []llm.Message `json:"messages"`
	Stream   bool          `json:"stream"`
	Format   string        `json:"format,omitempty"`
	Options  *options      `json:"options,omitempty"`
}

type options struct {
	Temperature *float64 `json:"temperature,omitempty"`
	NumPredict  *int     `json:"num_predict,omitempty"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Message *struct {
		Content string `json:"content"`
	} `json:"message"`
	Done            bool   `json:"done"`
	PromptEvalCount int    `json:"prompt_eval_count"`
	EvalCount       int    `json:"eval_count"`
	Error           string `json:"error"`
}

// BuildRequest encodes a chat request. Sampling knobs go in "options".
func (Dialect) BuildRequest(req llm.ChatRequest) (any, error) {
	if len(req.Messages) == 0 {
		return nil, errors.New("ollama: at least one message is required")
	}
	out := chatRequest{Model: req.Model, Messages: req.Messages}
	if req.Temperature != nil || req.MaxTokens != nil {
		out.Options = &options{Temperature: req.Temperature, NumPredict: req.MaxTokens}
	}
	if req.JSON {
		out.Format = "json"
	}
	return out, nil
}

// ParseResponse returns message.content.
func (Dialect) ParseResponse(body []byte) (*llm.ChatResponse, error) {
	var resp chatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("ollama: decode response: %w", err)
	}
	if resp.Error != "" {
		return nil, &llm.RejectedError{Message: resp.Error}
	}
	if resp.Message == nil {
		return nil, errors.New("ollama: response has no message")
	}
	return &llm.ChatResponse{
		Content: resp.Message.Content,
		Model:   resp.Model,
		Usage: llm.Usage{
			PromptTokens:     resp.PromptEvalCount,
			CompletionTokens: resp.EvalCount,
			TotalTokens:      resp.PromptEvalCount + resp.EvalCount,
		},
	}, nil
}
