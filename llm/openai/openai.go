// Package openai implements the OpenAI chat completions dialect.
//
// The same wire format is served by DeepSeek, Qwen compatible mode,
// SiliconFlow and most hosted gateways, so one dialect covers them all.
// Importing the package registers it as "openai".
package openai

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kbukum/modelgate/llm"
)

// Name is the registered dialect name.
const Name = "openai"

func init() {
	llm.RegisterDialect(Name, Dialect{})
}

// Dialect maps requests to POST /chat/completions.
type Dialect struct{}

func (Dialect) Name() string     { return Name }
func (Dialect) ChatPath() string { return "/chat/completions" }

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []llm.Message   `json:"messages"`
	Temperature    *float64        `json:"temperature,omitempty"`
	MaxTokens      *int            `json:"max_tokens,omitempty"`
	Stream         bool            `json:"stream"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content *string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage *llm.Usage `json:"usage"`
	Error *apiError  `json:"error"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    any    `json:"code"`
}

// BuildRequest encodes a non-streaming chat completion request.
func (Dialect) BuildRequest(req llm.ChatRequest) (any, error) {
	if len(req.Messages) == 0 {
		return nil, errors.New("openai: at least one message is required")
	}
	out := chatRequest{
		Model:       req.Model,
		Messages:    req.Messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
	if req.JSON {
		out.ResponseFormat = &responseFormat{Type: "json_object"}
	}
	return out, nil
}

// ParseResponse returns the first choice's message content. A response with
// no choices yields empty content rather than an error.
func (Dialect) ParseResponse(body []byte) (*llm.ChatResponse, error) {
	var resp chatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("openai: decode response: %w", err)
	}
	if resp.Error != nil {
		return nil, &llm.RejectedError{Message: resp.Error.Message, Type: resp.Error.Type}
	}

	out := &llm.ChatResponse{Model: resp.Model}
	if resp.Usage != nil {
		out.Usage = *resp.Usage
	}
	if len(resp.Choices) == 0 {
		// No candidates is empty text, not a failure.
		return out, nil
	}
	content := resp.Choices[0].Message.Content
	if content == nil {
		return nil, errors.New("openai: first choice has no message content")
	}
	out.Content = *content
	return out, nil
}
