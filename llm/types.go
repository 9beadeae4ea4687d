package llm

// Message is one chat turn in a vendor request.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the vendor-neutral request a Dialect encodes.
type ChatRequest struct {
	// Model is the upstream model id, taken from Config.Version.
	Model    string
	Messages []Message
	// Temperature and MaxTokens are nil when the backend default applies.
	Temperature *float64
	MaxTokens   *int
	// JSON asks the backend to constrain output to a JSON value.
	JSON bool
}

// ChatResponse is the vendor-neutral result a Dialect decodes.
type ChatResponse struct {
	Content string
	Model   string
	Usage   Usage
}

// Usage reports token consumption when the backend provides it.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// RejectedError is returned by a Dialect when the response body carries an
// explicit error from the backend.
type RejectedError struct {
	Message string
	Type    string
}

func (e *RejectedError) Error() string {
	if e.Type != "" {
		return e.Type + ": " + e.Message
	}
	return e.Message
}
