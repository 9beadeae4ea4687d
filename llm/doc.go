// Package llm provides config-driven model adapters for HTTP chat backends.
//
// An Adapter composes an httpclient.Client with a Dialect that maps the
// vendor-neutral ChatRequest and ChatResponse to one vendor's wire format,
// in the way database/sql works with drivers. Dialects live in sub-packages
// and register themselves on import:
//
//	import (
//		"github.com/kbukum/modelgate/llm"
//		_ "github.com/kbukum/modelgate/llm/openai"
//	)
//
//	a, err := llm.New(llm.Config{
//		Name:    "deepseek-chat",
//		Dialect: "openai",
//		BaseURL: "https://api.deepseek.com",
//		APIKey:  "${DEEPSEEK_API_KEY}",
//		Version: "deepseek-chat",
//	})
//	text, err := a.Generate(ctx, model.Text("Hello"), a.Parameters())
//
// Failures are reported with the generation error kinds: transport errors,
// timeouts and 5xx answers as BACKEND_UNAVAILABLE, 4xx answers and explicit
// error bodies as BACKEND_REJECTED, and undecodable bodies as
// BACKEND_RESPONSE_INVALID.
package llm
