// Package server exposes the model registry and dispatcher over HTTP.
//
// Routes:
//
//	GET  /health                      backend health per model
//	GET  /v1/models                   registered models with their parameters
//	GET  /v1/models/:name
//	PUT  /v1/models/:name/parameters  merge new defaults into a model
//	GET  /v1/capabilities
//	POST /v1/execute                  {model, prompt, history, temperature, max_tokens}
//	POST /v1/execute/json             same, with the reply decoded as JSON
//
// Errors use the envelope {"error": {"code", "message", "retryable", "details"}}.
package server
