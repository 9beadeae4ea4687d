// Package httpclient is the JSON-over-HTTP transport used by backend adapters.
//
// Failures are classified into *Error values (timeout, connection, auth,
// rate_limit, validation, server, overloaded) with a Retryable flag. Retry,
// circuit breaking and the concurrency cap from the resilience package are
// applied per request when configured:
//
//	c, err := httpclient.New(httpclient.Config{
//		BaseURL:        "https://api.deepseek.com",
//		Auth:           httpclient.BearerAuth(apiKey),
//		Retry:          httpclient.DefaultRetryConfig(),
//		CircuitBreaker: httpclient.DefaultCircuitBreakerConfig("deepseek-chat"),
//	})
//	body, err := c.PostJSON(ctx, "/chat/completions", payload)
package httpclient
