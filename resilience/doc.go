// Package resilience guards calls to remote generation backends.
//
// It provides exponential-backoff Retry, a closed/open/half-open
// CircuitBreaker and a concurrency-capping Bulkhead. The httpclient package
// composes them around each request:
//
//	cb := resilience.NewCircuitBreaker(resilience.DefaultCircuitBreakerConfig("deepseek-chat"))
//	resp, err := resilience.Retry(ctx, resilience.DefaultRetryConfig(), func() (*Response, error) {
//		return resilience.Guard(cb, func() (*Response, error) {
//			return send(ctx, req)
//		})
//	})
package resilience
