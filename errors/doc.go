// Package errors provides the error taxonomy shared by the model registry,
// the dispatcher and the backend adapters.
//
// Every failure is an *AppError carrying a machine-readable code, a retryable
// hint and a recommended HTTP status. Callers classify failures with [Is] or
// [CodeOf], which see through fmt.Errorf("%w") wrapping:
//
//	if errors.Is(err, errors.ErrCodeModelNotFound) { ... }
package errors
