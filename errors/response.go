package errors

// ErrorResponse is the JSON structure returned to clients following RFC 7807.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody contains the error details sent to clients.
type ErrorBody struct {
	Code      ErrorCode      `json:"code"`
	Message   string         `json:"message"`
	Retryable bool           `json:"retryable"`
	Details   map[string]any `json:"details,omitempty"`
}

// ToResponse converts an AppError to an ErrorResponse for JSON serialization.
func (e *AppError) ToResponse() ErrorResponse {
	return ErrorResponse{
		Error: ErrorBody{
			Code:      e.Code,
			Message:   e.Message,
			Retryable: e.Retryable,
			Details:   e.Details,
		},
	}
}

// ResponseFor renders any error as a status and body. Errors outside the
// taxonomy become INTERNAL_ERROR.
func ResponseFor(err error) (int, ErrorResponse) {
	appErr, ok := AsAppError(err)
	if !ok {
		appErr = Internal(err)
	}
	return appErr.HTTPStatus, appErr.ToResponse()
}
