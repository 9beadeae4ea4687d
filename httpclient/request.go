package httpclient

// Request describes an outbound HTTP request.
type Request struct {
	// Method is the HTTP method.
	Method string
	// Path is appended to the client's BaseURL. A full URL is used as is.
	Path string
	// Headers override the client defaults.
	Headers map[string]string
	// Body is JSON-encoded unless it is already []byte.
	Body any
	// Auth overrides the client-level auth.
	Auth *AuthConfig
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Headers    map[string]string
	Body       []byte
}

// IsSuccess reports a 2xx status.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}
