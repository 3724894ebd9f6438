package domain

// HTTPRequest is the request descriptor handed to the transport. URLPath is
// relative to the record or query base path. Body is usually an object but
// may be any JSON value once wrapper levels are collapsed.
type HTTPRequest struct {
	Method      string         `json:"method" yaml:"method"`
	URLPath     string         `json:"urlPath" yaml:"urlPath"`
	Headers     map[string]any `json:"headers" yaml:"headers"`
	QueryString map[string]any `json:"queryString" yaml:"queryString"`
	Body        any            `json:"body" yaml:"body"`
}

// NewHTTPRequest returns a descriptor with empty, non-nil maps.
func NewHTTPRequest(method, urlPath string) *HTTPRequest {
	return &HTTPRequest{
		Method:      method,
		URLPath:     urlPath,
		Headers:     map[string]any{},
		QueryString: map[string]any{},
		Body:        map[string]any{},
	}
}
