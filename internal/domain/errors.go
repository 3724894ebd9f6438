package domain

import "errors"

// Error classes shared by the core. Callers classify failures with errors.Is.
var (
	// ErrMalformedSchema reports a document that cannot be indexed or compiled.
	ErrMalformedSchema = errors.New("malformed schema")

	// ErrInvalidRequest reports form values that cannot be turned into a request.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrNotFound reports a missing tag, operation or component.
	ErrNotFound = errors.New("not found")
)
