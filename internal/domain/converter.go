package domain

import "io"

// Converter defines the interface for form reference exporters.
type Converter interface {
	// Convert renders a compiled resource form to the target format.
	Convert(form *ResourceForm, output io.Writer) error

	// Format returns the output format name (e.g., "pdf", "docx").
	Format() string
}
