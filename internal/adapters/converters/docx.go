package converters

import (
	"fmt"
	"io"
	"strings"

	"github.com/GabrielNunesIT/netsuite-forms/internal/domain"
	"github.com/gomutex/godocx"
	"github.com/gomutex/godocx/docx"
)

const docxFormat = "docx"

// DocxConverter renders resource forms as Word (DOCX) documents.
type DocxConverter struct{}

// NewDocxConverter creates a new DOCX converter.
func NewDocxConverter() *DocxConverter {
	return &DocxConverter{}
}

// Format returns the output format name.
func (c *DocxConverter) Format() string {
	return docxFormat
}

// Convert writes one heading per operation followed by its fields.
func (c *DocxConverter) Convert(form *domain.ResourceForm, output io.Writer) error {
	document, err := godocx.NewDocument()
	if err != nil {
		return fmt.Errorf("failed to create document: %w", err)
	}

	c.addTitle(document, form)
	c.addOperations(document, form)

	if err := document.Write(output); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}

	return nil
}

func (c *DocxConverter) addTitle(document *docx.RootDoc, form *domain.ResourceForm) {
	_, _ = document.AddHeading(form.Label, 0)
	document.AddParagraph(fmt.Sprintf("Resource: %s", form.Tag))
	if form.Title != "" {
		document.AddParagraph(fmt.Sprintf("%s %s", form.Title, form.Version))
	}
	document.AddEmptyParagraph()
}

func (c *DocxConverter) addOperations(document *docx.RootDoc, form *domain.ResourceForm) {
	if len(form.Operations) == 0 {
		return
	}

	_, _ = document.AddHeading("Operations", 1)

	for _, op := range form.Operations {
		c.addOperation(document, op)
	}
}

func (c *DocxConverter) addOperation(document *docx.RootDoc, op *domain.OperationForm) {
	_, _ = document.AddHeading(fmt.Sprintf("%s %s", formatMethod(op.Method), op.Path), 2)

	if op.Name != "" {
		document.AddParagraph(op.Name)
	}
	document.AddParagraph(fmt.Sprintf("Operation ID: %s", op.ID))

	rows := flattenFields(formFields(op), 0)
	if len(rows) > 0 {
		_, _ = document.AddHeading("Fields", 3)

		for _, row := range rows {
			document.AddParagraph(docxFieldLine(row))
		}
	}

	document.AddEmptyParagraph()
}

func docxFieldLine(row fieldRow) string {
	required := ""
	if row.required {
		required = " (required)"
	}

	line := fmt.Sprintf("%s• %s [%s]: %s%s", strings.Repeat("    ", row.depth), row.label, row.key, row.kind, required)
	if row.description != "" {
		line += " - " + row.description
	}
	return line
}
