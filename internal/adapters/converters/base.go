// Package converters exports compiled resource forms as reference documents.
package converters

import (
	"fmt"
	"strings"

	"github.com/GabrielNunesIT/netsuite-forms/internal/domain"
)

// fieldRow is one field of an operation form, flattened for tabular output.
type fieldRow struct {
	depth       int
	label       string
	key         string
	kind        string
	required    bool
	description string
}

// formatMethod returns a styled method string.
func formatMethod(method string) string {
	return strings.ToUpper(method)
}

// formFields returns the fields of op followed by its custom fields group.
func formFields(op *domain.OperationForm) []*domain.Field {
	fields := op.Fields
	if op.CustomFields != nil {
		fields = append(fields[:len(fields):len(fields)], op.CustomFields)
	}
	return fields
}

// flattenFields walks a field tree depth first.
func flattenFields(fields []*domain.Field, depth int) []fieldRow {
	var rows []fieldRow

	for _, f := range fields {
		rows = append(rows, fieldRow{
			depth:       depth,
			label:       f.DisplayName,
			key:         f.Name,
			kind:        fieldKind(f),
			required:    f.Required,
			description: stripHTML(f.Description),
		})
		rows = append(rows, flattenFields(f.Children(), depth+1)...)
	}

	return rows
}

func fieldKind(f *domain.Field) string {
	kind := string(f.Type)

	switch {
	case f.Type == domain.FieldOptions && f.LoadOptionsMethod != "":
		kind += " (dynamic)"
	case f.Type == domain.FieldOptions:
		kind = fmt.Sprintf("%s (%d)", kind, countOptions(f.Options))
	case f.Type == domain.FieldFixedCollection && len(f.Groups) == 1:
		kind = fmt.Sprintf("%s: %s", kind, f.Groups[0].Name)
	}

	if f.MultipleValues {
		kind += ", multiple"
	}

	return kind
}

// countOptions skips the empty placeholder option.
func countOptions(options []domain.Option) int {
	n := 0
	for _, o := range options {
		if o.Value != "" {
			n++
		}
	}
	return n
}

func requiredLabel(required bool) string {
	if required {
		return "Yes"
	}
	return "No"
}

func truncate(s string, max int) string {
	if len(s) > max {
		return s[:max-3] + "..."
	}
	return s
}

func stripHTML(s string) string {
	result := s
	for {
		start := strings.Index(result, "<")
		if start == -1 {
			break
		}
		end := strings.Index(result[start:], ">")
		if end == -1 {
			break
		}
		result = result[:start] + result[start+end+1:]
	}
	result = strings.ReplaceAll(result, "&amp;", "&")
	result = strings.ReplaceAll(result, "&lt;", "<")
	result = strings.ReplaceAll(result, "&gt;", ">")
	result = strings.ReplaceAll(result, "&quot;", "\"")
	result = strings.ReplaceAll(result, "&#39;", "'")
	result = strings.ReplaceAll(result, "\n\n", "\n")
	return strings.TrimSpace(result)
}
