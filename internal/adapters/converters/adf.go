package converters

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/GabrielNunesIT/netsuite-forms/internal/domain"
)

const adfFormat = "confluence"

// ADFConverter renders resource forms as Atlassian Document Format (ADF)
// for Confluence.
type ADFConverter struct{}

// NewADFConverter creates a new ADF converter.
func NewADFConverter() *ADFConverter {
	return &ADFConverter{}
}

// Format returns the output format name.
func (c *ADFConverter) Format() string {
	return adfFormat
}

// ADF node types.
type adfDocument struct {
	Version int       `json:"version"`
	Type    string    `json:"type"`
	Content []adfNode `json:"content"`
}

type adfNode struct {
	Type    string    `json:"type"`
	Attrs   *adfAttrs `json:"attrs,omitempty"`
	Content []adfNode `json:"content,omitempty"`
	Text    string    `json:"text,omitempty"`
	Marks   []adfMark `json:"marks,omitempty"`
}

type adfAttrs struct {
	Level int `json:"level,omitempty"`
}

type adfMark struct {
	Type string `json:"type"`
}

// Convert writes form as an ADF document. Each operation gets a heading and
// a bullet list mirroring its field tree.
func (c *ADFConverter) Convert(form *domain.ResourceForm, output io.Writer) error {
	adf := &adfDocument{
		Version: 1,
		Type:    "doc",
		Content: []adfNode{},
	}

	adf.Content = append(adf.Content, c.heading(form.Label, 1))
	adf.Content = append(adf.Content, c.paragraph(fmt.Sprintf("Resource: %s", form.Tag)))
	if form.Title != "" {
		adf.Content = append(adf.Content, c.paragraph(fmt.Sprintf("%s %s", form.Title, form.Version)))
	}

	if len(form.Operations) > 0 {
		adf.Content = append(adf.Content, c.heading("Operations", 2))

		for _, op := range form.Operations {
			adf.Content = append(adf.Content, c.operationNodes(op)...)
		}
	}

	encoder := json.NewEncoder(output)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(adf); err != nil {
		return fmt.Errorf("failed to encode ADF: %w", err)
	}

	return nil
}

func (c *ADFConverter) heading(text string, level int) adfNode {
	return adfNode{
		Type:  "heading",
		Attrs: &adfAttrs{Level: level},
		Content: []adfNode{
			{Type: "text", Text: text},
		},
	}
}

func (c *ADFConverter) paragraph(text string) adfNode {
	return adfNode{
		Type: "paragraph",
		Content: []adfNode{
			{Type: "text", Text: text},
		},
	}
}

func (c *ADFConverter) markedText(text, mark string) adfNode {
	return adfNode{
		Type:  "text",
		Text:  text,
		Marks: []adfMark{{Type: mark}},
	}
}

func (c *ADFConverter) operationNodes(op *domain.OperationForm) []adfNode {
	var nodes []adfNode

	nodes = append(nodes, c.heading(fmt.Sprintf("%s %s", formatMethod(op.Method), op.Path), 3))

	if op.Name != "" {
		nodes = append(nodes, adfNode{
			Type:    "paragraph",
			Content: []adfNode{c.markedText(op.Name, "strong")},
		})
	}

	nodes = append(nodes, adfNode{
		Type: "paragraph",
		Content: []adfNode{
			{Type: "text", Text: "Operation ID: "},
			c.markedText(op.ID, "code"),
		},
	})

	if fields := formFields(op); len(fields) > 0 {
		nodes = append(nodes, c.heading("Fields", 4))
		nodes = append(nodes, c.fieldList(fields))
	}

	nodes = append(nodes, adfNode{Type: "rule"})

	return nodes
}

// fieldList renders fields as a bullet list. Group members become a nested
// list inside the item of their group.
func (c *ADFConverter) fieldList(fields []*domain.Field) adfNode {
	items := make([]adfNode, 0, len(fields))

	for _, f := range fields {
		required := ""
		if f.Required {
			required = ", required"
		}

		line := []adfNode{
			c.markedText(f.DisplayName, "strong"),
			{Type: "text", Text: " "},
			c.markedText(f.Name, "code"),
			{Type: "text", Text: fmt.Sprintf(" (%s%s)", fieldKind(f), required)},
		}
		if desc := stripHTML(f.Description); desc != "" {
			line = append(line, adfNode{Type: "text", Text: ": " + desc})
		}

		item := adfNode{
			Type:    "listItem",
			Content: []adfNode{{Type: "paragraph", Content: line}},
		}
		if children := f.Children(); len(children) > 0 {
			item.Content = append(item.Content, c.fieldList(children))
		}

		items = append(items, item)
	}

	return adfNode{
		Type:    "bulletList",
		Content: items,
	}
}
