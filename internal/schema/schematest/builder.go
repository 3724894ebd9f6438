// Package schematest builds small OpenAPI documents for tests.
package schematest

import (
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// Builder accumulates paths and component schemas.
type Builder struct {
	doc *openapi3.T
}

// NewBuilder returns a builder for an empty 3.0 document.
func NewBuilder() *Builder {
	return &Builder{
		doc: &openapi3.T{
			OpenAPI: "3.0.1",
			Info:    &openapi3.Info{Title: "NetSuite REST API", Version: "v1"},
			Paths:   openapi3.NewPaths(),
			Components: &openapi3.Components{
				Schemas: openapi3.Schemas{},
			},
		},
	}
}

// Operation registers op under method (any case) and template.
func (b *Builder) Operation(template, method string, op *openapi3.Operation) *Builder {
	item := b.doc.Paths.Value(template)
	if item == nil {
		item = &openapi3.PathItem{}
		b.doc.Paths.Set(template, item)
	}
	item.SetOperation(strings.ToUpper(method), op)
	return b
}

// Component registers a component schema.
func (b *Builder) Component(name string, schema *openapi3.Schema) *Builder {
	b.doc.Components.Schemas[name] = openapi3.NewSchemaRef("", schema)
	return b
}

// NsResource registers the generic reference component with its identity
// fields, a denylisted refName and a read-only links array.
func (b *Builder) NsResource() *Builder {
	titled := func(title string) *openapi3.SchemaRef {
		s := openapi3.NewStringSchema()
		s.Title = title
		return Inline(s)
	}

	links := ArrayOf("nsLink")
	links.Value.ReadOnly = true

	return b.Component("nsResource", Object(map[string]*openapi3.SchemaRef{
		"id":         titled("Internal identifier"),
		"refName":    titled("Reference Name"),
		"externalId": titled("External identifier"),
		"links":      links,
	}))
}

// Build returns the document.
func (b *Builder) Build() *openapi3.T {
	return b.doc
}

// Op returns an operation with a single tag and a summary.
func Op(tag, summary string, params ...*openapi3.Parameter) *openapi3.Operation {
	op := openapi3.NewOperation()
	op.Tags = []string{tag}
	op.Summary = summary
	for _, p := range params {
		op.AddParameter(p)
	}
	return op
}

// WithBody sets a JSON request body referencing component.
func WithBody(op *openapi3.Operation, component string) *openapi3.Operation {
	op.RequestBody = &openapi3.RequestBodyRef{
		Value: openapi3.NewRequestBody().WithJSONSchemaRef(Ref(component)),
	}
	return op
}

// Ref returns a reference to a component schema.
func Ref(component string) *openapi3.SchemaRef {
	return openapi3.NewSchemaRef("#/components/schemas/"+component, nil)
}

// Object returns an object schema with the given properties.
func Object(props map[string]*openapi3.SchemaRef, required ...string) *openapi3.Schema {
	s := openapi3.NewObjectSchema()
	for name, prop := range props {
		s.WithPropertyRef(name, prop)
	}
	if len(required) > 0 {
		s.WithRequired(required)
	}
	return s
}

// Inline wraps a schema into a reference-less SchemaRef.
func Inline(s *openapi3.Schema) *openapi3.SchemaRef {
	return openapi3.NewSchemaRef("", s)
}

// String returns an inline string property.
func String() *openapi3.SchemaRef {
	return Inline(openapi3.NewStringSchema())
}

// Integer returns an inline integer property.
func Integer() *openapi3.SchemaRef {
	return Inline(openapi3.NewIntegerSchema())
}

// Bool returns an inline boolean property.
func Bool() *openapi3.SchemaRef {
	return Inline(openapi3.NewBoolSchema())
}

// ArrayOf returns an inline array of references to component.
func ArrayOf(component string) *openapi3.SchemaRef {
	s := openapi3.NewArraySchema()
	s.Items = Ref(component)
	return Inline(s)
}

// Param returns a parameter with an inline schema.
func Param(name, in string, required bool, schema *openapi3.Schema) *openapi3.Parameter {
	return &openapi3.Parameter{
		Name:     name,
		In:       in,
		Required: required,
		Schema:   Inline(schema),
	}
}
