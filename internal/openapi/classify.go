// Package openapi classifies raw OpenAPI schema shapes into the variants the
// property compiler understands.
package openapi

import (
	"slices"

	"github.com/getkin/kin-openapi/openapi3"
)

// OpenAPI type names.
const (
	TypeBoolean = "boolean"
	TypeNumber  = "number"
	TypeString  = "string"
	TypeInteger = "integer"
	TypeObject  = "object"
	TypeArray   = "array"
)

// OpenAPI format names.
const (
	FormatInt32    = "int32"
	FormatInt64    = "int64"
	FormatFloat    = "float"
	FormatDouble   = "double"
	FormatDate     = "date"
	FormatDateTime = "date-time"
	FormatURI      = "URI"
	FormatJSONPath = "JSONPath"
)

// ValidHTTPMethods lists the recognised operation keys of a path item, in
// the order operations are visited.
var ValidHTTPMethods = []string{"get", "put", "post", "delete", "options", "head", "patch", "trace"}

// Kind is the shape of a schema as seen by the property compiler.
type Kind int

const (
	// KindInvalid is neither a reference nor a schema object.
	KindInvalid Kind = iota
	// KindReference is a $ref to a component.
	KindReference
	// KindOneOf is a oneOf union, treated as a generic reference.
	KindOneOf
	// KindObject is an inline object, or a schema with no declared type.
	KindObject
	// KindArray is an inline array.
	KindArray
	// KindScalar is a string, number, integer or boolean.
	KindScalar
	// KindUnsupported is a schema object with any other type.
	KindUnsupported
)

// String returns the string representation of Kind.
func (k Kind) String() string {
	switch k {
	case KindReference:
		return "reference"
	case KindOneOf:
		return "oneOf"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	case KindScalar:
		return "scalar"
	case KindUnsupported:
		return "unsupported"
	default:
		return "invalid"
	}
}

// Classify resolves the kind of a schema reference. References win over
// inline content, then unions, then the declared type.
func Classify(ref *openapi3.SchemaRef) Kind {
	if IsReference(ref) {
		return KindReference
	}
	if IsOneOf(ref) {
		return KindOneOf
	}
	if !IsSchemaObject(ref) {
		return KindInvalid
	}

	typ := TypeOf(ref.Value)
	switch {
	case typ == "" || IsObjectType(typ):
		return KindObject
	case IsArrayType(typ):
		return KindArray
	case IsSimpleType(typ):
		return KindScalar
	default:
		return KindUnsupported
	}
}

// IsReference reports whether the schema is a $ref.
func IsReference(ref *openapi3.SchemaRef) bool {
	return ref != nil && ref.Ref != ""
}

// IsOneOf reports whether the schema is a oneOf union.
func IsOneOf(ref *openapi3.SchemaRef) bool {
	return ref != nil && ref.Value != nil && len(ref.Value.OneOf) > 0
}

// IsSchemaObject reports whether the schema declares a type or properties.
func IsSchemaObject(ref *openapi3.SchemaRef) bool {
	if ref == nil || ref.Value == nil {
		return false
	}
	return TypeOf(ref.Value) != "" || ref.Value.Properties != nil
}

// TypeOf returns the first declared type of a schema, or "" when absent.
func TypeOf(schema *openapi3.Schema) string {
	if schema == nil || schema.Type == nil {
		return ""
	}
	types := schema.Type.Slice()
	if len(types) == 0 {
		return ""
	}
	return types[0]
}

// IsSimpleType reports whether typ maps to a scalar field.
func IsSimpleType(typ string) bool {
	switch typ {
	case TypeBoolean, TypeNumber, TypeString, TypeInteger:
		return true
	}
	return false
}

// IsObjectType reports whether typ is object.
func IsObjectType(typ string) bool {
	return typ == TypeObject
}

// IsArrayType reports whether typ is array.
func IsArrayType(typ string) bool {
	return typ == TypeArray
}

// IsValidHTTPMethod reports whether method is one of the recognised
// lower-case operation keys.
func IsValidHTTPMethod(method string) bool {
	return slices.Contains(ValidHTTPMethods, method)
}
