// Package request turns filled form values back into HTTP request descriptors.
package request

import "github.com/getkin/kin-openapi/openapi3"

// Location is where a form value is sent.
type Location int

const (
	// LocationBody is the JSON body, used for anything not declared as a parameter.
	LocationBody Location = iota
	LocationPath
	LocationQuery
	LocationHeader
	LocationCookie
)

// String returns the string representation of Location.
func (l Location) String() string {
	switch l {
	case LocationPath:
		return openapi3.ParameterInPath
	case LocationQuery:
		return openapi3.ParameterInQuery
	case LocationHeader:
		return openapi3.ParameterInHeader
	case LocationCookie:
		return openapi3.ParameterInCookie
	default:
		return "body"
	}
}

// LocationOf maps a declared parameter to its location. Undeclared keys and
// unrecognised locations go to the body.
func LocationOf(param *openapi3.Parameter) Location {
	if param == nil {
		return LocationBody
	}

	switch param.In {
	case openapi3.ParameterInPath:
		return LocationPath
	case openapi3.ParameterInQuery:
		return LocationQuery
	case openapi3.ParameterInHeader:
		return LocationHeader
	case openapi3.ParameterInCookie:
		return LocationCookie
	default:
		return LocationBody
	}
}
