package schema

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/GabrielNunesIT/netsuite-forms/internal/domain"
	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"
)

// LoadFile reads the OpenAPI document at path and indexes it.
func LoadFile(path string, opts ...Option) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read OpenAPI file: %w", err)
	}

	return LoadData(data, opts...)
}

// LoadData parses an in-memory OpenAPI document, JSON or YAML, and indexes it.
// References are kept as written and only resolved by name while compiling,
// so a reference to an undefined component does not fail the load.
func LoadData(data []byte, opts ...Option) (*Index, error) {
	doc, err := decodeDocument(data)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse OpenAPI document: %w", domain.ErrMalformedSchema, err)
	}

	return New(doc, opts...)
}

func decodeDocument(data []byte) (*openapi3.T, error) {
	if !json.Valid(data) {
		var raw any
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, err
		}

		converted, err := json.Marshal(jsonCompatible(raw))
		if err != nil {
			return nil, err
		}
		data = converted
	}

	doc := &openapi3.T{}
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// jsonCompatible rewrites YAML maps with non-string keys, such as response
// codes, into string-keyed maps.
func jsonCompatible(value any) any {
	switch v := value.(type) {
	case map[string]any:
		for k, item := range v {
			v[k] = jsonCompatible(item)
		}
		return v
	case map[any]any:
		out := make(map[string]any, len(v))
		for k, item := range v {
			out[fmt.Sprint(k)] = jsonCompatible(item)
		}
		return out
	case []any:
		for i, item := range v {
			v[i] = jsonCompatible(item)
		}
		return v
	default:
		return value
	}
}
