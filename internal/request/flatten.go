package request

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"

	"github.com/GabrielNunesIT/netsuite-forms/internal/domain"
	"github.com/GabrielNunesIT/netsuite-forms/internal/properties"
)

// Flatten removes the wrapper levels the form introduces for references,
// anonymous objects and additional fields. An object whose only key is such
// a wrapper is replaced by its flattened child; lists are flattened element
// by element. Additional fields next to required siblings are merged into
// their parent. Custom field entries are expanded into direct keys and win
// over siblings of the same name.
//
// Values are expected in the shape produced by encoding/json: map[string]any
// and []any.
func (a *Assembler) Flatten(value any) (any, error) {
	switch v := value.(type) {
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			flat, err := a.Flatten(item)
			if err != nil {
				return nil, err
			}
			out[i] = flat
		}
		return out, nil

	case map[string]any:
		if len(v) == 1 {
			for key, child := range v {
				if a.policy.IsWrapperKey(key) && isObject(child) {
					return a.Flatten(child)
				}
			}
		}

		out := make(map[string]any, len(v))
		for _, key := range slices.Sorted(maps.Keys(v)) {
			if key == a.policy.CustomFields || key == a.policy.AdditionalFields {
				continue
			}
			flat, err := a.Flatten(v[key])
			if err != nil {
				return nil, err
			}
			out[key] = flat
		}

		// optional members of a nested group sit next to the required ones
		if additional, ok := v[a.policy.AdditionalFields]; ok {
			flat, err := a.Flatten(additional)
			if err != nil {
				return nil, err
			}
			if members, ok := flat.(map[string]any); ok {
				maps.Copy(out, members)
			} else {
				out[a.policy.AdditionalFields] = flat
			}
		}

		if custom, ok := v[a.policy.CustomFields]; ok {
			expanded, err := a.expandCustomFields(custom)
			if err != nil {
				return nil, err
			}
			maps.Copy(out, expanded)
		}

		return out, nil

	default:
		return value, nil
	}
}

// expandCustomFields turns {CustomField: [{fieldName, fieldType, value}]}
// into {fieldName: value}. Values are kept as entered.
func (a *Assembler) expandCustomFields(custom any) (map[string]any, error) {
	out := map[string]any{}

	group, ok := custom.(map[string]any)
	if !ok {
		return out, nil
	}
	entries, ok := group[a.policy.CustomFieldEntry].([]any)
	if !ok {
		return out, nil
	}

	for _, e := range entries {
		entry, _ := e.(map[string]any)
		name, _ := entry[properties.FieldNameKey].(string)
		value, hasValue := entry[properties.ValueKey]

		if name == "" || !hasValue {
			return nil, fmt.Errorf("%w: invalid custom field entry: %s", domain.ErrInvalidRequest, describe(e))
		}
		out[name] = value
	}

	return out, nil
}

func isObject(value any) bool {
	switch v := value.(type) {
	case map[string]any:
		return v != nil
	case []any:
		return v != nil
	default:
		return false
	}
}

func describe(value any) string {
	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Sprint(value)
	}
	return string(b)
}
