package properties

import (
	"github.com/GabrielNunesIT/netsuite-forms/internal/domain"
)

// Custom field entry keys.
const (
	FieldNameKey = "fieldName"
	FieldTypeKey = "fieldType"
	ValueKey     = "value"
	ItemsKey     = "items"
)

// Custom field types beyond the scalar leaf types.
const (
	CustomFieldSelect      = "select"
	CustomFieldMultiSelect = "multiSelect"
)

var scalarCustomFieldTypes = []domain.FieldType{
	domain.FieldString,
	domain.FieldNumber,
	domain.FieldBoolean,
	domain.FieldDateTime,
}

// CustomFieldsField builds the repeatable custom fields group. Each entry
// carries a field name chosen from a dynamically loaded list, a field type
// and one value field per type, shown only for that type. Select values
// reuse the generic component fields.
func (c *Compiler) CustomFieldsField() (*domain.Field, error) {
	types := customFieldTypeOptions()

	values := []*domain.Field{
		{
			DisplayName:       "Field Name",
			Name:              FieldNameKey,
			Type:              domain.FieldOptions,
			Default:           "",
			Required:          true,
			LoadOptionsMethod: "loadCustomFields",
		},
		{
			DisplayName: "Field Type",
			Name:        FieldTypeKey,
			Type:        domain.FieldOptions,
			Default:     "",
			Required:    true,
			Options:     types,
		},
	}

	for _, t := range types {
		if t.Value == "" {
			continue
		}

		value, err := c.customFieldValue(t.Value)
		if err != nil {
			return nil, err
		}
		values = append(values, value)
	}

	return &domain.Field{
		DisplayName:    "Custom Fields",
		Name:           c.policy.CustomFields,
		Type:           domain.FieldFixedCollection,
		Default:        map[string]any{},
		MultipleValues: true,
		Description:    "List of Custom Fields",
		Groups: []domain.Group{{
			Name:        c.policy.CustomFieldEntry,
			DisplayName: c.policy.CustomFieldEntry,
			Fields:      values,
		}},
	}, nil
}

func customFieldTypeOptions() []domain.Option {
	options := make([]domain.Option, 0, len(scalarCustomFieldTypes)+3)
	for _, t := range scalarCustomFieldTypes {
		options = append(options, domain.Option{Name: Label(string(t)), Value: string(t)})
	}
	options = append(options,
		domain.Option{},
		domain.Option{Name: "Select", Value: CustomFieldSelect},
		domain.Option{Name: "Multi Select", Value: CustomFieldMultiSelect},
	)
	SortOptions(options)
	return options
}

func (c *Compiler) customFieldValue(fieldType string) (*domain.Field, error) {
	show := &domain.DisplayOptions{
		Show: map[string][]string{FieldTypeKey: {fieldType}},
	}

	switch fieldType {
	case CustomFieldSelect, CustomFieldMultiSelect:
		generic, err := c.genericFields()
		if err != nil {
			return nil, err
		}

		value := &domain.Field{
			DisplayName:    "Value",
			Name:           ValueKey,
			Type:           domain.FieldCollection,
			Default:        map[string]any{},
			DisplayOptions: show,
			Fields:         generic,
		}
		if fieldType == CustomFieldMultiSelect {
			value.Fields = []*domain.Field{{
				DisplayName:    "Items",
				Name:           ItemsKey,
				Type:           domain.FieldCollection,
				Default:        map[string]any{},
				MultipleValues: true,
				Fields:         generic,
			}}
		}
		return value, nil

	default:
		typ := domain.FieldType(fieldType)
		return &domain.Field{
			DisplayName:    "Value",
			Name:           ValueKey,
			Type:           typ,
			Default:        leafDefault(typ),
			DisplayOptions: show,
		}, nil
	}
}

func (c *Compiler) genericFields() ([]*domain.Field, error) {
	ref, err := c.index.Component(c.policy.GenericComponent)
	if err != nil {
		return nil, err
	}
	return c.componentFields(c.policy.GenericComponent, ref.Value)
}
