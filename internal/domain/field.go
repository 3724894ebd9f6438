// Package domain provides core models shared by the schema index, the property
// compiler, the request assembler and the exporters.
package domain

// FieldType is the widget type of a compiled field.
type FieldType string

// Field types produced by the property compiler.
const (
	FieldString          FieldType = "string"
	FieldNumber          FieldType = "number"
	FieldBoolean         FieldType = "boolean"
	FieldDateTime        FieldType = "dateTime"
	FieldOptions         FieldType = "options"
	FieldCollection      FieldType = "collection"
	FieldFixedCollection FieldType = "fixedCollection"
	FieldResourceLocator FieldType = "resourceLocator"
)

// IsGroup reports whether fields of this type hold nested fields.
func (t FieldType) IsGroup() bool {
	return t == FieldCollection || t == FieldFixedCollection
}

// Option is a selectable choice of an options field.
type Option struct {
	Name        string `json:"name" yaml:"name"`
	Value       string `json:"value" yaml:"value"`
	Action      string `json:"action,omitempty" yaml:"action,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Group is the single named sub-level of a fixed collection. The group name
// becomes a wrapper key in the submitted values.
type Group struct {
	Name        string   `json:"name" yaml:"name"`
	DisplayName string   `json:"displayName" yaml:"displayName"`
	Fields      []*Field `json:"values" yaml:"values"`
}

// DisplayOptions restricts when a field is shown, keyed by sibling field name.
type DisplayOptions struct {
	Show map[string][]string `json:"show" yaml:"show"`
}

// LocatorMode is one input mode of a resource locator field.
type LocatorMode struct {
	DisplayName      string `json:"displayName" yaml:"displayName"`
	Name             string `json:"name" yaml:"name"`
	Type             string `json:"type" yaml:"type"`
	SearchListMethod string `json:"searchListMethod,omitempty" yaml:"searchListMethod,omitempty"`
	Hint             string `json:"hint,omitempty" yaml:"hint,omitempty"`
	Default          string `json:"default" yaml:"default"`
}

// Field is a node of the compiled form-field tree. Leaves carry a scalar
// default; collections carry Fields; fixed collections carry exactly one Group.
type Field struct {
	DisplayName       string          `json:"displayName" yaml:"displayName"`
	Name              string          `json:"name" yaml:"name"`
	Type              FieldType       `json:"type" yaml:"type"`
	Required          bool            `json:"required,omitempty" yaml:"required,omitempty"`
	Default           any             `json:"default" yaml:"default"`
	Description       string          `json:"description,omitempty" yaml:"description,omitempty"`
	Options           []Option        `json:"options,omitempty" yaml:"options,omitempty"`
	Fields            []*Field        `json:"fields,omitempty" yaml:"fields,omitempty"`
	Groups            []Group         `json:"groups,omitempty" yaml:"groups,omitempty"`
	MultipleValues    bool            `json:"multipleValues,omitempty" yaml:"multipleValues,omitempty"`
	LoadOptionsMethod string          `json:"loadOptionsMethod,omitempty" yaml:"loadOptionsMethod,omitempty"`
	Modes             []LocatorMode   `json:"modes,omitempty" yaml:"modes,omitempty"`
	NoDataExpression  bool            `json:"noDataExpression,omitempty" yaml:"noDataExpression,omitempty"`
	DisplayOptions    *DisplayOptions `json:"displayOptions,omitempty" yaml:"displayOptions,omitempty"`
}

// Children returns the nested fields of a group, looking through the single
// group of a fixed collection.
func (f *Field) Children() []*Field {
	if f.Type == FieldFixedCollection {
		var children []*Field
		for _, g := range f.Groups {
			children = append(children, g.Fields...)
		}
		return children
	}
	return f.Fields
}

// Lookup finds a direct child by key.
func (f *Field) Lookup(name string) *Field {
	for _, child := range f.Children() {
		if child.Name == name {
			return child
		}
	}
	return nil
}

// OperationForm is the compiled form of one resource operation.
type OperationForm struct {
	ID      string   `json:"id" yaml:"id"`
	Method  string   `json:"method" yaml:"method"`
	Path    string   `json:"path" yaml:"path"`
	Name    string   `json:"name" yaml:"name"`
	Summary string   `json:"summary,omitempty" yaml:"summary,omitempty"`
	Fields  []*Field `json:"fields" yaml:"fields"`
	// CustomFields is nil unless the operation inserts or updates records.
	CustomFields *Field `json:"customFields,omitempty" yaml:"customFields,omitempty"`
}

// ResourceForm groups the compiled operations of one resource tag.
type ResourceForm struct {
	Tag        string           `json:"tag" yaml:"tag"`
	Label      string           `json:"label" yaml:"label"`
	Title      string           `json:"title,omitempty" yaml:"title,omitempty"`
	Version    string           `json:"version,omitempty" yaml:"version,omitempty"`
	Operations []*OperationForm `json:"operations" yaml:"operations"`
}
