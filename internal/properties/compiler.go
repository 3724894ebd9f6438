// Package properties compiles OpenAPI operations into nested form-field trees.
package properties

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/GabrielNunesIT/netsuite-forms/internal/domain"
	"github.com/GabrielNunesIT/netsuite-forms/internal/openapi"
	"github.com/GabrielNunesIT/netsuite-forms/internal/schema"
	"github.com/getkin/kin-openapi/openapi3"
)

const (
	additionalFieldsLabel = "Additional Fields"
	preferredMediaType    = "application/json"
)

// Config tunes the compiler output.
type Config struct {
	// SortCollections orders all-optional groups and both halves of each
	// required/optional split by label.
	SortCollections bool
}

// Compiler turns indexed operations into field trees. It holds no mutable
// state and may be shared.
type Compiler struct {
	index  *schema.Index
	policy schema.Policy
	config Config
}

// NewCompiler creates a compiler over ix.
func NewCompiler(ix *schema.Index, cfg Config) *Compiler {
	return &Compiler{
		index:  ix,
		policy: ix.Policy(),
		config: cfg,
	}
}

// Compile returns the top-level fields of one operation: its parameters
// followed by its request body fields, required first, with the optional
// ones bundled in a trailing additional fields group. Every field is shown
// only for that resource and operation.
func (c *Compiler) Compile(tag, operationID string) ([]*domain.Field, error) {
	op, err := c.index.Operation(tag, operationID)
	if err != nil {
		return nil, err
	}
	return c.compileOperation(op)
}

func (c *Compiler) compileOperation(op *schema.Operation) ([]*domain.Field, error) {
	fields, err := c.parameterFields(op)
	if err != nil {
		return nil, fmt.Errorf("operation %s: %w", op.ID, err)
	}

	if op.Definition.RequestBody != nil {
		body, err := c.requestBodyFields(op.Definition.RequestBody)
		if err != nil {
			return nil, fmt.Errorf("operation %s: %w", op.ID, err)
		}
		fields = append(fields, body...)
	}

	fields = c.applyAdditionalFields(fields)
	for _, f := range fields {
		f.DisplayOptions = showFor(op.Tag, op.ID)
	}

	return fields, nil
}

func (c *Compiler) parameterFields(op *schema.Operation) ([]*domain.Field, error) {
	fields := make([]*domain.Field, 0, len(op.Parameters))

	for _, ref := range op.Parameters {
		f, err := c.parameterField(ref)
		if err != nil {
			return nil, err
		}

		if op.Tag == c.policy.LocatorResource && f.Name == c.policy.LocatorParameter {
			toResourceLocator(f)
		}

		fields = append(fields, f)
	}

	return fields, nil
}

func (c *Compiler) parameterField(ref *openapi3.ParameterRef) (*domain.Field, error) {
	if ref == nil || ref.Ref != "" || ref.Value == nil {
		return nil, fmt.Errorf("%w: referenced parameters not supported", domain.ErrMalformedSchema)
	}

	param := ref.Value
	if param.Schema == nil || param.Schema.Ref != "" || openapi.TypeOf(param.Schema.Value) == "" {
		return nil, fmt.Errorf("%w: parameter '%s' schema does not have type", domain.ErrMalformedSchema, param.Name)
	}

	typ, err := leafType(param.Schema.Value)
	if err != nil {
		return nil, fmt.Errorf("parameter '%s': %w", param.Name, err)
	}

	f := &domain.Field{
		DisplayName: Label(param.Name),
		Name:        param.Name,
		Type:        typ,
		Default:     leafDefault(typ),
		Description: param.Description,
		Required:    param.Required,
	}
	if typ == domain.FieldOptions {
		f.Options = enumOptions(param.Schema.Value.Enum)
	}

	return f, nil
}

func (c *Compiler) requestBodyFields(ref *openapi3.RequestBodyRef) ([]*domain.Field, error) {
	if ref.Value == nil || len(ref.Value.Content) == 0 {
		return nil, fmt.Errorf("%w: invalid or missing requestBody: must have content", domain.ErrMalformedSchema)
	}

	media := ref.Value.Content.Get(preferredMediaType)
	if media == nil {
		first := slices.Sorted(maps.Keys(ref.Value.Content))[0]
		media = ref.Value.Content[first]
	}
	if media == nil || media.Schema == nil {
		return nil, fmt.Errorf("%w: invalid requestBody schema", domain.ErrMalformedSchema)
	}
	if !openapi.IsReference(media.Schema) {
		return nil, fmt.Errorf("%w: only $ref schemas are supported for requestBody", domain.ErrMalformedSchema)
	}

	name, err := c.index.ResolveComponentName(media.Schema.Ref, true)
	if err != nil {
		return nil, err
	}

	component, err := c.index.Component(name)
	if err != nil {
		return nil, err
	}
	if !openapi.IsSchemaObject(component) {
		return nil, fmt.Errorf("%w: component schema %s should be schema object", domain.ErrMalformedSchema, name)
	}

	return c.componentFields(name, component.Value)
}

// componentFields compiles every rendered property of a component, in
// property name order.
func (c *Compiler) componentFields(component string, s *openapi3.Schema) ([]*domain.Field, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: component schema for %s is missing", domain.ErrMalformedSchema, component)
	}
	if s.Properties == nil {
		return nil, fmt.Errorf("%w: component schema for %s does not have properties", domain.ErrMalformedSchema, component)
	}

	fields := make([]*domain.Field, 0, len(s.Properties))
	for _, name := range slices.Sorted(maps.Keys(s.Properties)) {
		prop := s.Properties[name]
		if isReadOnly(prop) || c.policy.SkipsProperty(component, name) {
			continue
		}

		f, err := c.propertyField(name, prop, slices.Contains(s.Required, name))
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}

	return fields, nil
}

func (c *Compiler) propertyField(name string, prop *openapi3.SchemaRef, required bool) (*domain.Field, error) {
	switch openapi.Classify(prop) {
	case openapi.KindReference:
		component, err := c.index.ResolveComponentName(prop.Ref, false)
		if err != nil {
			return nil, err
		}
		return c.referenceField(name, component, false, required)

	case openapi.KindOneOf:
		return c.referenceField(name, c.policy.GenericComponent, false, required)

	case openapi.KindObject:
		return c.collectionField(name, c.policy.AnonymousObject, prop.Value, false, required)

	case openapi.KindArray:
		items := prop.Value.Items
		if !openapi.IsReference(items) {
			return nil, fmt.Errorf("%w: array property '%s' items must be a component reference",
				domain.ErrMalformedSchema, name)
		}
		component, err := c.index.ResolveComponentName(items.Ref, false)
		if err != nil {
			return nil, err
		}
		return c.referenceField(name, component, true, required)

	case openapi.KindScalar:
		return c.leafField(name, prop.Value, required)

	case openapi.KindUnsupported:
		return nil, fmt.Errorf("%w: unsupported type %q for property '%s'",
			domain.ErrMalformedSchema, openapi.TypeOf(prop.Value), name)

	default:
		return nil, fmt.Errorf("%w: component property schema for property '%s' should be a schema object",
			domain.ErrMalformedSchema, name)
	}
}

func (c *Compiler) referenceField(name, component string, multiple, required bool) (*domain.Field, error) {
	ref, err := c.index.Component(component)
	if err != nil {
		return nil, err
	}
	if !openapi.IsSchemaObject(ref) {
		return nil, fmt.Errorf("%w: referenced component %s is not a valid schema", domain.ErrMalformedSchema, component)
	}
	return c.collectionField(name, component, ref.Value, multiple, required)
}

// collectionField nests the properties of a component under name. The
// generic component and all-optional components become a plain collection;
// anything with a required member is wrapped in a fixed collection whose
// single group is keyed by the component name.
func (c *Compiler) collectionField(name, component string, s *openapi3.Schema, multiple, required bool) (*domain.Field, error) {
	children, err := c.componentFields(component, s)
	if err != nil {
		return nil, err
	}

	f := &domain.Field{
		DisplayName:    Label(name),
		Name:           name,
		Type:           domain.FieldFixedCollection,
		Default:        map[string]any{},
		MultipleValues: multiple,
		Required:       required,
	}

	switch {
	case component == c.policy.GenericComponent:
		f.Type = domain.FieldCollection
		f.Fields = children

	case len(children) == 0:
		return nil, fmt.Errorf("%w: component %s has no fields to render", domain.ErrMalformedSchema, component)

	case !anyRequired(children):
		if c.config.SortCollections {
			sortFieldsByLabel(children)
		}
		f.Type = domain.FieldCollection
		f.Fields = children

	default:
		f.Groups = []domain.Group{{
			Name:        component,
			DisplayName: Label(component),
			Fields:      c.applyAdditionalFields(children),
		}}
	}

	return f, nil
}

func (c *Compiler) leafField(name string, s *openapi3.Schema, required bool) (*domain.Field, error) {
	typ, err := leafType(s)
	if err != nil {
		return nil, fmt.Errorf("property '%s': %w", name, err)
	}

	label := strings.TrimSpace(s.Title)
	if label == "" {
		label = Label(name)
	}

	f := &domain.Field{
		DisplayName: label,
		Name:        name,
		Type:        typ,
		Default:     leafDefault(typ),
		Description: s.Description,
		Required:    required,
	}
	if typ == domain.FieldOptions {
		f.Options = enumOptions(s.Enum)
	}

	return f, nil
}

// applyAdditionalFields keeps required fields at the current level and
// bundles the optional ones into a trailing collection. The group is left
// out when nothing is optional.
func (c *Compiler) applyAdditionalFields(fields []*domain.Field) []*domain.Field {
	var required, optional []*domain.Field
	for _, f := range fields {
		if f.Required {
			required = append(required, f)
		} else {
			optional = append(optional, f)
		}
	}

	if c.config.SortCollections {
		sortFieldsByLabel(required)
		sortFieldsByLabel(optional)
	}

	out := make([]*domain.Field, 0, len(required)+1)
	out = append(out, required...)
	if len(optional) == 0 {
		return out
	}

	return append(out, &domain.Field{
		DisplayName: additionalFieldsLabel,
		Name:        c.policy.AdditionalFields,
		Type:        domain.FieldCollection,
		Default:     map[string]any{},
		Fields:      optional,
	})
}

// leafType maps a scalar schema to its field type.
func leafType(s *openapi3.Schema) (domain.FieldType, error) {
	typ := openapi.TypeOf(s)
	switch typ {
	case openapi.TypeString:
		if s.Format == openapi.FormatDate || s.Format == openapi.FormatDateTime {
			return domain.FieldDateTime, nil
		}
		if len(s.Enum) > 0 {
			return domain.FieldOptions, nil
		}
		return domain.FieldString, nil
	case openapi.TypeNumber, openapi.TypeInteger:
		return domain.FieldNumber, nil
	case openapi.TypeBoolean:
		return domain.FieldBoolean, nil
	case "":
		return "", fmt.Errorf("%w: schema does not have type", domain.ErrMalformedSchema)
	default:
		return "", fmt.Errorf("%w: unsupported type: %s", domain.ErrMalformedSchema, typ)
	}
}

func leafDefault(typ domain.FieldType) any {
	if typ.IsGroup() {
		return map[string]any{}
	}

	switch typ {
	case domain.FieldNumber:
		return nil
	case domain.FieldBoolean:
		return false
	default:
		return ""
	}
}

func enumOptions(values []any) []domain.Option {
	options := make([]domain.Option, 0, len(values)+1)
	options = append(options, domain.Option{})
	for _, v := range values {
		s := fmt.Sprint(v)
		options = append(options, domain.Option{Name: s, Value: s})
	}
	return options
}

func toResourceLocator(f *domain.Field) {
	f.Type = domain.FieldResourceLocator
	f.Default = map[string]any{"mode": "enterId", "value": ""}
	f.Options = nil
	f.Modes = []domain.LocatorMode{
		{
			DisplayName: "Enter ID",
			Name:        "enterId",
			Type:        "string",
		},
		{
			DisplayName:      "From List",
			Name:             "list",
			Type:             "list",
			SearchListMethod: "loadCustomRecordTypes",
			Hint:             "Can take several mins to load.",
		},
	}
}

func isReadOnly(prop *openapi3.SchemaRef) bool {
	return !openapi.IsReference(prop) && prop != nil && prop.Value != nil && prop.Value.ReadOnly
}

func anyRequired(fields []*domain.Field) bool {
	for _, f := range fields {
		if f.Required {
			return true
		}
	}
	return false
}

func showFor(tag string, operationIDs ...string) *domain.DisplayOptions {
	return &domain.DisplayOptions{
		Show: map[string][]string{
			domain.ResourceKey:  {tag},
			domain.OperationKey: operationIDs,
		},
	}
}
