package properties

import (
	"testing"

	"github.com/GabrielNunesIT/netsuite-forms/internal/domain"
	"github.com/GabrielNunesIT/netsuite-forms/internal/schema"
	st "github.com/GabrielNunesIT/netsuite-forms/internal/schema/schematest"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCompiler(t *testing.T, doc *openapi3.T, cfg Config) *Compiler {
	t.Helper()

	ix, err := schema.New(doc)
	require.NoError(t, err)

	return NewCompiler(ix, cfg)
}

func leaf(label, name string, typ domain.FieldType, required bool, description string) *domain.Field {
	return &domain.Field{
		DisplayName: label,
		Name:        name,
		Type:        typ,
		Required:    required,
		Default:     leafDefault(typ),
		Description: description,
	}
}

func genericFields() []*domain.Field {
	return []*domain.Field{
		leaf("External identifier", "externalId", domain.FieldString, false, ""),
		leaf("Internal identifier", "id", domain.FieldString, false, ""),
	}
}

func titled(title, description string) *openapi3.SchemaRef {
	s := openapi3.NewStringSchema()
	s.Title = title
	s.Description = description
	return st.Inline(s)
}

func TestCompileParameters(t *testing.T) {
	status := openapi3.NewStringSchema().WithEnum("open", "closed")

	doc := st.NewBuilder().
		Operation("/TestEntity", "get", st.Op("TestEntity", "Get list of records.",
			st.Param("q", openapi3.ParameterInQuery, true, openapi3.NewStringSchema()),
			st.Param("limit", openapi3.ParameterInQuery, true, openapi3.NewIntegerSchema()),
			st.Param("expandSubResources", openapi3.ParameterInQuery, true, openapi3.NewBoolSchema()),
			st.Param("lastModified", openapi3.ParameterInQuery, true, openapi3.NewDateTimeSchema()),
			st.Param("status", openapi3.ParameterInQuery, true, status),
		)).
		NsResource().
		Build()

	fields, err := newCompiler(t, doc, Config{}).Compile("TestEntity", "get /TestEntity")
	require.NoError(t, err)

	show := showFor("TestEntity", "get /TestEntity")
	expected := []*domain.Field{
		leaf("Q", "q", domain.FieldString, true, ""),
		leaf("Limit", "limit", domain.FieldNumber, true, ""),
		leaf("Expand Sub Resources", "expandSubResources", domain.FieldBoolean, true, ""),
		leaf("Last Modified", "lastModified", domain.FieldDateTime, true, ""),
		leaf("Status", "status", domain.FieldOptions, true, ""),
	}
	expected[4].Options = []domain.Option{{}, {Name: "open", Value: "open"}, {Name: "closed", Value: "closed"}}
	for _, f := range expected {
		f.DisplayOptions = show
	}

	if diff := cmp.Diff(expected, fields); diff != "" {
		t.Errorf("fields mismatch (-want +got):\n%s", diff)
	}
	assert.Nil(t, fields[1].Default)
	assert.Equal(t, false, fields[2].Default)
}

func TestCompileParameterErrors(t *testing.T) {
	untyped := &openapi3.Parameter{Name: "q", In: openapi3.ParameterInQuery, Schema: st.Inline(&openapi3.Schema{})}
	objectParam := st.Param("q", openapi3.ParameterInQuery, false, openapi3.NewObjectSchema())

	referenced := st.Op("TestEntity", "Get record.")
	referenced.Parameters = openapi3.Parameters{{Ref: "#/components/parameters/q", Value: untyped}}

	tests := []struct {
		name string
		op   *openapi3.Operation
	}{
		{"missing type", st.Op("TestEntity", "Get record.", untyped)},
		{"non scalar type", st.Op("TestEntity", "Get record.", objectParam)},
		{"referenced parameter", referenced},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			doc := st.NewBuilder().
				Operation("/TestEntity", "get", test.op).
				NsResource().
				Build()

			_, err := newCompiler(t, doc, Config{}).Compile("TestEntity", "get /TestEntity")
			assert.ErrorIs(t, err, domain.ErrMalformedSchema)
		})
	}
}

func objectDoc() *openapi3.T {
	nestedObject := st.Object(map[string]*openapi3.SchemaRef{
		"nestedObjStringField": titled("Nested Object String Field", "A nested object string field"),
	}, "nestedObjStringField")

	union := st.Inline(&openapi3.Schema{OneOf: openapi3.SchemaRefs{st.Ref("testEntity")}})

	return st.NewBuilder().
		Operation("/TestEntity", "post", st.WithBody(st.Op("TestEntity", "Add Test Entity"), "testEntity")).
		Component("testEntity", st.Object(map[string]*openapi3.SchemaRef{
			"topStringField": titled("Top String Field", "A string field"),
			"referenceField": st.Ref("testEntity-referenceEntity"),
			"parent":         st.Ref("testEntity"),
			"parent2":        union,
		}, "topStringField", "referenceField", "parent", "parent2")).
		Component("testEntity-referenceEntity", st.Object(map[string]*openapi3.SchemaRef{
			"nestedStringField": titled("Nested String Field", "A nested string field"),
			"nestedObjectField": st.Inline(nestedObject),
		}, "nestedStringField", "nestedObjectField")).
		NsResource().
		Build()
}

func TestCompileObjectAndReferenceProperties(t *testing.T) {
	fields, err := newCompiler(t, objectDoc(), Config{}).Compile("TestEntity", "post /TestEntity")
	require.NoError(t, err)

	show := showFor("TestEntity", "post /TestEntity")
	expected := []*domain.Field{
		{
			DisplayName:    "Parent",
			Name:           "parent",
			Type:           domain.FieldCollection,
			Required:       true,
			Default:        map[string]any{},
			Fields:         genericFields(),
			DisplayOptions: show,
		},
		{
			DisplayName:    "Parent2",
			Name:           "parent2",
			Type:           domain.FieldCollection,
			Required:       true,
			Default:        map[string]any{},
			Fields:         genericFields(),
			DisplayOptions: show,
		},
		{
			DisplayName: "Reference Field",
			Name:        "referenceField",
			Type:        domain.FieldFixedCollection,
			Required:    true,
			Default:     map[string]any{},
			Groups: []domain.Group{{
				Name:        "testEntity-referenceEntity",
				DisplayName: "Test Entity - Reference Entity",
				Fields: []*domain.Field{
					{
						DisplayName: "Nested Object Field",
						Name:        "nestedObjectField",
						Type:        domain.FieldFixedCollection,
						Required:    true,
						Default:     map[string]any{},
						Groups: []domain.Group{{
							Name:        "anonymousObject",
							DisplayName: "Anonymous Object",
							Fields: []*domain.Field{
								leaf("Nested Object String Field", "nestedObjStringField", domain.FieldString, true,
									"A nested object string field"),
							},
						}},
					},
					leaf("Nested String Field", "nestedStringField", domain.FieldString, true, "A nested string field"),
				},
			}},
			DisplayOptions: show,
		},
		leaf("Top String Field", "topStringField", domain.FieldString, true, "A string field"),
	}
	expected[3].DisplayOptions = show

	if diff := cmp.Diff(expected, fields); diff != "" {
		t.Errorf("fields mismatch (-want +got):\n%s", diff)
	}
}

func TestCompileOptionalAndRequired(t *testing.T) {
	doc := st.NewBuilder().
		Operation("/TestEntity", "post", st.WithBody(st.Op("TestEntity", "Add Test Entity",
			st.Param("requiredParameter", openapi3.ParameterInQuery, true, openapi3.NewStringSchema()),
			st.Param("optionalParameter", openapi3.ParameterInQuery, false, openapi3.NewStringSchema()),
		), "testEntity")).
		Component("testEntity", st.Object(map[string]*openapi3.SchemaRef{
			"requiredField":     titled("Required Field", ""),
			"optionalField":     titled("Optional Field", ""),
			"nestedEntityField": st.Ref("testEntity-nestedEntity"),
		}, "requiredField", "nestedEntityField")).
		Component("testEntity-nestedEntity", st.Object(map[string]*openapi3.SchemaRef{
			"nestedRequiredField": titled("Nested Required Field", ""),
			"nestedOptionalField": titled("Nested Optional Field", ""),
		}, "nestedRequiredField")).
		NsResource().
		Build()

	fields, err := newCompiler(t, doc, Config{}).Compile("TestEntity", "post /TestEntity")
	require.NoError(t, err)

	names := make([]string, 0, len(fields))
	for _, f := range fields {
		names = append(names, f.Name)
		assert.Equal(t, []string{"post /TestEntity"}, f.DisplayOptions.Show["operation"])
	}
	assert.Equal(t, []string{"requiredParameter", "nestedEntityField", "requiredField", "additionalFields"}, names)

	additional := fields[3]
	assert.Equal(t, "Additional Fields", additional.DisplayName)
	assert.Equal(t, domain.FieldCollection, additional.Type)
	require.Len(t, additional.Fields, 2)
	assert.Equal(t, "optionalParameter", additional.Fields[0].Name)
	assert.Equal(t, "optionalField", additional.Fields[1].Name)
	assert.Nil(t, additional.Fields[0].DisplayOptions)

	nested := fields[1]
	require.Equal(t, domain.FieldFixedCollection, nested.Type)
	require.Len(t, nested.Groups, 1)
	group := nested.Groups[0]
	assert.Equal(t, "testEntity-nestedEntity", group.Name)
	require.Len(t, group.Fields, 2)
	assert.Equal(t, "nestedRequiredField", group.Fields[0].Name)
	assert.Equal(t, "additionalFields", group.Fields[1].Name)
	require.Len(t, group.Fields[1].Fields, 1)
	assert.Equal(t, "nestedOptionalField", group.Fields[1].Fields[0].Name)
}

func TestCompileAllOptionalCollapsesToAdditionalFields(t *testing.T) {
	doc := st.NewBuilder().
		Operation("/TestEntity", "post", st.WithBody(st.Op("TestEntity", "Add Test Entity"), "testEntity")).
		Component("testEntity", st.Object(map[string]*openapi3.SchemaRef{
			"zeta":  st.String(),
			"alpha": st.String(),
		})).
		NsResource().
		Build()

	fields, err := newCompiler(t, doc, Config{}).Compile("TestEntity", "post /TestEntity")
	require.NoError(t, err)

	require.Len(t, fields, 1)
	assert.Equal(t, "additionalFields", fields[0].Name)
	require.Len(t, fields[0].Fields, 2)
}

func TestCompileOperationWithoutFields(t *testing.T) {
	doc := st.NewBuilder().
		Operation("/TestEntity", "get", st.Op("TestEntity", "Get list of records.")).
		NsResource().
		Build()

	fields, err := newCompiler(t, doc, Config{}).Compile("TestEntity", "get /TestEntity")
	require.NoError(t, err)
	assert.Empty(t, fields)
}

func collectionDoc() *openapi3.T {
	return st.NewBuilder().
		Operation("/TestEntity", "post", st.WithBody(st.Op("TestEntity", "Add Test Entity"), "testEntity")).
		Component("testEntity", st.Object(map[string]*openapi3.SchemaRef{
			"name":        st.String(),
			"collections": st.Ref("testEntity-collection"),
		}, "name")).
		Component("testEntity-collection", st.Object(map[string]*openapi3.SchemaRef{
			"items": st.ArrayOf("testEntity-element"),
		})).
		Component("testEntity-element", st.Object(map[string]*openapi3.SchemaRef{
			"zebra":   st.String(),
			"alpha":   titled("Zulu", ""),
			"Apple":   st.Integer(),
			"banana":  st.Bool(),
			"subsidy": st.Ref("subsidiary"),
		})).
		Component("subsidiary", st.Object(map[string]*openapi3.SchemaRef{"name": st.String()})).
		NsResource().
		Build()
}

func TestCompileCollections(t *testing.T) {
	fields, err := newCompiler(t, collectionDoc(), Config{}).Compile("TestEntity", "post /TestEntity")
	require.NoError(t, err)

	require.Len(t, fields, 2)
	assert.Equal(t, "name", fields[0].Name)

	additional := fields[1]
	require.Len(t, additional.Fields, 1)

	collections := additional.Fields[0]
	assert.Equal(t, domain.FieldCollection, collections.Type)
	assert.False(t, collections.MultipleValues)
	require.Len(t, collections.Fields, 1)

	items := collections.Fields[0]
	assert.Equal(t, "Items", items.DisplayName)
	assert.Equal(t, domain.FieldCollection, items.Type)
	assert.True(t, items.MultipleValues)

	names := make([]string, 0, len(items.Fields))
	for _, f := range items.Fields {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"Apple", "alpha", "banana", "subsidy", "zebra"}, names)

	subsidy := items.Lookup("subsidy")
	require.NotNil(t, subsidy)
	assert.Equal(t, domain.FieldCollection, subsidy.Type)
	assert.Equal(t, genericFields(), subsidy.Fields)
}

func TestCompileSortsCollectionsByLabel(t *testing.T) {
	fields, err := newCompiler(t, collectionDoc(), Config{SortCollections: true}).Compile("TestEntity", "post /TestEntity")
	require.NoError(t, err)

	items := fields[1].Fields[0].Fields[0]
	labels := make([]string, 0, len(items.Fields))
	for _, f := range items.Fields {
		labels = append(labels, f.DisplayName)
	}
	assert.Equal(t, []string{"Apple", "Banana", "Subsidy", "Zebra", "Zulu"}, labels)
}

func TestCompileRejectsUnsupportedShapes(t *testing.T) {
	inlineItems := openapi3.NewArraySchema()
	inlineItems.Items = st.String()

	nullType := &openapi3.Schema{Type: &openapi3.Types{"null"}}

	tests := []struct {
		name string
		prop *openapi3.SchemaRef
	}{
		{"array of inline items", st.Inline(inlineItems)},
		{"unsupported type", st.Inline(nullType)},
		{"not a schema object", st.Inline(&openapi3.Schema{Description: "nothing"})},
		{"dangling reference", st.Ref("nsMissing")},
		{"object without properties", st.Inline(&openapi3.Schema{Type: &openapi3.Types{"object"}})},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			doc := st.NewBuilder().
				Operation("/TestEntity", "post", st.WithBody(st.Op("TestEntity", "Add Test Entity"), "testEntity")).
				Component("testEntity", st.Object(map[string]*openapi3.SchemaRef{"broken": test.prop})).
				NsResource().
				Build()

			_, err := newCompiler(t, doc, Config{}).Compile("TestEntity", "post /TestEntity")
			assert.Error(t, err)
		})
	}
}

func TestCompileRequestBodyErrors(t *testing.T) {
	inline := st.Op("TestEntity", "Add Test Entity")
	inline.RequestBody = &openapi3.RequestBodyRef{
		Value: openapi3.NewRequestBody().WithJSONSchema(openapi3.NewObjectSchema()),
	}

	empty := st.Op("TestEntity", "Add Test Entity")
	empty.RequestBody = &openapi3.RequestBodyRef{Value: openapi3.NewRequestBody()}

	for name, op := range map[string]*openapi3.Operation{"inline schema": inline, "no content": empty} {
		t.Run(name, func(t *testing.T) {
			doc := st.NewBuilder().
				Operation("/TestEntity", "post", op).
				NsResource().
				Build()

			_, err := newCompiler(t, doc, Config{}).Compile("TestEntity", "post /TestEntity")
			assert.ErrorIs(t, err, domain.ErrMalformedSchema)
		})
	}
}

func TestCompileSkipsReadOnlyAndDenylisted(t *testing.T) {
	readOnly := openapi3.NewStringSchema()
	readOnly.ReadOnly = true

	doc := st.NewBuilder().
		Operation("/TestEntity", "post", st.WithBody(st.Op("TestEntity", "Add Test Entity"), "testEntity")).
		Component("testEntity", st.Object(map[string]*openapi3.SchemaRef{
			"links":   st.Inline(readOnly),
			"owner":   st.Ref("employee"),
			"comment": st.String(),
		})).
		Component("employee", st.Object(map[string]*openapi3.SchemaRef{"id": st.String()})).
		NsResource().
		Build()

	fields, err := newCompiler(t, doc, Config{}).Compile("TestEntity", "post /TestEntity")
	require.NoError(t, err)

	additional := fields[0]
	assert.Nil(t, additional.Lookup("links"))
	owner := additional.Lookup("owner")
	require.NotNil(t, owner)
	assert.Nil(t, owner.Lookup("refName"))
	assert.Nil(t, owner.Lookup("links"))
	assert.NotNil(t, owner.Lookup("id"))
}

func TestCompileCustomRecordLocator(t *testing.T) {
	doc := st.NewBuilder().
		Operation("/customrecord/{customRecordType}", "get", st.Op("CustomRecord", "Get list of records.",
			st.Param("customRecordType", openapi3.ParameterInPath, true, openapi3.NewStringSchema()))).
		NsResource().
		Build()

	fields, err := newCompiler(t, doc, Config{}).Compile("CustomRecord", "get /customrecord/{customRecordType}")
	require.NoError(t, err)
	require.Len(t, fields, 1)

	locator := fields[0]
	assert.Equal(t, domain.FieldResourceLocator, locator.Type)
	assert.Equal(t, map[string]any{"mode": "enterId", "value": ""}, locator.Default)
	require.Len(t, locator.Modes, 2)
	assert.Equal(t, "enterId", locator.Modes[0].Name)
	assert.Equal(t, "loadCustomRecordTypes", locator.Modes[1].SearchListMethod)
}

func TestCustomerEndToEndCompile(t *testing.T) {
	doc := st.NewBuilder().
		Operation("/customer", "post", st.WithBody(st.Op("customer", "Insert record."), "customer")).
		Component("customer", st.Object(map[string]*openapi3.SchemaRef{"email": st.String()}, "email")).
		NsResource().
		Build()

	fields, err := newCompiler(t, doc, Config{}).Compile("customer", "post /customer")
	require.NoError(t, err)

	expected := leaf("Email", "email", domain.FieldString, true, "")
	expected.DisplayOptions = showFor("customer", "post /customer")
	if diff := cmp.Diff([]*domain.Field{expected}, fields); diff != "" {
		t.Errorf("fields mismatch (-want +got):\n%s", diff)
	}
}

func TestCompileLoadedDocumentWithDanglingReferences(t *testing.T) {
	const doc = `{
		"openapi": "3.0.1",
		"info": {"title": "NetSuite REST API", "version": "v1"},
		"paths": {
			"/customer": {
				"post": {
					"tags": ["customer"],
					"summary": "Insert record.",
					"requestBody": {"content": {"application/json": {"schema": {"$ref": "#/components/schemas/customer"}}}},
					"responses": {"204": {"description": "Inserted"}}
				}
			}
		},
		"components": {
			"schemas": {
				"customer": {
					"type": "object",
					"required": ["email"],
					"properties": {
						"email": {"type": "string"},
						"subsidiary": {"$ref": "#/components/schemas/subsidiary"},
						"links": {"type": "array", "readOnly": true, "items": {"$ref": "#/components/schemas/nsLink"}}
					}
				},
				"nsResource": {
					"type": "object",
					"properties": {
						"id": {"type": "string", "title": "Internal identifier"},
						"externalId": {"type": "string", "title": "External identifier"}
					}
				}
			}
		}
	}`

	ix, err := schema.LoadData([]byte(doc))
	require.NoError(t, err)

	fields, err := NewCompiler(ix, Config{}).Compile("customer", "post /customer")
	require.NoError(t, err)

	show := showFor("customer", "post /customer")
	expected := []*domain.Field{
		leaf("Email", "email", domain.FieldString, true, ""),
		{
			DisplayName: "Additional Fields",
			Name:        "additionalFields",
			Type:        domain.FieldCollection,
			Default:     map[string]any{},
			Fields: []*domain.Field{{
				DisplayName: "Subsidiary",
				Name:        "subsidiary",
				Type:        domain.FieldCollection,
				Default:     map[string]any{},
				Fields:      genericFields(),
			}},
			DisplayOptions: show,
		},
	}
	expected[0].DisplayOptions = show

	if diff := cmp.Diff(expected, fields); diff != "" {
		t.Errorf("fields mismatch (-want +got):\n%s", diff)
	}
}

func TestLeafDefault(t *testing.T) {
	assert.Equal(t, "", leafDefault(domain.FieldString))
	assert.Equal(t, "", leafDefault(domain.FieldDateTime))
	assert.Equal(t, "", leafDefault(domain.FieldOptions))
	assert.Nil(t, leafDefault(domain.FieldNumber))
	assert.Equal(t, false, leafDefault(domain.FieldBoolean))
	assert.Equal(t, map[string]any{}, leafDefault(domain.FieldCollection))
	assert.Equal(t, map[string]any{}, leafDefault(domain.FieldFixedCollection))
}
