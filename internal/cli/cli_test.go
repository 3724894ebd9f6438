package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/GabrielNunesIT/go-libs/logger"
	"github.com/GabrielNunesIT/netsuite-forms/internal/domain"
	st "github.com/GabrielNunesIT/netsuite-forms/internal/schema/schematest"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSchema(t *testing.T) string {
	t.Helper()

	doc := st.NewBuilder().
		Operation("/customer", "post", st.WithBody(st.Op("customer", "Insert record."), "customer")).
		Operation("/customer/{id}", "get", st.Op("customer", "Get record.",
			st.Param("id", openapi3.ParameterInPath, true, openapi3.NewStringSchema()))).
		Component("customer", st.Object(map[string]*openapi3.SchemaRef{
			"companyName": st.String(),
			"email":       st.String(),
		}, "companyName")).
		NsResource().
		Build()

	data, err := json.Marshal(doc)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "openapi.json")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	c := New(logger.NewConsoleLogger(os.Stderr))

	var out bytes.Buffer
	c.rootCmd.SetOut(&out)
	c.rootCmd.SetIn(strings.NewReader(stdin))
	c.rootCmd.SetArgs(args)

	err := c.ExecuteContext(context.Background())
	return out.String(), err
}

func TestResources(t *testing.T) {
	out, err := run(t, "", "resources", "--schema", writeSchema(t))
	require.NoError(t, err)

	assert.Contains(t, out, "customer (Customer)")
	assert.Contains(t, out, "get /customer/{id}")
	assert.Contains(t, out, "Insert record")
}

func TestMissingSchema(t *testing.T) {
	_, err := run(t, "", "resources")
	assert.ErrorContains(t, err, "schema_file is required")
}

func TestFields(t *testing.T) {
	out, err := run(t, "", "fields", "--schema", writeSchema(t), "-r", "customer", "-p", "post /customer")
	require.NoError(t, err)

	var op domain.OperationForm
	require.NoError(t, json.Unmarshal([]byte(out), &op))

	assert.Equal(t, "post /customer", op.ID)
	assert.Equal(t, "POST", op.Method)
	require.Len(t, op.Fields, 2)
	assert.Equal(t, "companyName", op.Fields[0].Name)
	assert.Equal(t, "additionalFields", op.Fields[1].Name)
	assert.Equal(t, "email", op.Fields[1].Fields[0].Name)
	require.NotNil(t, op.CustomFields)
}

func TestFieldsYAML(t *testing.T) {
	out, err := run(t, "", "fields", "--schema", writeSchema(t), "-r", "customer", "-p", "get /customer/{id}", "-f", "yaml")
	require.NoError(t, err)

	assert.Contains(t, out, "get /customer/{id}")
	assert.Contains(t, out, "method: GET")
	assert.Contains(t, out, "name: id")
}

func TestFieldsUnknownOperation(t *testing.T) {
	_, err := run(t, "", "fields", "--schema", writeSchema(t), "-r", "customer", "-p", "delete /customer/{id}")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = run(t, "", "fields", "--schema", writeSchema(t), "-r", "vendor", "-p", "get /vendor")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProperties(t *testing.T) {
	out, err := run(t, "", "properties", "--schema", writeSchema(t))
	require.NoError(t, err)

	var fields []*domain.Field
	require.NoError(t, json.Unmarshal([]byte(out), &fields))
	require.NotEmpty(t, fields)
	assert.Equal(t, domain.ResourceKey, fields[0].Name)
	assert.Equal(t, "customFields", fields[len(fields)-1].Name)
}

func TestAssembleFromStdin(t *testing.T) {
	values := `{
		"resource": "customer",
		"operation": "post /customer",
		"companyName": "Acme",
		"additionalFields": {"email": "billing@acme.test"}
	}`

	out, err := run(t, values, "assemble", "--schema", writeSchema(t))
	require.NoError(t, err)

	var req domain.HTTPRequest
	require.NoError(t, json.Unmarshal([]byte(out), &req))
	assert.Equal(t, "POST", req.Method)
	assert.Equal(t, "/customer", req.URLPath)
	assert.Equal(t, map[string]any{"companyName": "Acme", "email": "billing@acme.test"}, req.Body)
}

func TestAssembleFromFileWithFlags(t *testing.T) {
	valuesFile := filepath.Join(t.TempDir(), "values.json")
	require.NoError(t, os.WriteFile(valuesFile, []byte(`{"id": "42"}`), 0o600))

	out, err := run(t, "", "assemble", "--schema", writeSchema(t),
		"-r", "customer", "-p", "get /customer/{id}", "-v", valuesFile)
	require.NoError(t, err)

	var req domain.HTTPRequest
	require.NoError(t, json.Unmarshal([]byte(out), &req))
	assert.Equal(t, "GET", req.Method)
	assert.Equal(t, "/customer/42", req.URLPath)
}

func TestAssembleRejectsInvalidValues(t *testing.T) {
	_, err := run(t, "[1, 2]", "assemble", "--schema", writeSchema(t))
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)

	_, err = run(t, `{"resource": "customer", "operation": "get /customer/{id}"}`, "assemble", "--schema", writeSchema(t))
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
}

func TestExportConfluence(t *testing.T) {
	output := filepath.Join(t.TempDir(), "customer.json")

	_, err := run(t, "", "export", "--schema", writeSchema(t), "-r", "customer", "-f", "confluence", "-o", output)
	require.NoError(t, err)

	data, err := os.ReadFile(output)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "doc", doc["type"])
}

func TestExportUnsupportedFormat(t *testing.T) {
	_, err := run(t, "", "export", "--schema", writeSchema(t), "-r", "customer", "-f", "html", "-o", "out.html")
	assert.ErrorContains(t, err, "unsupported format: html")
}

func TestInvokeRequiresCredentials(t *testing.T) {
	_, err := run(t, `{}`, "invoke", "--schema", writeSchema(t), "-r", "customer", "-p", "get /customer/{id}")
	assert.ErrorContains(t, err, "rest api url is required")
}

func TestWriteValueUnsupportedFormat(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, writeValue(&buf, map[string]any{}, "xml"))
}
