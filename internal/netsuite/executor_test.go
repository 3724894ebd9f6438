package netsuite

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"testing"

	"github.com/GabrielNunesIT/go-libs/logger"
	"github.com/GabrielNunesIT/netsuite-forms/internal/domain"
	"github.com/GabrielNunesIT/netsuite-forms/internal/request"
	"github.com/GabrielNunesIT/netsuite-forms/internal/schema"
	st "github.com/GabrielNunesIT/netsuite-forms/internal/schema/schematest"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestExecutor(t *testing.T, api http.HandlerFunc) *Executor {
	t.Helper()

	doc := st.NewBuilder().
		Operation("/customer", "post", st.WithBody(st.Op("customer", "Insert record."), "customer")).
		Operation("/customer/{id}", "get", st.Op("customer", "Get record.",
			st.Param("id", openapi3.ParameterInPath, true, openapi3.NewStringSchema()),
			st.Param("expandSubResources", openapi3.ParameterInQuery, false, openapi3.NewBoolSchema()))).
		Operation("/suiteql", "post", st.WithBody(st.Op("SuiteQL", "Execute SuiteQL query.",
			st.Param("limit", openapi3.ParameterInQuery, false, openapi3.NewIntegerSchema())), "suiteqlQuery")).
		Component("customer", st.Object(map[string]*openapi3.SchemaRef{"companyName": st.String()}, "companyName")).
		Component("suiteqlQuery", st.Object(map[string]*openapi3.SchemaRef{"q": st.String()}, "q")).
		NsResource().
		Build()

	ix, err := schema.New(doc)
	require.NoError(t, err)

	return NewExecutor(request.NewAssembler(ix), newTestClient(t, api), logger.NewConsoleLogger(os.Stdout))
}

func TestIDFromLocation(t *testing.T) {
	tests := []struct {
		location string
		expected string
		wantErr  bool
	}{
		{"https://123.suitetalk.api.netsuite.com/services/rest/record/v1/customer/647", "647", false},
		{"https://x/services/rest/record/v1/customer/12?expand=true", "12", false},
		{"https://x/services/rest/record/v1/customer/eid:ABC", "", true},
		{"", "", true},
	}

	for _, test := range tests {
		t.Run(test.location, func(t *testing.T) {
			id, err := IDFromLocation(test.location)
			if test.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.expected, id)
		})
	}
}

func TestExecuteInsertReturnsID(t *testing.T) {
	e := newTestExecutor(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, RecordBasePath+"/customer", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]any{"companyName": "Acme"}, body)

		w.Header().Set("Location", "https://x"+RecordBasePath+"/customer/647")
		w.WriteHeader(http.StatusNoContent)
	})

	result, err := e.Execute(context.Background(), map[string]any{
		"resource":    "customer",
		"operation":   "post /customer",
		"companyName": "Acme",
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"id": "647"}, result)
}

func TestExecuteInsertWithoutLocation(t *testing.T) {
	e := newTestExecutor(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	_, err := e.Execute(context.Background(), map[string]any{
		"resource":    "customer",
		"operation":   "post /customer",
		"companyName": "Acme",
	})
	assert.ErrorContains(t, err, "location header not found")
}

func TestExecuteGet(t *testing.T) {
	e := newTestExecutor(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, RecordBasePath+"/customer/42", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("expandSubResources"))
		writeJSON(t, w, http.StatusOK, map[string]any{"id": "42", "companyName": "Acme"})
	})

	result, err := e.Execute(context.Background(), map[string]any{
		"resource":           "customer",
		"operation":          "get /customer/{id}",
		"id":                 "42",
		"expandSubResources": true,
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"id": "42", "companyName": "Acme"}, result)
}

func TestExecuteSuiteQL(t *testing.T) {
	e := newTestExecutor(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, QueryBasePath+"/suiteql", r.URL.Path)
		assert.Equal(t, "transient", r.Header.Get("Prefer"))
		assert.Equal(t, "10", r.URL.Query().Get("limit"))
		writeJSON(t, w, http.StatusOK, map[string]any{"items": []any{}, "count": 0})
	})

	result, err := e.Execute(context.Background(), map[string]any{
		"resource":  "SuiteQL",
		"operation": "post /suiteql",
		"q":         "SELECT id FROM customer",
		"limit":     float64(10),
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"items": []any{}, "count": float64(0)}, result)
}

func TestExecuteRequiresSelection(t *testing.T) {
	e := newTestExecutor(t, func(http.ResponseWriter, *http.Request) {})

	_, err := e.Execute(context.Background(), map[string]any{"resource": "customer"})
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
}

func TestExecuteAPIError(t *testing.T) {
	e := newTestExecutor(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusNotFound, map[string]any{"title": "Record not found"})
	})

	_, err := e.Execute(context.Background(), map[string]any{
		"resource":  "customer",
		"operation": "get /customer/{id}",
		"id":        "1",
	})

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
}

func TestExecuteDebugMode(t *testing.T) {
	e := newTestExecutor(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]any{"id": "42"})
	})

	result, err := e.Execute(context.Background(), map[string]any{
		"resource":           "customer",
		"operation":          "get /customer/{id}",
		"isDebugMode":        true,
		"id":                 "42",
		"expandSubResources": true,
	})
	require.NoError(t, err)
	assert.Equal(t, "42", result["id"])

	debug, ok := result["debug"].(map[string]any)
	require.True(t, ok)

	req := debug["request"].(map[string]any)
	assert.Equal(t, "GET", req["method"])
	assert.Contains(t, req["url"], RecordBasePath+"/customer/42")
	assert.Equal(t, map[string]any{"expandSubResources": true}, req["qs"])
	assert.Equal(t, map[string]any{"Authorization": "Bearer **********"}, req["headers"])
	assert.NotContains(t, req, "body")

	resp := debug["response"].(map[string]any)
	assert.Equal(t, http.StatusOK, resp["statusCode"])
	assert.Equal(t, "OK", resp["statusMessage"])
	assert.Contains(t, resp, "headers")
}

func TestExecuteDebugModeSoftError(t *testing.T) {
	e := newTestExecutor(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusBadRequest, map[string]any{"title": "Invalid value"})
	})

	result, err := e.Execute(context.Background(), map[string]any{
		"resource":    "customer",
		"operation":   "post /customer",
		"isDebugMode": true,
		"companyName": "Acme",
	})
	require.NoError(t, err)

	assert.Equal(t, http.StatusBadRequest, result["statusCode"])
	assert.Equal(t, "Bad Request", result["statusMessage"])

	debug := result["debug"].(map[string]any)
	req := debug["request"].(map[string]any)
	assert.Equal(t, map[string]any{"companyName": "Acme"}, req["body"])

	detail := debug["error"].(map[string]any)
	assert.Equal(t, map[string]any{"title": "Invalid value"}, detail["body"])
}

func TestExecuteDebugModeKeepsStructuralErrors(t *testing.T) {
	e := newTestExecutor(t, func(http.ResponseWriter, *http.Request) {})

	_, err := e.Execute(context.Background(), map[string]any{
		"resource":    "customer",
		"operation":   "get /customer/{id}",
		"isDebugMode": true,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
}

func TestDebugRequestMasksAuthorization(t *testing.T) {
	e := newTestExecutor(t, func(http.ResponseWriter, *http.Request) {})

	req := domain.NewHTTPRequest(http.MethodGet, "/customer")
	req.Headers["Authorization"] = "Bearer secret"
	req.Headers["Prefer"] = "transient"

	out := e.debugRequest(RecordBasePath, req)
	assert.Equal(t, map[string]any{
		"Authorization": "Bearer **********",
		"Prefer":        "transient",
	}, out["headers"])
	assert.Equal(t, "Bearer secret", req.Headers["Authorization"])

	plain := domain.NewHTTPRequest(http.MethodGet, "/customer")
	out = e.debugRequest(RecordBasePath, plain)
	assert.Equal(t, map[string]any{"Authorization": "Bearer **********"}, out["headers"])
	assert.Empty(t, plain.Headers)
}

func TestAsObject(t *testing.T) {
	assert.Equal(t, map[string]any{}, asObject(nil))
	assert.Equal(t, map[string]any{"a": 1}, asObject(map[string]any{"a": 1}))
	assert.Equal(t, map[string]any{"data": []any{1}}, asObject([]any{1}))
}
