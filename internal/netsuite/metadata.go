package netsuite

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/GabrielNunesIT/netsuite-forms/internal/domain"
	"github.com/GabrielNunesIT/netsuite-forms/internal/properties"
	"github.com/getkin/kin-openapi/openapi3"
)

const (
	metadataCatalogPath    = "/metadata-catalog"
	customRecordPrefix     = "customrecord_"
	customFieldExtension   = "x-ns-custom-field"
	customRecordResource   = "CustomRecord"
	swaggerJSONContentType = "application/swagger+json"
)

var customFieldPrefixes = []string{"custentity_", "custrecord_"}

// CustomField is a custom field declared on a record type.
type CustomField struct {
	Name     string
	Required bool
	Schema   *openapi3.SchemaRef
}

// GetCustomRecordTypes lists the custom record types of the account, sorted.
func (c *Client) GetCustomRecordTypes(ctx context.Context) ([]string, error) {
	req := domain.NewHTTPRequest(http.MethodGet, metadataCatalogPath)

	resp, err := c.Do(ctx, RecordBasePath, req)
	if err != nil {
		return nil, fmt.Errorf("failed to load metadata catalog: %w", err)
	}

	catalog, _ := resp.Body.(map[string]any)
	items, _ := catalog["items"].([]any)

	types := []string{}
	for _, item := range items {
		entry, _ := item.(map[string]any)
		name, _ := entry["name"].(string)
		if strings.HasPrefix(name, customRecordPrefix) {
			types = append(types, name)
		}
	}
	slices.Sort(types)

	return types, nil
}

// GetCustomFields reads the custom fields of recordType from its metadata
// document. A field is custom when flagged with x-ns-custom-field or when its
// name carries a custom entity or record prefix.
func (c *Client) GetCustomFields(ctx context.Context, recordType string) ([]CustomField, error) {
	req := domain.NewHTTPRequest(http.MethodGet, metadataCatalogPath)
	req.Headers["Accept"] = swaggerJSONContentType
	req.QueryString["select"] = recordType

	resp, err := c.Do(ctx, RecordBasePath, req)
	if err != nil {
		return nil, fmt.Errorf("failed to load metadata for %s: %w", recordType, err)
	}

	var doc openapi3.T
	if err := json.Unmarshal(resp.Raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: failed to parse metadata for %s: %w", domain.ErrMalformedSchema, recordType, err)
	}

	if doc.Components == nil || doc.Components.Schemas[recordType] == nil || doc.Components.Schemas[recordType].Value == nil {
		return nil, fmt.Errorf("%w: schema for record type %s not found in metadata", domain.ErrNotFound, recordType)
	}
	record := doc.Components.Schemas[recordType].Value

	var fields []CustomField
	for name, prop := range record.Properties {
		if !isCustomField(name, prop) {
			continue
		}
		fields = append(fields, CustomField{
			Name:     name,
			Required: slices.Contains(record.Required, name),
			Schema:   prop,
		})
	}
	slices.SortFunc(fields, func(a, b CustomField) int {
		return strings.Compare(a.Name, b.Name)
	})

	return fields, nil
}

func isCustomField(name string, prop *openapi3.SchemaRef) bool {
	if prop != nil && prop.Value != nil {
		if flagged, _ := prop.Value.Extensions[customFieldExtension].(bool); flagged {
			return true
		}
	}
	for _, prefix := range customFieldPrefixes {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

// CustomFieldOptions lists the custom fields of a resource as selectable
// options, led by an empty option. Custom records are looked up by their
// record type.
func (c *Client) CustomFieldOptions(ctx context.Context, resource, customRecordType string) ([]domain.Option, error) {
	if resource == customRecordResource {
		if customRecordType == "" {
			return nil, fmt.Errorf("%w: custom record type must be selected", domain.ErrInvalidRequest)
		}
		resource = customRecordType
	}

	fields, err := c.GetCustomFields(ctx, RecordType(resource))
	if err != nil {
		return nil, err
	}

	options := make([]domain.Option, 0, len(fields))
	for _, f := range fields {
		opt := domain.Option{Name: f.Name, Value: f.Name}
		if f.Schema != nil && f.Schema.Ref == "" && f.Schema.Value != nil {
			opt.Description = f.Schema.Value.Title
			if opt.Description == "" {
				opt.Description = f.Schema.Value.Description
			}
		}
		options = append(options, opt)
	}
	properties.SortOptions(options)

	return append([]domain.Option{{}}, options...), nil
}

// RecordType converts a resource tag to its record type by lower-casing the
// first letter: "AccountingPeriod" becomes "accountingPeriod".
func RecordType(resource string) string {
	if resource == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(resource)
	return string(unicode.ToLower(r)) + resource[size:]
}
