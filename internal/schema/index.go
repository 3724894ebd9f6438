// Package schema indexes an OpenAPI document by resource tag, operation and
// component name.
package schema

import (
	"fmt"
	"maps"
	"regexp"
	"slices"
	"sort"
	"strings"

	"github.com/GabrielNunesIT/netsuite-forms/internal/domain"
	"github.com/GabrielNunesIT/netsuite-forms/internal/openapi"
	"github.com/getkin/kin-openapi/openapi3"
)

var componentRefPattern = regexp.MustCompile(`(?i)#/components/schemas/(.+)$`)

// Operation is one API operation grouped under its single tag.
type Operation struct {
	// ID is "<method> <urlTemplate>" with the method lower-case.
	ID         string
	Method     string
	Path       string
	Tag        string
	Definition *openapi3.Operation
	// Parameters merges path-level and operation-level parameters, the
	// operation winning on the same name and location.
	Parameters openapi3.Parameters
}

// Summary returns the operation summary.
func (o *Operation) Summary() string {
	return o.Definition.Summary
}

// Index is a read-only view over an OpenAPI document.
type Index struct {
	doc             *openapi3.T
	policy          Policy
	tagToOperations map[string][]*Operation
	components      map[string]*openapi3.SchemaRef
}

// Option configures an Index.
type Option func(*Index)

// WithPolicy overrides the default reference naming policy.
func WithPolicy(p Policy) Option {
	return func(ix *Index) {
		ix.policy = p
	}
}

// New builds the index of doc. It fails when the document has no paths or
// no component schemas, when an operation uses an unknown method, or when an
// operation does not carry exactly one tag.
func New(doc *openapi3.T, opts ...Option) (*Index, error) {
	if doc == nil || doc.Paths == nil || doc.Components == nil || doc.Components.Schemas == nil {
		return nil, fmt.Errorf("%w: missing paths or component schemas", domain.ErrMalformedSchema)
	}

	ix := &Index{
		doc:    doc,
		policy: DefaultPolicy(),
	}
	for _, opt := range opts {
		opt(ix)
	}

	b := newIndexBuilder()
	if err := b.addPaths(doc.Paths); err != nil {
		return nil, err
	}
	ix.tagToOperations = b.freeze()

	ix.components = make(map[string]*openapi3.SchemaRef, len(doc.Components.Schemas))
	maps.Copy(ix.components, doc.Components.Schemas)

	return ix, nil
}

// Document returns the indexed document.
func (ix *Index) Document() *openapi3.T {
	return ix.doc
}

// Policy returns the naming policy in use.
func (ix *Index) Policy() Policy {
	return ix.policy
}

// Tags returns every resource tag in ascending order.
func (ix *Index) Tags() []string {
	return slices.Sorted(maps.Keys(ix.tagToOperations))
}

// TagToOperations returns a copy of the tag grouping.
func (ix *Index) TagToOperations() map[string][]*Operation {
	out := make(map[string][]*Operation, len(ix.tagToOperations))
	for tag, ops := range ix.tagToOperations {
		out[tag] = slices.Clone(ops)
	}
	return out
}

// Operations returns the operations of a tag in traversal order.
func (ix *Index) Operations(tag string) ([]*Operation, error) {
	ops := ix.tagToOperations[tag]
	if len(ops) == 0 {
		return nil, fmt.Errorf("%w: no operations found for tag: %s", domain.ErrNotFound, tag)
	}
	return slices.Clone(ops), nil
}

// Operation finds an operation by tag and operation id.
func (ix *Index) Operation(tag, operationID string) (*Operation, error) {
	ops := ix.tagToOperations[tag]
	if len(ops) == 0 {
		return nil, fmt.Errorf("%w: no operations found for tag: %s", domain.ErrNotFound, tag)
	}

	for _, op := range ops {
		if op.ID == operationID {
			return op, nil
		}
	}

	return nil, fmt.Errorf("%w: could not find operation with tag %s and operation id: %s",
		domain.ErrNotFound, tag, operationID)
}

// OperationByPath finds an operation by tag, URL template and method.
func (ix *Index) OperationByPath(tag, urlPath, method string) (*Operation, error) {
	return ix.Operation(tag, OperationID(method, urlPath))
}

// Components returns the component names in ascending order.
func (ix *Index) Components() []string {
	return slices.Sorted(maps.Keys(ix.components))
}

// Component returns a component schema by name.
func (ix *Index) Component(name string) (*openapi3.SchemaRef, error) {
	ref, ok := ix.components[name]
	if !ok {
		return nil, fmt.Errorf("%w: component %s", domain.ErrNotFound, name)
	}
	return ref, nil
}

// ResolveComponentName extracts the component name of a $ref. Unless the
// reference is the top-level request body, names that are neither resource
// components nor nested components collapse to the generic component, which
// keeps self references from expanding without bound.
func (ix *Index) ResolveComponentName(ref string, topLevelBody bool) (string, error) {
	var name string

	if m := componentRefPattern.FindStringSubmatch(ref); m != nil {
		name = m[1]

		if !topLevelBody && !ix.policy.KeepsComponent(name) {
			name = ix.policy.GenericComponent
		}

		if _, ok := ix.components[name]; ok {
			return name, nil
		}
	}

	return "", fmt.Errorf("%w: component not found for reference: %s, component name: %s",
		domain.ErrNotFound, ref, name)
}

// OperationID returns the operation identity of a method and URL template.
func OperationID(method, urlPath string) string {
	return method + " " + urlPath
}

// SplitOperationID splits an operation identity into its method and URL
// template.
func SplitOperationID(id string) (method, urlPath string, err error) {
	method, urlPath, ok := strings.Cut(id, " ")
	if !ok || method == "" || urlPath == "" {
		return "", "", fmt.Errorf("%w: malformed operation id: %q", domain.ErrInvalidRequest, id)
	}
	return method, urlPath, nil
}

// indexBuilder owns the tag grouping while the document is traversed.
type indexBuilder struct {
	ops   map[string][]*Operation
	taken map[string]struct{}
}

func newIndexBuilder() *indexBuilder {
	return &indexBuilder{
		ops:   make(map[string][]*Operation),
		taken: make(map[string]struct{}),
	}
}

func (b *indexBuilder) addPaths(paths *openapi3.Paths) error {
	items := paths.Map()
	templates := make([]string, 0, len(items))
	for template := range items {
		templates = append(templates, template)
	}
	sort.Strings(templates)

	for _, template := range templates {
		item := items[template]
		if item == nil {
			continue
		}
		if err := validateMethods(item); err != nil {
			return err
		}

		for _, method := range openapi.ValidHTTPMethods {
			op := item.GetOperation(strings.ToUpper(method))
			if op == nil {
				continue
			}
			if err := b.add(template, method, item, op); err != nil {
				return err
			}
		}
	}
	return nil
}

func (b *indexBuilder) add(template, method string, item *openapi3.PathItem, op *openapi3.Operation) error {
	id := OperationID(method, template)

	if len(op.Tags) != 1 {
		return fmt.Errorf("%w: operation %s must have exactly one tag, found %d",
			domain.ErrMalformedSchema, id, len(op.Tags))
	}
	if _, dup := b.taken[id]; dup {
		return fmt.Errorf("%w: duplicate operation %s", domain.ErrMalformedSchema, id)
	}
	b.taken[id] = struct{}{}

	tag := op.Tags[0]
	b.ops[tag] = append(b.ops[tag], &Operation{
		ID:         id,
		Method:     method,
		Path:       template,
		Tag:        tag,
		Definition: op,
		Parameters: mergeParameters(item.Parameters, op.Parameters),
	})
	return nil
}

// freeze hands the grouping out; the builder must not be used afterwards.
func (b *indexBuilder) freeze() map[string][]*Operation {
	ops := b.ops
	b.ops = nil
	b.taken = nil
	return ops
}

func validateMethods(item *openapi3.PathItem) error {
	if item.Connect != nil {
		return fmt.Errorf("%w: invalid HTTP method: connect", domain.ErrInvalidRequest)
	}
	for key := range item.Extensions {
		if strings.HasPrefix(key, "x-") || openapi.IsValidHTTPMethod(key) {
			continue
		}
		return fmt.Errorf("%w: invalid HTTP method: %s", domain.ErrInvalidRequest, key)
	}
	return nil
}

func mergeParameters(shared, own openapi3.Parameters) openapi3.Parameters {
	if len(shared) == 0 {
		return own
	}

	merged := make(openapi3.Parameters, 0, len(shared)+len(own))
	for _, p := range shared {
		if p.Value != nil && own.GetByInAndName(p.Value.In, p.Value.Name) != nil {
			continue
		}
		merged = append(merged, p)
	}
	return append(merged, own...)
}
