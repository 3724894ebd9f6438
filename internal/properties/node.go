package properties

import (
	"fmt"
	"slices"
	"strings"

	"github.com/GabrielNunesIT/netsuite-forms/internal/domain"
	"github.com/GabrielNunesIT/netsuite-forms/internal/schema"
)

// Summaries of the operations that accept custom fields.
var upsertSummaries = []string{"Insert record.", "Update record.", "Insert or update record."}

// AcceptsCustomFields reports whether an operation inserts or updates records.
func AcceptsCustomFields(op *schema.Operation) bool {
	return slices.Contains(upsertSummaries, op.Summary())
}

// OperationName returns the summary of op without its trailing period.
func OperationName(op *schema.Operation) string {
	return strings.TrimSuffix(op.Summary(), ".")
}

// ResourceSelector lists every resource tag, ordered by name.
func (c *Compiler) ResourceSelector() *domain.Field {
	tags := c.index.Tags()
	sortStrings(tags)

	options := make([]domain.Option, 0, len(tags))
	for _, tag := range tags {
		options = append(options, domain.Option{Name: Label(tag), Value: tag})
	}

	return &domain.Field{
		DisplayName:      "Resource",
		Name:             domain.ResourceKey,
		Type:             domain.FieldOptions,
		Options:          options,
		NoDataExpression: true,
		Default:          "",
	}
}

// OperationSelector lists the operations of one resource, ordered by name.
// The default is the first operation in document order.
func (c *Compiler) OperationSelector(tag string) (*domain.Field, error) {
	ops, err := c.index.Operations(tag)
	if err != nil {
		return nil, err
	}

	resource := Label(tag)
	options := make([]domain.Option, 0, len(ops))
	for _, op := range ops {
		name := OperationName(op)
		options = append(options, domain.Option{
			Name:   name,
			Value:  op.ID,
			Action: resource + " - " + name,
		})
	}

	def := "get"
	if len(options) > 0 {
		def = options[0].Value
	}
	SortOptions(options)

	return &domain.Field{
		DisplayName:      "Operation",
		Name:             domain.OperationKey,
		Type:             domain.FieldOptions,
		Options:          options,
		NoDataExpression: true,
		Default:          def,
		DisplayOptions: &domain.DisplayOptions{
			Show: map[string][]string{domain.ResourceKey: {tag}},
		},
	}, nil
}

// CompileResource compiles every operation of a resource tag.
func (c *Compiler) CompileResource(tag string) (*domain.ResourceForm, error) {
	ops, err := c.index.Operations(tag)
	if err != nil {
		return nil, err
	}

	form := &domain.ResourceForm{
		Tag:        tag,
		Label:      Label(tag),
		Operations: make([]*domain.OperationForm, 0, len(ops)),
	}
	if info := c.index.Document().Info; info != nil {
		form.Title = info.Title
		form.Version = info.Version
	}

	for _, op := range ops {
		fields, err := c.compileOperation(op)
		if err != nil {
			return nil, err
		}

		opForm := &domain.OperationForm{
			ID:      op.ID,
			Method:  strings.ToUpper(op.Method),
			Path:    op.Path,
			Name:    OperationName(op),
			Summary: op.Summary(),
			Fields:  fields,
		}

		if AcceptsCustomFields(op) {
			custom, err := c.CustomFieldsField()
			if err != nil {
				return nil, err
			}
			custom.DisplayOptions = showFor(tag, op.ID)
			opForm.CustomFields = custom
		}

		form.Operations = append(form.Operations, opForm)
	}

	return form, nil
}

// CompileAll returns the complete node property list: the resource selector,
// then per resource its operation selector and operation fields, then the
// custom fields field shown for every insert or update operation.
func (c *Compiler) CompileAll() ([]*domain.Field, error) {
	resources := c.ResourceSelector()
	fields := []*domain.Field{resources}

	tags := make([]string, 0, len(resources.Options))
	var upserts []string

	for _, opt := range resources.Options {
		tag := opt.Value
		tags = append(tags, tag)

		selector, err := c.OperationSelector(tag)
		if err != nil {
			return nil, err
		}
		fields = append(fields, selector)

		ops, err := c.index.Operations(tag)
		if err != nil {
			return nil, err
		}
		for _, op := range ops {
			opFields, err := c.compileOperation(op)
			if err != nil {
				return nil, fmt.Errorf("failed to compile %s: %w", tag, err)
			}
			fields = append(fields, opFields...)

			if AcceptsCustomFields(op) {
				upserts = append(upserts, op.ID)
			}
		}
	}

	custom, err := c.CustomFieldsField()
	if err != nil {
		return nil, err
	}
	custom.DisplayOptions = &domain.DisplayOptions{
		Show: map[string][]string{
			domain.ResourceKey:  tags,
			domain.OperationKey: upserts,
		},
	}

	return append(fields, custom), nil
}
