package request

import (
	"fmt"
	"maps"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/GabrielNunesIT/netsuite-forms/internal/domain"
	"github.com/GabrielNunesIT/netsuite-forms/internal/schema"
	"github.com/getkin/kin-openapi/openapi3"
)

// ExternalIDPattern is the only path parameter pattern understood: the value
// is an external id and gets the "eid:" prefix.
const ExternalIDPattern = "eid:(.+)"

const externalIDPrefix = "eid:"

var reservedKeys = []string{domain.ResourceKey, domain.OperationKey, domain.DebugModeKey}

// Assembler builds request descriptors for indexed operations.
type Assembler struct {
	index  *schema.Index
	policy schema.Policy
}

// NewAssembler creates an assembler over ix.
func NewAssembler(ix *schema.Index) *Assembler {
	return &Assembler{
		index:  ix,
		policy: ix.Policy(),
	}
}

// Policy returns the naming policy of the underlying index.
func (a *Assembler) Policy() schema.Policy {
	return a.policy
}

// Assemble classifies every filled value of an operation by its declared
// parameter location. Path values are substituted into the URL template,
// header and query values are copied and everything else becomes the body,
// with the synthetic wrapper levels of the form collapsed.
func (a *Assembler) Assemble(tag, operationID string, values map[string]any) (*domain.HTTPRequest, error) {
	method, urlPath, err := schema.SplitOperationID(operationID)
	if err != nil {
		return nil, err
	}

	op, err := a.index.Operation(tag, operationID)
	if err != nil {
		return nil, err
	}

	params := make(map[string]*openapi3.Parameter, len(op.Parameters))
	for _, ref := range op.Parameters {
		if ref == nil || ref.Value == nil {
			continue
		}
		params[ref.Value.Name] = ref.Value
	}

	req := domain.NewHTTPRequest(strings.ToUpper(method), urlPath)
	body := map[string]any{}

	values = a.mergeAdditionalFields(values)

	for _, key := range slices.Sorted(maps.Keys(values)) {
		if slices.Contains(reservedKeys, key) {
			continue
		}

		value := values[key]
		if key == a.policy.LocatorParameter {
			value = unwrapLocator(value)
		}
		if IsEmpty(value) {
			continue
		}

		param := params[key]
		switch LocationOf(param) {
		case LocationHeader:
			req.Headers[key] = value
		case LocationQuery:
			req.QueryString[key] = value
		case LocationPath:
			if req.URLPath, err = substitutePath(req.URLPath, param, value); err != nil {
				return nil, err
			}
		case LocationCookie:
			return nil, fmt.Errorf("%w: cookie parameter '%s' is not supported", domain.ErrInvalidRequest, key)
		case LocationBody:
			body[key] = value
		}
	}

	if strings.Contains(req.URLPath, "{") {
		return nil, fmt.Errorf("%w: request URL is invalid: %s", domain.ErrInvalidRequest, req.URLPath)
	}

	if req.Body, err = a.Flatten(body); err != nil {
		return nil, err
	}

	return req, nil
}

// mergeAdditionalFields lifts the members of the additional fields group to
// the top level. They win over siblings with the same key.
func (a *Assembler) mergeAdditionalFields(values map[string]any) map[string]any {
	additional, ok := values[a.policy.AdditionalFields].(map[string]any)
	if !ok {
		return values
	}

	merged := make(map[string]any, len(values)+len(additional))
	for k, v := range values {
		if k != a.policy.AdditionalFields {
			merged[k] = v
		}
	}
	maps.Copy(merged, additional)

	return merged
}

func substitutePath(urlPath string, param *openapi3.Parameter, value any) (string, error) {
	s := stringify(value)

	if param.Schema != nil && param.Schema.Value != nil && param.Schema.Value.Pattern != "" {
		pattern := param.Schema.Value.Pattern
		if pattern != ExternalIDPattern {
			return "", fmt.Errorf("%w: unknown schema pattern '%s' for '%s': %s",
				domain.ErrInvalidRequest, pattern, param.Name, s)
		}
		s = externalIDPrefix + s
	}

	placeholder := "{" + param.Name + "}"
	if !strings.Contains(urlPath, placeholder) {
		return "", fmt.Errorf("%w: %w: path parameter '%s' not found in urlPath '%s'",
			domain.ErrInvalidRequest, domain.ErrNotFound, param.Name, urlPath)
	}

	return strings.ReplaceAll(urlPath, placeholder, escapeComponent(s)), nil
}

// componentUnescaper restores the marks that URI components leave literal.
var componentUnescaper = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// escapeComponent percent-encodes everything except letters, digits and
// - _ . ! ~ * ' ( ), so reserved characters such as ':' and '/' never leak
// into the path.
func escapeComponent(s string) string {
	return componentUnescaper.Replace(url.QueryEscape(s))
}

// unwrapLocator reads the value of a resource locator, {mode, value}.
func unwrapLocator(value any) any {
	if m, ok := value.(map[string]any); ok {
		return m["value"]
	}
	return value
}

// IsEmpty reports whether a form value was left unset: nil, a blank string,
// an empty list or an empty object.
func IsEmpty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case []any:
		return len(v) == 0
	case map[string]any:
		return len(v) == 0
	default:
		return false
	}
}

func stringify(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}
