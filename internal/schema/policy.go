package schema

import "strings"

// Policy holds the naming conventions of the target API that decide how
// component references are resolved and how synthetic wrapper keys are
// recognised when values come back from the form.
type Policy struct {
	// ResourcePrefix marks named resource components kept as-is (e.g. "nsResource").
	ResourcePrefix string
	// Separator marks nested or synthetic components kept as-is (e.g. "customer-addressBook").
	Separator string
	// GenericComponent is the component every other reference collapses to.
	GenericComponent string
	// AnonymousObject names the sub-level of inline object properties.
	AnonymousObject string
	// AdditionalFields names the group bundling optional fields.
	AdditionalFields string
	// CustomFields names the repeatable custom field group.
	CustomFields string
	// CustomFieldEntry names the sub-level of each custom field entry.
	CustomFieldEntry string
	// LocatorParameter is the parameter rendered as a resource locator.
	LocatorParameter string
	// LocatorResource is the resource whose LocatorParameter becomes a locator.
	LocatorResource string
	// QueryResource routes to the query base path instead of the record one.
	QueryResource string
	// SkipProperties lists "<component>_<property>" pairs never rendered.
	SkipProperties []string
}

// DefaultPolicy returns the NetSuite REST record service conventions.
func DefaultPolicy() Policy {
	return Policy{
		ResourcePrefix:   "ns",
		Separator:        "-",
		GenericComponent: "nsResource",
		AnonymousObject:  "anonymousObject",
		AdditionalFields: "additionalFields",
		CustomFields:     "customFields",
		CustomFieldEntry: "CustomField",
		LocatorParameter: "customRecordType",
		LocatorResource:  "CustomRecord",
		QueryResource:    "SuiteQL",
		SkipProperties:   []string{"nsResource_refName"},
	}
}

// KeepsComponent reports whether a non top-level reference to name is kept
// instead of collapsing to the generic component.
func (p Policy) KeepsComponent(name string) bool {
	return p.isResourceName(name) || p.isNestedName(name)
}

// IsWrapperKey reports whether key is a synthetic level introduced by the
// property compiler.
func (p Policy) IsWrapperKey(key string) bool {
	return p.isResourceName(key) ||
		p.isNestedName(key) ||
		key == p.AdditionalFields ||
		key == p.AnonymousObject
}

// SkipsProperty reports whether a component property is denylisted.
func (p Policy) SkipsProperty(component, property string) bool {
	full := component + "_" + property
	for _, skip := range p.SkipProperties {
		if skip == full {
			return true
		}
	}
	return false
}

func (p Policy) isResourceName(name string) bool {
	return p.ResourcePrefix != "" && strings.HasPrefix(name, p.ResourcePrefix)
}

func (p Policy) isNestedName(name string) bool {
	return p.Separator != "" && strings.Contains(name, p.Separator)
}
