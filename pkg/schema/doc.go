// Package schema infers structural schemas from observed JSON values and
// merges many observations into one generalized schema.
//
// Infer classifies a single decoded value into a Model: a tagged variant
// over the seven JSON kinds carrying formats, constraints, nested
// properties and items, and a few retained examples. Merge reduces the
// Models observed for one logical field into a schema describing the full
// observed range, demoting fields absent from some samples to optional.
// Doc projects a Model into its serialized form, a plain JSON-Schema
// style fragment consumed by the diff engine and report rendering.
package schema

import "sort"

const maxDocExamples = 3

// Doc is the serialized form of a Model: a plain tree structurally
// equivalent to a JSON-Schema fragment. Published schemas are converted
// into the same shape so discovered and published sides diff uniformly.
type Doc struct {
	// Type is the kind name, or a [kind, "null"] pair when null was
	// observed alongside it.
	Type                 any             `json:"type,omitempty" yaml:"type,omitempty"`
	Format               string          `json:"format,omitempty" yaml:"format,omitempty"`
	MinLength            *int            `json:"minLength,omitempty" yaml:"minLength,omitempty"`
	MaxLength            *int            `json:"maxLength,omitempty" yaml:"maxLength,omitempty"`
	Minimum              *float64        `json:"minimum,omitempty" yaml:"minimum,omitempty"`
	Maximum              *float64        `json:"maximum,omitempty" yaml:"maximum,omitempty"`
	Pattern              string          `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	Enum                 []any           `json:"enum,omitempty" yaml:"enum,omitempty"`
	Default              any             `json:"default,omitempty" yaml:"default,omitempty"`
	Properties           map[string]*Doc `json:"properties,omitempty" yaml:"properties,omitempty"`
	Required             []string        `json:"required,omitempty" yaml:"required,omitempty"`
	Items                *Doc            `json:"items,omitempty" yaml:"items,omitempty"`
	AdditionalProperties *bool           `json:"additionalProperties,omitempty" yaml:"additionalProperties,omitempty"`
	Examples             []any           `json:"examples,omitempty" yaml:"examples,omitempty"`
}

// Doc serializes the model. The output is deterministic: required names
// and examples are sorted, and the elected kind decides which structure
// is projected.
func (m Model) Doc() *Doc {
	d := &Doc{
		Format:    string(m.format),
		MinLength: m.minLength,
		MaxLength: m.maxLength,
		Minimum:   m.minimum,
		Maximum:   m.maximum,
		Pattern:   m.pattern,
		Default:   m.defval,
	}

	if m.Nullable() {
		d.Type = []string{m.kind.String(), "null"}
	} else {
		d.Type = m.kind.String()
	}

	if n := m.enum.size(); n > 0 && n <= m.docEnumLimit() {
		d.Enum = m.enum.sorted()
	}

	if m.kind == KindObject && len(m.properties) > 0 {
		d.Properties = make(map[string]*Doc, len(m.properties))
		var required []string
		for name, p := range m.properties {
			d.Properties[name] = p.Doc()
			if p.required {
				required = append(required, name)
			}
		}
		sort.Strings(required)
		d.Required = required
		d.AdditionalProperties = boolPtr(true)
	}

	if m.kind == KindArray && m.items != nil {
		d.Items = m.items.Doc()
	}

	if ex := m.examples.sorted(); len(ex) > 0 {
		if len(ex) > maxDocExamples {
			ex = ex[:maxDocExamples]
		}
		d.Examples = ex
	}
	return d
}

func (m Model) docEnumLimit() int {
	if m.enumLimit > 0 {
		return m.enumLimit
	}
	return defaultEnumLimit
}
