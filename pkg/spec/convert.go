package spec

import (
	"sort"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/getdriftd/driftd/pkg/schema"
)

// Convert projects an OpenAPI schema into the diff engine's serialized
// form. Refs are followed in place; a cyclic ref is cut with an empty
// node rather than recursing forever.
func Convert(ref *openapi3.SchemaRef) *schema.Doc {
	return convert(ref, make(map[*openapi3.Schema]bool))
}

func convert(ref *openapi3.SchemaRef, seen map[*openapi3.Schema]bool) *schema.Doc {
	if ref == nil || ref.Value == nil {
		return nil
	}
	s := ref.Value
	if seen[s] {
		return &schema.Doc{}
	}
	seen[s] = true
	defer delete(seen, s)

	d := &schema.Doc{
		Format:  s.Format,
		Pattern: s.Pattern,
		Minimum: s.Min,
		Maximum: s.Max,
		Default: s.Default,
	}

	types := append([]string(nil), s.Type.Slice()...)
	if s.Nullable && !containsString(types, "null") {
		types = append(types, "null")
	}
	switch len(types) {
	case 0:
	case 1:
		d.Type = types[0]
	default:
		d.Type = types
	}

	if s.MinLength > 0 {
		v := int(s.MinLength)
		d.MinLength = &v
	}
	if s.MaxLength != nil {
		v := int(*s.MaxLength)
		d.MaxLength = &v
	}

	if len(s.Enum) > 0 {
		d.Enum = append([]any(nil), s.Enum...)
	}

	if len(s.Properties) > 0 {
		d.Properties = make(map[string]*schema.Doc, len(s.Properties))
		for name, prop := range s.Properties {
			d.Properties[name] = convert(prop, seen)
		}
	}
	if len(s.Required) > 0 {
		d.Required = append([]string(nil), s.Required...)
		sort.Strings(d.Required)
	}

	if s.Items != nil {
		d.Items = convert(s.Items, seen)
	}

	if s.AdditionalProperties.Has != nil {
		v := *s.AdditionalProperties.Has
		d.AdditionalProperties = &v
	}

	return d
}

func containsString(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}
