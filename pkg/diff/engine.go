package diff

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/getdriftd/driftd/pkg/schema"
)

// Engine compares schema docs. It holds configuration only, no state
// between calls, so one Engine may serve many goroutines.
type Engine struct {
	CompareTypes       bool
	CompareFormats     bool
	CompareConstraints bool
	CompareEnums       bool
	CompareDefaults    bool
	CompareRequired    bool

	// IgnorePaths suppresses diffs whose path ends with any entry.
	// Suppressed nodes short-circuit before any comparison runs.
	IgnorePaths []string
}

// New returns an Engine with every comparison enabled.
func New() *Engine {
	return &Engine{
		CompareTypes:       true,
		CompareFormats:     true,
		CompareConstraints: true,
		CompareEnums:       true,
		CompareDefaults:    true,
		CompareRequired:    true,
	}
}

// Compare walks both docs from rootPath using a default engine with the
// given ignore list.
func Compare(published, discovered *schema.Doc, rootPath string, ignorePaths []string) []Diff {
	e := New()
	e.IgnorePaths = ignorePaths
	return e.Compare(published, discovered, rootPath)
}

// Compare recursively diffs the two docs. Nil docs are treated as empty,
// absent fields become missing-field or extra-field entries, and the
// walk never fails.
func (e *Engine) Compare(published, discovered *schema.Doc, path string) []Diff {
	var diffs []Diff
	e.walk(published, discovered, path, &diffs)
	return diffs
}

func (e *Engine) walk(published, discovered *schema.Doc, path string, diffs *[]Diff) {
	if e.ignored(path) {
		return
	}
	if published == nil {
		published = &schema.Doc{}
	}
	if discovered == nil {
		discovered = &schema.Doc{}
	}

	pubType := normalizeType(published.Type)
	discType := normalizeType(discovered.Type)

	if e.CompareTypes && pubType != discType {
		*diffs = append(*diffs, Diff{
			Path:       nodePath(path),
			Kind:       KindTypeMismatch,
			Severity:   SeverityError,
			Published:  emptyAsNil(pubType),
			Discovered: emptyAsNil(discType),
			Message:    fmt.Sprintf("Type mismatch: published %q vs discovered %q", pubType, discType),
		})
	}

	if e.CompareFormats && discovered.Format != "" && discovered.Format != published.Format {
		*diffs = append(*diffs, Diff{
			Path:       nodePath(path),
			Kind:       KindFormatMismatch,
			Severity:   SeverityInfo,
			Published:  emptyAsNil(published.Format),
			Discovered: discovered.Format,
			Message:    fmt.Sprintf("Format discovered: %s", discovered.Format),
		})
	}

	if e.CompareConstraints {
		e.compareConstraints(published, discovered, path, diffs)
	}
	if e.CompareEnums {
		e.compareEnums(published, discovered, path, diffs)
	}
	if e.CompareDefaults {
		e.compareDefaults(published, discovered, path, diffs)
	}

	if len(published.Properties) > 0 || len(discovered.Properties) > 0 {
		e.compareProperties(published.Properties, discovered.Properties, path, diffs)
	}

	if e.CompareRequired {
		e.compareRequired(published, discovered, path, diffs)
	}

	if pubType == "array" && discType == "array" {
		if published.Items != nil || discovered.Items != nil {
			e.walk(published.Items, discovered.Items, itemsPath(path), diffs)
		}
	}
}

func (e *Engine) compareConstraints(published, discovered *schema.Doc, path string, diffs *[]Diff) {
	checks := []struct {
		name string
		pub  any
		disc any
	}{
		{"minLength", intValue(published.MinLength), intValue(discovered.MinLength)},
		{"maxLength", intValue(published.MaxLength), intValue(discovered.MaxLength)},
		{"minimum", floatValue(published.Minimum), floatValue(discovered.Minimum)},
		{"maximum", floatValue(published.Maximum), floatValue(discovered.Maximum)},
		{"pattern", emptyAsNil(published.Pattern), emptyAsNil(discovered.Pattern)},
	}

	for _, c := range checks {
		if c.disc == nil || c.pub == c.disc {
			continue
		}
		sev := SeverityWarning
		if c.pub == nil {
			// Nothing published to contradict, just new knowledge.
			sev = SeverityInfo
		}
		*diffs = append(*diffs, Diff{
			Path:       nodePath(path),
			Kind:       KindConstraintDiff,
			Severity:   sev,
			Published:  c.pub,
			Discovered: c.disc,
			Message:    fmt.Sprintf("Constraint %q differs: published=%v, discovered=%v", c.name, c.pub, c.disc),
		})
	}
}

func (e *Engine) compareEnums(published, discovered *schema.Doc, path string, diffs *[]Diff) {
	if len(published.Enum) == 0 && len(discovered.Enum) == 0 {
		return
	}

	known := make(map[string]bool, len(published.Enum))
	for _, v := range published.Enum {
		known[enumKey(v)] = true
	}

	var newValues []any
	for _, v := range discovered.Enum {
		if !known[enumKey(v)] {
			newValues = append(newValues, v)
		}
	}
	if len(newValues) == 0 {
		return
	}

	pubEnum := published.Enum
	if pubEnum == nil {
		pubEnum = []any{}
	}
	*diffs = append(*diffs, Diff{
		Path:       nodePath(path),
		Kind:       KindEnumDiff,
		Severity:   SeverityWarning,
		Published:  pubEnum,
		Discovered: newValues,
		Message:    fmt.Sprintf("New enum values discovered: %v", newValues),
	})
}

func (e *Engine) compareDefaults(published, discovered *schema.Doc, path string, diffs *[]Diff) {
	if discovered.Default == nil || reflect.DeepEqual(published.Default, discovered.Default) {
		return
	}
	*diffs = append(*diffs, Diff{
		Path:       nodePath(path),
		Kind:       KindDefaultDiff,
		Severity:   SeverityInfo,
		Published:  published.Default,
		Discovered: discovered.Default,
		Message:    fmt.Sprintf("Default value discovered: %v", discovered.Default),
	})
}

func (e *Engine) compareProperties(published, discovered map[string]*schema.Doc, path string, diffs *[]Diff) {
	// Observed but undocumented.
	for _, key := range sortedKeys(discovered) {
		if _, ok := published[key]; ok {
			continue
		}
		fieldPath := joinPath(path, key)
		if e.ignored(fieldPath) {
			continue
		}
		*diffs = append(*diffs, Diff{
			Path:       fieldPath,
			Kind:       KindMissingField,
			Severity:   SeverityWarning,
			Discovered: discovered[key],
			Message:    fmt.Sprintf("Undocumented field %q discovered", key),
		})
	}

	// Documented but never observed.
	for _, key := range sortedKeys(published) {
		if _, ok := discovered[key]; ok {
			continue
		}
		fieldPath := joinPath(path, key)
		if e.ignored(fieldPath) {
			continue
		}
		*diffs = append(*diffs, Diff{
			Path:      fieldPath,
			Kind:      KindExtraField,
			Severity:  SeverityInfo,
			Published: published[key],
			Message:   fmt.Sprintf("Published field %q not seen in responses", key),
		})
	}

	// Shared keys recurse.
	for _, key := range sortedKeys(published) {
		disc, ok := discovered[key]
		if !ok {
			continue
		}
		e.walk(published[key], disc, joinPath(path, key), diffs)
	}
}

func (e *Engine) compareRequired(published, discovered *schema.Doc, path string, diffs *[]Diff) {
	pubRequired := make(map[string]bool, len(published.Required))
	for _, name := range published.Required {
		pubRequired[name] = true
	}

	for _, name := range discovered.Required {
		if pubRequired[name] {
			continue
		}
		fieldPath := joinPath(path, name)
		if e.ignored(fieldPath) {
			continue
		}
		*diffs = append(*diffs, Diff{
			Path:       fieldPath,
			Kind:       KindRequiredDiff,
			Severity:   SeverityWarning,
			Published:  false,
			Discovered: true,
			Message:    fmt.Sprintf("Field %q is required in discovered but not in published", name),
		})
	}
}

func (e *Engine) ignored(path string) bool {
	for _, suffix := range e.IgnorePaths {
		if suffix != "" && strings.HasSuffix(path, suffix) {
			return true
		}
	}
	return false
}

// normalizeType collapses nullable unions to their non-null member so
// ["string","null"] compares equal to "string".
func normalizeType(t any) string {
	switch v := t.(type) {
	case nil:
		return ""
	case string:
		return v
	case []string:
		return normalizeTypeList(v)
	case []any:
		list := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				list = append(list, s)
			}
		}
		return normalizeTypeList(list)
	default:
		return fmt.Sprint(v)
	}
}

func normalizeTypeList(types []string) string {
	for _, t := range types {
		if t != "null" {
			return t
		}
	}
	return "null"
}

func nodePath(path string) string {
	if path == "" {
		return "root"
	}
	return path
}

func joinPath(parent, name string) string {
	if parent == "" || parent == "root" {
		return name
	}
	return parent + "/" + name
}

func itemsPath(parent string) string {
	if parent == "" || parent == "root" {
		return "[items]"
	}
	return parent + "[items]"
}

func sortedKeys(m map[string]*schema.Doc) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func intValue(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}

func floatValue(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}

func emptyAsNil(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// enumKey normalizes values for membership checks so that numerically
// equal values compare equal across decoder numeric types.
func enumKey(v any) string {
	switch n := v.(type) {
	case int:
		return "n:" + strconv.FormatFloat(float64(n), 'g', -1, 64)
	case int64:
		return "n:" + strconv.FormatFloat(float64(n), 'g', -1, 64)
	case uint64:
		return "n:" + strconv.FormatFloat(float64(n), 'g', -1, 64)
	case float64:
		return "n:" + strconv.FormatFloat(n, 'g', -1, 64)
	default:
		return fmt.Sprintf("%T:%v", v, v)
	}
}
