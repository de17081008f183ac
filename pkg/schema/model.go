package schema

import (
	"fmt"
	"sort"
)

// Model is a structural schema built from observed JSON values. A Model is
// immutable once constructed: Infer builds one per sample, Merge combines
// two into a new value, and Doc projects the serialized form. Models may
// be shared across goroutines without synchronization.
type Model struct {
	kind   Kind
	format Format

	// Observation tallies drive the kind and format election so that
	// Merge stays commutative and associative regardless of the order
	// samples arrive in.
	kindCounts   map[Kind]int64
	formatCounts map[Format]int64

	minLength *int
	maxLength *int
	minimum   *float64
	maximum   *float64
	pattern   string
	enum      valueSet
	required  bool
	defval    any

	properties map[string]Model
	items      *Model

	examples  valueSet
	enumLimit int
}

// Kind returns the elected kind for this model.
func (m Model) Kind() Kind { return m.kind }

// Format returns the elected format, FormatNone when no string
// observation matched a detector.
func (m Model) Format() Format { return m.format }

// Nullable reports whether null was observed alongside a non-null kind.
// A model whose every observation was null has KindNull and is not
// considered nullable.
func (m Model) Nullable() bool {
	return m.kindCounts[KindNull] > 0 && m.kind != KindNull
}

// stringPlaceholder is the unconstrained schema used for empty arrays and
// empty merges.
func stringPlaceholder() Model {
	return Model{
		kind:       KindString,
		kindCounts: map[Kind]int64{KindString: 1},
	}
}

// valueSet is an order-independent collection of observed literals, used
// for examples and enum candidates. Values are deduplicated by type and
// printed form so that set union commutes.
type valueSet struct {
	byKey map[string]any
}

func valueKey(v any) string {
	return fmt.Sprintf("%T\x00%v", v, v)
}

func (s valueSet) with(v any) valueSet {
	out := make(map[string]any, len(s.byKey)+1)
	for k, val := range s.byKey {
		out[k] = val
	}
	out[valueKey(v)] = v
	return valueSet{byKey: out}
}

func (s valueSet) union(o valueSet) valueSet {
	if len(s.byKey) == 0 {
		return o
	}
	if len(o.byKey) == 0 {
		return s
	}
	out := make(map[string]any, len(s.byKey)+len(o.byKey))
	for k, v := range s.byKey {
		out[k] = v
	}
	for k, v := range o.byKey {
		out[k] = v
	}
	return valueSet{byKey: out}
}

func (s valueSet) size() int { return len(s.byKey) }

// sorted returns the values ordered by printed form, then by type name,
// so serialization is deterministic.
func (s valueSet) sorted() []any {
	if len(s.byKey) == 0 {
		return nil
	}
	vals := make([]any, 0, len(s.byKey))
	for _, v := range s.byKey {
		vals = append(vals, v)
	}
	sort.Slice(vals, func(i, j int) bool {
		si, sj := fmt.Sprint(vals[i]), fmt.Sprint(vals[j])
		if si != sj {
			return si < sj
		}
		return fmt.Sprintf("%T", vals[i]) < fmt.Sprintf("%T", vals[j])
	})
	return vals
}
