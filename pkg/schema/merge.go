package schema

import "cmp"

// Merge combines two models describing the same logical field into one
// generalized model. It is commutative and associative: folding any
// number of observations yields the same result in any order.
//
// Kinds are elected by observation frequency, with integer widening to
// number whenever a number was seen. Bounds err toward permissiveness:
// the merged schema describes the full observed range. Structure from
// both sides is always retained, even when the elected kinds disagree, so
// no observation is discarded mid-fold; serialization projects the
// elected kind.
func Merge(a, b Model) Model {
	m := Model{
		kindCounts:   sumCounts(a.kindCounts, b.kindCounts),
		formatCounts: sumCounts(a.formatCounts, b.formatCounts),
	}
	m.kind = electKind(m.kindCounts)
	m.format = electFormat(m.formatCounts)

	m.minLength = lesserPtr(a.minLength, b.minLength)
	m.maxLength = greaterPtr(a.maxLength, b.maxLength)
	m.minimum = lesserPtr(a.minimum, b.minimum)
	m.maximum = greaterPtr(a.maximum, b.maximum)
	m.pattern = mergePattern(a.pattern, b.pattern)
	m.enum = a.enum.union(b.enum)
	m.required = a.required && b.required
	m.defval = mergeDefault(a.defval, b.defval)
	m.enumLimit = max(a.enumLimit, b.enumLimit)

	m.properties = mergeProperties(a.properties, b.properties)
	m.items = mergeItems(a.items, b.items)
	m.examples = a.examples.union(b.examples)
	return m
}

// MergeAll folds models pairwise into one. An empty input yields the
// unconstrained string placeholder; callers should not pass zero models
// in normal operation.
func MergeAll(models []Model) Model {
	if len(models) == 0 {
		return stringPlaceholder()
	}
	out := models[0]
	for _, m := range models[1:] {
		out = Merge(out, m)
	}
	return out
}

func sumCounts[K comparable](a, b map[K]int64) map[K]int64 {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	out := make(map[K]int64, len(a)+len(b))
	for k, n := range a {
		out[k] += n
	}
	for k, n := range b {
		out[k] += n
	}
	return out
}

// electKind picks the most frequently observed non-null kind, breaking
// ties by precedence. Null wins only when nothing else was observed.
// Integer widens to number whenever any number observation exists.
func electKind(counts map[Kind]int64) Kind {
	var best Kind
	var bestN int64
	for _, k := range kindPrecedence {
		if n := counts[k]; n > bestN {
			best, bestN = k, n
		}
	}
	if bestN == 0 {
		if counts[KindNull] > 0 {
			return KindNull
		}
		return KindString
	}
	if best == KindInteger && counts[KindNumber] > 0 {
		return KindNumber
	}
	return best
}

// electFormat picks the most frequently observed format, breaking ties by
// detector priority. Observations without a format do not vote, so
// absence never erases a detected format.
func electFormat(counts map[Format]int64) Format {
	best := FormatNone
	var bestN int64
	for _, f := range formatPriority {
		if n := counts[f]; n > bestN {
			best, bestN = f, n
		}
	}
	return best
}

func lesserPtr[T cmp.Ordered](a, b *T) *T {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	if *b < *a {
		return b
	}
	return a
}

func greaterPtr[T cmp.Ordered](a, b *T) *T {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	if *b > *a {
		return b
	}
	return a
}

// mergePattern keeps the lexicographically smaller of two competing
// patterns so the choice does not depend on merge order. Inference never
// produces patterns; they only arrive via published schemas.
func mergePattern(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	case b < a:
		return b
	default:
		return a
	}
}

func mergeDefault(a, b any) any {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	if valueKey(b) < valueKey(a) {
		return b
	}
	return a
}

// mergeProperties merges keyed children. A key present on only one side
// passes through but is demoted to non-required, which is how a field
// absent from some samples becomes optional.
func mergeProperties(a, b map[string]Model) map[string]Model {
	if a == nil && b == nil {
		return nil
	}
	out := make(map[string]Model, len(a)+len(b))
	for name, av := range a {
		if bv, ok := b[name]; ok {
			out[name] = Merge(av, bv)
			continue
		}
		av.required = false
		out[name] = av
	}
	for name, bv := range b {
		if _, ok := a[name]; ok {
			continue
		}
		bv.required = false
		out[name] = bv
	}
	return out
}

func mergeItems(a, b *Model) *Model {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	m := Merge(*a, *b)
	return &m
}
