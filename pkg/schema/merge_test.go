package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lawSamples covers the shapes that stress merge: overlapping and
// disjoint object keys, mixed kinds for the same field, nulls, formats,
// and nested arrays.
func lawSamples() []Model {
	values := []any{
		map[string]any{
			"id":    "123e4567-e89b-12d3-a456-426614174000",
			"name":  "alpha",
			"count": int64(3),
		},
		map[string]any{
			"id":    "223e4567-e89b-12d3-a456-426614174000",
			"count": 4.5,
			"tags":  []any{"x"},
		},
		map[string]any{
			"name":   nil,
			"tags":   []any{"yy", "zzz"},
			"active": true,
		},
		"plain string",
		nil,
		[]any{int64(1), int64(2)},
		map[string]any{"name": map[string]any{"first": "a"}},
	}

	models := make([]Model, 0, len(values))
	for _, v := range values {
		models = append(models, Infer(v))
	}
	return models
}

func TestMerge_Commutative(t *testing.T) {
	samples := lawSamples()
	for i, a := range samples {
		for j, b := range samples {
			ab := Merge(a, b).Doc()
			ba := Merge(b, a).Doc()
			assert.Equal(t, ab, ba, "samples %d and %d", i, j)
		}
	}
}

func TestMerge_Associative(t *testing.T) {
	samples := lawSamples()
	for i, a := range samples {
		for j, b := range samples {
			for k, c := range samples {
				left := Merge(Merge(a, b), c).Doc()
				right := Merge(a, Merge(b, c)).Doc()
				assert.Equal(t, left, right, "samples %d, %d, %d", i, j, k)
			}
		}
	}
}

func TestMerge_SameKindKeepsKind(t *testing.T) {
	m := Merge(Infer("a"), Infer("b"))
	assert.Equal(t, KindString, m.Kind())
}

func TestMerge_IntegerAndNumberWidenToNumber(t *testing.T) {
	a, b := Infer(int64(1)), Infer(2.5)

	assert.Equal(t, KindNumber, Merge(a, b).Kind())
	assert.Equal(t, KindNumber, Merge(b, a).Kind())

	// Even when integers outnumber the floats.
	m := Merge(Merge(Infer(int64(1)), Infer(int64(2))), Infer(0.5))
	assert.Equal(t, KindNumber, m.Kind())
}

func TestMerge_MostFrequentKindWins(t *testing.T) {
	str1, str2 := Infer("a"), Infer("b")
	obj := Infer(map[string]any{"x": int64(1)})

	orders := [][]Model{
		{str1, obj, str2},
		{obj, str1, str2},
		{str1, str2, obj},
	}
	for i, order := range orders {
		assert.Equal(t, KindString, MergeAll(order).Kind(), "order %d", i)
	}
}

func TestMerge_KindTiePrefersStructure(t *testing.T) {
	m := Merge(Infer("a"), Infer(map[string]any{"x": int64(1)}))
	assert.Equal(t, KindObject, m.Kind())
}

func TestMerge_MixedKindsKeepBothStructures(t *testing.T) {
	str := Infer("a")
	obj1 := Infer(map[string]any{"x": int64(1)})
	obj2 := Infer(map[string]any{"x": int64(2)})

	// Object observations dominate, and the object structure collected
	// before or after the string observation must survive the fold.
	m := MergeAll([]Model{str, obj1, obj2})
	d := m.Doc()
	assert.Equal(t, "object", d.Type)
	require.NotNil(t, d.Properties["x"])
	assert.Equal(t, "integer", d.Properties["x"].Type)
}

func TestMerge_BoundsWiden(t *testing.T) {
	strs := Merge(Infer("ab"), Infer("abcdef")).Doc()
	require.NotNil(t, strs.MinLength)
	require.NotNil(t, strs.MaxLength)
	assert.Equal(t, 2, *strs.MinLength)
	assert.Equal(t, 6, *strs.MaxLength)

	nums := Merge(Infer(int64(3)), Infer(int64(10))).Doc()
	require.NotNil(t, nums.Minimum)
	require.NotNil(t, nums.Maximum)
	assert.Equal(t, 3.0, *nums.Minimum)
	assert.Equal(t, 10.0, *nums.Maximum)
}

func TestMerge_NullObservationMakesNullable(t *testing.T) {
	m := Merge(Infer("x"), Infer(nil))

	assert.Equal(t, KindString, m.Kind())
	assert.True(t, m.Nullable())
	assert.Equal(t, []string{"string", "null"}, m.Doc().Type)
}

func TestMerge_OnlyNullsStayNull(t *testing.T) {
	m := Merge(Infer(nil), Infer(nil))

	assert.Equal(t, KindNull, m.Kind())
	assert.False(t, m.Nullable())
	assert.Equal(t, "null", m.Doc().Type)
}

func TestMerge_RequiredOnlyWhenAlwaysPresent(t *testing.T) {
	a := Infer(map[string]any{"id": int64(1), "name": "x"})
	b := Infer(map[string]any{"id": int64(2)})

	d := Merge(a, b).Doc()
	assert.Equal(t, []string{"id"}, d.Required)
	// name survives as an optional property.
	require.NotNil(t, d.Properties["name"])
	assert.Equal(t, "string", d.Properties["name"].Type)
}

func TestMerge_RequiredSetNeverGrows(t *testing.T) {
	a := Infer(map[string]any{"id": int64(1), "name": "x"})
	b := Infer(map[string]any{"id": int64(2), "age": int64(9)})

	d := Merge(a, b).Doc()
	assert.Equal(t, []string{"id"}, d.Required)
}

func TestMerge_FormatSurvivesAbsence(t *testing.T) {
	m := Merge(Infer("user@example.com"), Infer("no format here"))
	assert.Equal(t, FormatEmail, m.Format())
}

func TestMerge_MostFrequentFormatWins(t *testing.T) {
	email1 := Infer("a@example.com")
	email2 := Infer("b@example.com")
	uuid := Infer("123e4567-e89b-12d3-a456-426614174000")

	orders := [][]Model{
		{email1, uuid, email2},
		{uuid, email1, email2},
	}
	for i, order := range orders {
		assert.Equal(t, FormatEmail, MergeAll(order).Format(), "order %d", i)
	}
}

func TestMerge_ItemsRecurse(t *testing.T) {
	m := Merge(Infer([]any{"ab"}), Infer([]any{"abcd"}))

	d := m.Doc()
	require.NotNil(t, d.Items)
	require.NotNil(t, d.Items.MinLength)
	require.NotNil(t, d.Items.MaxLength)
	assert.Equal(t, 2, *d.Items.MinLength)
	assert.Equal(t, 4, *d.Items.MaxLength)
}

func TestMergeAll_EmptyReturnsPlaceholder(t *testing.T) {
	m := MergeAll(nil)

	assert.Equal(t, KindString, m.Kind())
	d := m.Doc()
	assert.Equal(t, "string", d.Type)
	assert.Nil(t, d.MinLength)
}

func TestMergeAll_SingleModelUnchanged(t *testing.T) {
	m := Infer(map[string]any{"id": int64(1)})
	assert.Equal(t, m.Doc(), MergeAll([]Model{m}).Doc())
}
