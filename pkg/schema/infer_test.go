package schema

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInfer_Kinds(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  Kind
	}{
		{"nil is null", nil, KindNull},
		{"bool", true, KindBoolean},
		{"int", 42, KindInteger},
		{"int64", int64(42), KindInteger},
		{"uint64", uint64(42), KindInteger},
		{"float with no fraction", float64(42), KindInteger},
		{"float with fraction", 42.5, KindNumber},
		{"json number integer", json.Number("7"), KindInteger},
		{"json number decimal", json.Number("7.5"), KindNumber},
		{"string", "hello", KindString},
		{"array", []any{int64(1), int64(2)}, KindArray},
		{"object", map[string]any{"a": int64(1)}, KindObject},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Infer(tt.value).Kind())
		})
	}
}

func TestInfer_NumericBounds(t *testing.T) {
	d := Infer(42.5).Doc()

	require.NotNil(t, d.Minimum)
	require.NotNil(t, d.Maximum)
	assert.Equal(t, 42.5, *d.Minimum)
	assert.Equal(t, 42.5, *d.Maximum)
}

func TestInfer_StringConstraints(t *testing.T) {
	d := Infer("hello").Doc()

	require.NotNil(t, d.MinLength)
	require.NotNil(t, d.MaxLength)
	assert.Equal(t, 5, *d.MinLength)
	assert.Equal(t, 5, *d.MaxLength)
	assert.Equal(t, []any{"hello"}, d.Examples)
}

func TestInfer_LongStringExampleTruncated(t *testing.T) {
	long := strings.Repeat("x", 150)
	d := Infer(long).Doc()

	require.Len(t, d.Examples, 1)
	example, ok := d.Examples[0].(string)
	require.True(t, ok)
	assert.Len(t, example, 103)
	assert.True(t, strings.HasSuffix(example, "..."))

	// Constraints still reflect the full value.
	require.NotNil(t, d.MinLength)
	assert.Equal(t, 150, *d.MinLength)
}

func TestInfer_StringFormats(t *testing.T) {
	tests := []struct {
		value string
		want  Format
	}{
		{"a1b2c3d4-e5f6-7890-abcd-ef1234567890", FormatUUID},
		{"user@example.com", FormatEmail},
		{"2025-01-15T10:30:00Z", FormatDateTime},
		{"2025-01-15", FormatDate},
		{"https://example.com/x", FormatURI},
		{"10.0.0.1", FormatIPv4},
		{"db.internal.example.com", FormatHostname},
		{"just text", FormatNone},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			assert.Equal(t, tt.want, Infer(tt.value).Format())
		})
	}
}

func TestInfer_FormatDetectionDisabled(t *testing.T) {
	inf := NewInferrer()
	inf.DetectFormats = false

	assert.Equal(t, FormatNone, inf.Infer("user@example.com").Format())
}

func TestInfer_EmptyArrayGetsPlaceholderItems(t *testing.T) {
	d := Infer([]any{}).Doc()

	require.NotNil(t, d.Items)
	assert.Equal(t, "string", d.Items.Type)
	assert.Nil(t, d.Items.MinLength)
	assert.Nil(t, d.Items.MaxLength)
}

func TestInfer_ArrayMergesElementSchemas(t *testing.T) {
	d := Infer([]any{"alpha", "be"}).Doc()

	require.NotNil(t, d.Items)
	assert.Equal(t, "string", d.Items.Type)
	require.NotNil(t, d.Items.MinLength)
	require.NotNil(t, d.Items.MaxLength)
	assert.Equal(t, 2, *d.Items.MinLength)
	assert.Equal(t, 5, *d.Items.MaxLength)
}

func TestInfer_ArrayWidensMixedNumbers(t *testing.T) {
	d := Infer([]any{int64(1), 2.5}).Doc()

	require.NotNil(t, d.Items)
	assert.Equal(t, "number", d.Items.Type)
	require.NotNil(t, d.Items.Minimum)
	require.NotNil(t, d.Items.Maximum)
	assert.Equal(t, 1.0, *d.Items.Minimum)
	assert.Equal(t, 2.5, *d.Items.Maximum)
}

func TestInfer_ArrayRespectsMaxItems(t *testing.T) {
	inf := NewInferrer()
	inf.MaxArrayItems = 2

	d := inf.Infer([]any{"a", "b", "cccccc"}).Doc()

	require.NotNil(t, d.Items)
	require.NotNil(t, d.Items.MaxLength)
	assert.Equal(t, 1, *d.Items.MaxLength, "third element should not be analyzed")
}

func TestInfer_ObjectMarksPresentKeysRequired(t *testing.T) {
	d := Infer(map[string]any{"id": int64(1), "name": "x"}).Doc()

	assert.Equal(t, "object", d.Type)
	assert.Len(t, d.Properties, 2)
	assert.Equal(t, []string{"id", "name"}, d.Required)
	require.NotNil(t, d.AdditionalProperties)
	assert.True(t, *d.AdditionalProperties)
}

func TestInfer_NestedStructures(t *testing.T) {
	value := map[string]any{
		"user": map[string]any{
			"email": "admin@example.com",
		},
		"roles": []any{"reader", "writer"},
	}
	d := Infer(value).Doc()

	user := d.Properties["user"]
	require.NotNil(t, user)
	require.NotNil(t, user.Properties["email"])
	assert.Equal(t, "email", user.Properties["email"].Format)

	roles := d.Properties["roles"]
	require.NotNil(t, roles)
	require.NotNil(t, roles.Items)
	assert.Equal(t, "string", roles.Items.Type)
}

func TestInfer_OpaqueValueDegradesToString(t *testing.T) {
	type opaque struct{ N int }
	m := Infer(opaque{N: 7})

	assert.Equal(t, KindString, m.Kind())
	d := m.Doc()
	require.Len(t, d.Examples, 1)
	assert.Equal(t, fmt.Sprint(opaque{N: 7}), d.Examples[0])
}

func TestInfer_TrackEnumsRecordsValues(t *testing.T) {
	inf := NewInferrer()
	inf.TrackEnums = true

	m := Merge(inf.Infer("ACTIVE"), inf.Infer("FAILED"))
	d := m.Doc()

	assert.Equal(t, []any{"ACTIVE", "FAILED"}, d.Enum)
}

func TestInfer_EnumsOffByDefault(t *testing.T) {
	m := Merge(Infer("ACTIVE"), Infer("FAILED"))
	assert.Nil(t, m.Doc().Enum)
}
