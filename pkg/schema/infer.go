package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"unicode/utf8"
)

const (
	defaultMaxArrayItems = 10
	defaultEnumLimit     = 10

	// maxExampleRunes bounds retained string examples; longer values are
	// truncated with an ellipsis.
	maxExampleRunes = 100
)

// Inferrer controls how raw values are classified into Models. The zero
// value works but detects nothing extra; NewInferrer returns the usual
// settings.
type Inferrer struct {
	// MaxArrayItems bounds how many array elements are individually
	// inferred before being reduced into the items schema. Zero means
	// the default of 10.
	MaxArrayItems int

	// DetectFormats enables format tagging for string values.
	DetectFormats bool

	// TrackEnums records observed primitive values as enum candidates.
	// The recorded set is dropped at serialization once its size
	// exceeds EnumLimit.
	TrackEnums bool

	// EnumLimit is the largest enum candidate set worth reporting.
	// Zero means the default of 10.
	EnumLimit int
}

// NewInferrer returns an Inferrer with format detection on, enum
// tracking off, and default bounds.
func NewInferrer() *Inferrer {
	return &Inferrer{
		MaxArrayItems: defaultMaxArrayItems,
		DetectFormats: true,
		EnumLimit:     defaultEnumLimit,
	}
}

var defaultInferrer = NewInferrer()

// Infer classifies v with the default inferrer settings.
func Infer(v any) Model {
	return defaultInferrer.Infer(v)
}

// Infer classifies one decoded JSON value into a Model. It never fails:
// values outside the known JSON shapes degrade to a string schema of
// their printed form.
func (inf *Inferrer) Infer(value any) Model {
	switch v := value.(type) {
	case nil:
		return Model{kind: KindNull, kindCounts: map[Kind]int64{KindNull: 1}}
	case bool:
		return inf.primitive(KindBoolean, v)
	case string:
		return inf.inferString(v)
	case int:
		return inf.inferNumeric(float64(v), v, true)
	case int32:
		return inf.inferNumeric(float64(v), v, true)
	case int64:
		return inf.inferNumeric(float64(v), v, true)
	case uint:
		return inf.inferNumeric(float64(v), v, true)
	case uint32:
		return inf.inferNumeric(float64(v), v, true)
	case uint64:
		return inf.inferNumeric(float64(v), v, true)
	case float32:
		return inf.inferNumeric(float64(v), v, isIntegral(float64(v)))
	case float64:
		return inf.inferNumeric(v, v, isIntegral(v))
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return inf.inferNumeric(float64(i), i, true)
		}
		if f, err := v.Float64(); err == nil {
			return inf.inferNumeric(f, f, isIntegral(f))
		}
		return inf.inferString(v.String())
	case []any:
		return inf.inferArray(v)
	case map[string]any:
		return inf.inferObject(v)
	default:
		return inf.inferString(fmt.Sprint(value))
	}
}

// isIntegral reports whether f carries no fractional part; such numbers
// are classified integer.
func isIntegral(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0) && math.Trunc(f) == f
}

func (inf *Inferrer) primitive(k Kind, v any) Model {
	m := Model{
		kind:       k,
		kindCounts: map[Kind]int64{k: 1},
		enumLimit:  inf.enumLimit(),
	}
	m.examples = m.examples.with(v)
	if inf.TrackEnums {
		m.enum = m.enum.with(v)
	}
	return m
}

func (inf *Inferrer) inferNumeric(f float64, raw any, integral bool) Model {
	k := KindNumber
	if integral {
		k = KindInteger
	}
	m := inf.primitive(k, raw)
	m.minimum = floatPtr(f)
	m.maximum = floatPtr(f)
	return m
}

func (inf *Inferrer) inferString(s string) Model {
	m := Model{
		kind:       KindString,
		kindCounts: map[Kind]int64{KindString: 1},
		enumLimit:  inf.enumLimit(),
	}

	n := utf8.RuneCountInString(s)
	m.minLength = intPtr(n)
	m.maxLength = intPtr(n)

	example := s
	if n >= maxExampleRunes {
		example = string([]rune(s)[:maxExampleRunes]) + "..."
	}
	m.examples = m.examples.with(example)

	if inf.TrackEnums {
		m.enum = m.enum.with(s)
	}
	if inf.DetectFormats {
		if f := DetectFormat(s); f != FormatNone {
			m.format = f
			m.formatCounts = map[Format]int64{f: 1}
		}
	}
	return m
}

func (inf *Inferrer) inferArray(vals []any) Model {
	m := Model{
		kind:       KindArray,
		kindCounts: map[Kind]int64{KindArray: 1},
	}

	if len(vals) == 0 {
		placeholder := stringPlaceholder()
		m.items = &placeholder
		return m
	}

	limit := inf.maxArrayItems()
	if len(vals) > limit {
		vals = vals[:limit]
	}
	models := make([]Model, 0, len(vals))
	for _, v := range vals {
		models = append(models, inf.Infer(v))
	}
	items := MergeAll(models)
	m.items = &items
	return m
}

func (inf *Inferrer) inferObject(fields map[string]any) Model {
	m := Model{
		kind:       KindObject,
		kindCounts: map[Kind]int64{KindObject: 1},
	}

	props := make(map[string]Model, len(fields))
	for name, v := range fields {
		p := inf.Infer(v)
		// Present in this sample, so required until a merge with a
		// sample that lacks it demotes it.
		p.required = true
		props[name] = p
	}
	m.properties = props
	return m
}

func (inf *Inferrer) maxArrayItems() int {
	if inf.MaxArrayItems > 0 {
		return inf.MaxArrayItems
	}
	return defaultMaxArrayItems
}

func (inf *Inferrer) enumLimit() int {
	if inf.EnumLimit > 0 {
		return inf.EnumLimit
	}
	return defaultEnumLimit
}

func intPtr(n int) *int           { return &n }
func floatPtr(f float64) *float64 { return &f }
func boolPtr(b bool) *bool        { return &b }
