package schema

// Kind is the closed set of JSON value kinds a Model can describe.
type Kind uint8

const (
	KindNull Kind = iota
	KindBoolean
	KindInteger
	KindNumber
	KindString
	KindArray
	KindObject
)

var kindNames = [...]string{
	KindNull:    "null",
	KindBoolean: "boolean",
	KindInteger: "integer",
	KindNumber:  "number",
	KindString:  "string",
	KindArray:   "array",
	KindObject:  "object",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// kindPrecedence breaks frequency ties when merged observations disagree
// on a field's kind. Structured kinds outrank primitives so observed
// structure survives the election.
var kindPrecedence = [...]Kind{
	KindObject,
	KindArray,
	KindString,
	KindNumber,
	KindInteger,
	KindBoolean,
}
