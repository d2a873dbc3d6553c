package fieldscope

import "encoding/json"

// ValueType is the inferred type of the values observed at a path.
//
// The types form a lattice: TypeNull is the bottom and is absorbed into any
// concrete type, TypeMixed is the top and is permanent once reached. This
// models stream data where the same field legitimately appears as a number
// in one message and as null in the next.
type ValueType string

const (
	TypeNull    ValueType = "null"
	TypeBoolean ValueType = "boolean"
	TypeInteger ValueType = "integer"
	TypeFloat   ValueType = "float"
	TypeString  ValueType = "string"
	TypeObject  ValueType = "object"
	TypeArray   ValueType = "array"
	TypeMixed   ValueType = "mixed"
)

// Classify maps a decoded JSON value to its ValueType. It is pure and total:
// values outside the decoded-JSON vocabulary classify as TypeMixed rather
// than failing.
//
// json.Number is the canonical number carrier (the NDJSON reader decodes
// with UseNumber); a number that parses as int64 is an integer, anything
// else is a float. Plain float64 values from a default json.Unmarshal are
// classified as float; callers who need the integer/float split must
// decode with UseNumber.
func Classify(v any) ValueType {
	switch x := v.(type) {
	case nil:
		return TypeNull
	case bool:
		return TypeBoolean
	case string:
		return TypeString
	case json.Number:
		if _, err := x.Int64(); err == nil {
			return TypeInteger
		}
		return TypeFloat
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return TypeInteger
	case float32, float64:
		return TypeFloat
	case map[string]any:
		return TypeObject
	case []any:
		return TypeArray
	default:
		return TypeMixed
	}
}

// MergeTypes widens two observed types into one. The operation is
// commutative, associative and idempotent:
//
//	MergeTypes(x, x) == x
//	MergeTypes(TypeNull, t) == t
//	MergeTypes(TypeMixed, t) == TypeMixed
//
// Any other distinct pair widens to TypeMixed. Widening is monotonic: a
// path that has reached TypeMixed never narrows again.
func MergeTypes(a, b ValueType) ValueType {
	if a == b {
		return a
	}
	if a == TypeNull {
		return b
	}
	if b == TypeNull {
		return a
	}
	return TypeMixed
}
