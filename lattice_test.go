package fieldscope

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want ValueType
	}{
		{"nil", nil, TypeNull},
		{"bool", true, TypeBoolean},
		{"string", "venue", TypeString},
		{"number int", json.Number("10"), TypeInteger},
		{"number negative int", json.Number("-3"), TypeInteger},
		{"number float", json.Number("3.5"), TypeFloat},
		{"number exponent", json.Number("1.2e9"), TypeFloat},
		{"float64", 3.5, TypeFloat},
		{"int", 7, TypeInteger},
		{"object", map[string]any{}, TypeObject},
		{"array", []any{}, TypeArray},
		{"unsupported", struct{}{}, TypeMixed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.in))
		})
	}
}

var allTypes = []ValueType{
	TypeNull, TypeBoolean, TypeInteger, TypeFloat,
	TypeString, TypeObject, TypeArray, TypeMixed,
}

func TestMergeTypes_Idempotent(t *testing.T) {
	for _, x := range allTypes {
		assert.Equal(t, x, MergeTypes(x, x), "merge(%s, %s)", x, x)
	}
}

func TestMergeTypes_Commutative(t *testing.T) {
	for _, a := range allTypes {
		for _, b := range allTypes {
			assert.Equal(t, MergeTypes(a, b), MergeTypes(b, a), "merge(%s, %s)", a, b)
		}
	}
}

func TestMergeTypes_Associative(t *testing.T) {
	for _, a := range allTypes {
		for _, b := range allTypes {
			for _, c := range allTypes {
				left := MergeTypes(MergeTypes(a, b), c)
				right := MergeTypes(a, MergeTypes(b, c))
				assert.Equal(t, left, right, "merge order changed result for (%s, %s, %s)", a, b, c)
			}
		}
	}
}

func TestMergeTypes_NullIsBottom(t *testing.T) {
	for _, x := range allTypes {
		assert.Equal(t, x, MergeTypes(TypeNull, x))
		assert.Equal(t, x, MergeTypes(x, TypeNull))
	}
}

func TestMergeTypes_MixedIsTop(t *testing.T) {
	for _, x := range allTypes {
		assert.Equal(t, TypeMixed, MergeTypes(TypeMixed, x))
	}
}

func TestMergeTypes_DistinctConcretePairsWiden(t *testing.T) {
	assert.Equal(t, TypeMixed, MergeTypes(TypeInteger, TypeString))
	assert.Equal(t, TypeMixed, MergeTypes(TypeInteger, TypeFloat))
	assert.Equal(t, TypeMixed, MergeTypes(TypeObject, TypeArray))
	assert.Equal(t, TypeMixed, MergeTypes(TypeBoolean, TypeString))
}
