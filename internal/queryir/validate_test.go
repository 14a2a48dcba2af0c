package queryir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/dbnav/internal/ir"
)

func TestValidate_WellFormed(t *testing.T) {
	preds := []Predicate{
		IsNotNull{},
		EqualsOne{},
		HasPrefix{Prefix: "x"},
		Between{Low: ir.IRString("1800-01-01"), High: ir.IRString("2000-12-31")},
		And{},
		And{Predicates: []Predicate{IsNotNull{}, Between{Low: ir.IRInt(1), High: ir.IRInt(1)}}},
	}

	for _, p := range preds {
		result := Validate(p)
		assert.True(t, result.Valid, "%T should be valid", p)
		assert.Empty(t, result.Problems)
	}
}

func TestValidate_EmptyPrefix(t *testing.T) {
	result := Validate(HasPrefix{})

	assert.False(t, result.Valid)
	require.Len(t, result.Problems, 1)
	assert.Contains(t, result.Problems[0], "IsNotNull")
}

func TestValidate_BetweenBounds(t *testing.T) {
	tests := []struct {
		name    string
		pred    Between
		problem string
	}{
		{"null low", Between{Low: ir.IRNull{}, High: ir.IRInt(1)}, "NULL"},
		{"missing high", Between{Low: ir.IRInt(1)}, "NULL"},
		{"mixed types", Between{Low: ir.IRInt(1), High: ir.IRString("2")}, "different types"},
		{"reversed ints", Between{Low: ir.IRInt(9), High: ir.IRInt(1)}, "reversed"},
		{"reversed dates", Between{Low: ir.IRString("2000-01-01"), High: ir.IRString("1990-01-01")}, "reversed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Validate(tt.pred)
			assert.False(t, result.Valid)
			require.Len(t, result.Problems, 1)
			assert.Contains(t, result.Problems[0], tt.problem)
		})
	}
}

func TestValidate_NestedProblemsAccumulate(t *testing.T) {
	result := Validate(And{Predicates: []Predicate{nil, HasPrefix{}, IsNotNull{}}})

	assert.False(t, result.Valid)
	assert.Len(t, result.Problems, 2)
}

func TestValidate_Nil(t *testing.T) {
	result := Validate(nil)
	assert.False(t, result.Valid)
}
