package queryir

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/dbnav/internal/ir"
)

func TestTemplate(t *testing.T) {
	tests := []struct {
		name     string
		pred     Predicate
		expected string
	}{
		{"not null", IsNotNull{}, "{0} IS NOT NULL"},
		{"equals one", EqualsOne{}, "{0} = 1"},
		{"prefix", HasPrefix{Prefix: "Tol"}, "{0} LIKE 'Tol%'"},
		{"prefix with quote", HasPrefix{Prefix: "O'Br"}, "{0} LIKE 'O''Br%'"},
		{
			"date range",
			Between{Low: ir.IRString("1990-01-01"), High: ir.IRString("1999-12-31")},
			"{0} BETWEEN '1990-01-01' AND '1999-12-31'",
		},
		{"int range", Between{Low: ir.IRInt(3), High: ir.IRInt(7)}, "{0} BETWEEN 3 AND 7"},
		{"empty and", And{}, "1 = 1"},
		{
			"conjunction",
			And{Predicates: []Predicate{IsNotNull{}, HasPrefix{Prefix: "A"}}},
			"{0} IS NOT NULL AND {0} LIKE 'A%'",
		},
		{
			"nested conjunction",
			And{Predicates: []Predicate{EqualsOne{}, And{Predicates: []Predicate{IsNotNull{}, EqualsOne{}}}}},
			"{0} = 1 AND ({0} IS NOT NULL AND {0} = 1)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Template(tt.pred))
		})
	}
}

func TestInstantiate(t *testing.T) {
	tmpl := Template(HasPrefix{Prefix: "Tol"})
	assert.Equal(t, "x1.name LIKE 'Tol%'", Instantiate(tmpl, "x1.name"))
}
