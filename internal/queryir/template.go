package queryir

import (
	"fmt"
	"strings"

	"github.com/roach88/dbnav/internal/ir"
)

// Template renders p with literal values and the {0} placeholder, the
// display form of a scale pattern:
//
//	Template(Between{Low: ir.IRString("1990-01-01"), High: ir.IRString("1999-12-31")})
//	// {0} BETWEEN '1990-01-01' AND '1999-12-31'
//
// Template never produces executable SQL; backends bind values as
// parameters instead.
func Template(p Predicate) string {
	switch pred := p.(type) {
	case IsNotNull:
		return Placeholder + " IS NOT NULL"
	case EqualsOne:
		return Placeholder + " = 1"
	case HasPrefix:
		return fmt.Sprintf("%s LIKE %s", Placeholder, quote(pred.Prefix+"%"))
	case Between:
		return fmt.Sprintf("%s BETWEEN %s AND %s", Placeholder, literal(pred.Low), literal(pred.High))
	case And:
		if len(pred.Predicates) == 0 {
			return "1 = 1"
		}
		parts := make([]string, len(pred.Predicates))
		for i, sub := range pred.Predicates {
			parts[i] = Template(sub)
			if _, nested := sub.(And); nested && len(pred.Predicates) > 1 {
				parts[i] = "(" + parts[i] + ")"
			}
		}
		return strings.Join(parts, " AND ")
	default:
		return fmt.Sprintf("<unknown predicate %T>", p)
	}
}

// Instantiate replaces every placeholder in a template with expr.
func Instantiate(template, expr string) string {
	return strings.ReplaceAll(template, Placeholder, expr)
}

func literal(v ir.IRValue) string {
	switch val := v.(type) {
	case ir.IRString:
		return quote(string(val))
	case ir.IRInt:
		return fmt.Sprintf("%d", int64(val))
	case ir.IRBool:
		if val {
			return "1"
		}
		return "0"
	default:
		return ir.Format(v)
	}
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
