package scale

import (
	"slices"
	"strings"
)

// KindsFor returns the scale kinds admissible for a column data type, as
// reported by information_schema (MySQL) or declared in a CUE spec.
// Unknown and numeric types admit no scale.
func KindsFor(datatype string) []Kind {
	dt := strings.ToLower(strings.TrimSpace(datatype))
	if i := strings.IndexByte(dt, '('); i >= 0 && dt != "tinyint(1)" {
		dt = dt[:i]
	}
	switch dt {
	case "char", "varchar", "text", "tinytext", "mediumtext", "longtext", "enum", "string":
		return []Kind{KindPrefix}
	case "date", "datetime", "timestamp", "year":
		return []Kind{KindDateInterval}
	case "bool", "boolean", "bit", "tinyint(1)":
		return []Kind{KindBoolean}
	default:
		return nil
	}
}

// Admissible reports whether a scale of the given kind may be attached to a
// value of the given data type.
func Admissible(datatype string, kind Kind) bool {
	return slices.Contains(KindsFor(datatype), kind)
}
