package scale

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/dbnav/internal/ir"
	"github.com/roach88/dbnav/internal/queryir"
)

// Prefix constrains a textual value expression to start with the label.
// The empty label means "is not null".
type Prefix struct{}

func (Prefix) scale() {}

// Kind implements Scale.
func (Prefix) Kind() Kind { return KindPrefix }

// Validate implements Scale.
func (Prefix) Validate(label ir.IRValue) error {
	if _, ok := label.(ir.IRString); !ok {
		return malformed(KindPrefix, label, "expected a string")
	}
	return nil
}

// Pattern implements Scale.
func (p Prefix) Pattern(label ir.IRValue) (queryir.Predicate, error) {
	if err := p.Validate(label); err != nil {
		return nil, err
	}
	if label.(ir.IRString) == "" {
		return queryir.IsNotNull{}, nil
	}
	return queryir.HasPrefix{Prefix: string(label.(ir.IRString))}, nil
}

// Stats implements Scale: a value frequency table sorted by value. NULLs are
// counted but not tabulated.
func (Prefix) Stats(values []any) Stats {
	counts := make(map[string]int)
	for _, v := range values {
		if v == nil {
			continue
		}
		counts[text(v)]++
	}

	freq := make([]Frequency, 0, len(counts))
	for value, n := range counts {
		freq = append(freq, Frequency{Value: value, Count: n})
	}
	slices.SortFunc(freq, func(a, b Frequency) int { return cmp.Compare(a.Value, b.Value) })

	return Stats{Count: len(values), Freq: freq}
}

// Top implements Scale.
func (Prefix) Top() ir.IRValue { return ir.IRString("") }

// Merge implements Scale: the longest common prefix.
func (p Prefix) Merge(x, y ir.IRValue) (ir.IRValue, error) {
	if err := p.Validate(x); err != nil {
		return nil, err
	}
	if err := p.Validate(y); err != nil {
		return nil, err
	}
	a, b := []rune(string(x.(ir.IRString))), []rune(string(y.(ir.IRString)))
	n := 0
	for n < len(a) && n < len(b) && a[n] == b[n] {
		n++
	}
	return ir.IRString(string(a[:n])), nil
}

// Admits implements Scale. Letters compare case-insensitively in the ASCII
// range, as LIKE does in SQLite and under MySQL's default collations.
func (p Prefix) Admits(general, specific ir.IRValue) (bool, error) {
	if err := p.Validate(general); err != nil {
		return false, err
	}
	s, ok := specific.(ir.IRString)
	if !ok {
		return false, nil
	}
	return strings.HasPrefix(foldASCII(string(s)), foldASCII(string(general.(ir.IRString)))), nil
}

// Cell implements Scale: values are text.
func (Prefix) Cell(value any) any {
	if value == nil {
		return nil
	}
	return text(value)
}

// foldASCII lower-cases A-Z and leaves every other byte alone.
func foldASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if 'A' <= c && c <= 'Z' {
			b[i] = c + 'a' - 'A'
		}
	}
	return string(b)
}

// Record implements Scale.
func (Prefix) Record() ir.IRObject {
	return ir.Tag(classPrefix, ir.IRObject{})
}

func text(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case []byte:
		return string(val)
	default:
		return fmt.Sprint(val)
	}
}
