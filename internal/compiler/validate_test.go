package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateLiteratureClean(t *testing.T) {
	spec := compileLiterature(t)
	assert.Empty(t, Validate(spec))
}

func TestValidateFindings(t *testing.T) {
	spec, err := CompileString(`
schema: {
	sorts: {
		Author: print: "name"
		Book: print:   "{0}.title"
	}
	attributes: {
		bio: {sort: "Author", datatype: "text"}
		cites: {sorts: ["Book", "Book"], datatype: "bool", scale: "boolean"}
	}
}
data: objects: tolkien: sort: "Author"
`, "findings.cue")
	require.NoError(t, err)

	codes := make(map[string]string)
	for _, e := range Validate(spec) {
		codes[e.Field] = e.Code
	}
	assert.Equal(t, map[string]string{
		"sorts.Author.print":    ErrPrintNoPlaceholder,
		"attributes.bio.scale":  ErrUnscaledAttribute,
		"attributes.cites.expr": ErrNoExpression,
		"data.objects":          ErrEmptySort,
	}, codes)
}

func TestValidationErrorFormat(t *testing.T) {
	e := ValidationError{Field: "sorts.A.print", Message: "bad", Code: ErrPrintNoPlaceholder}
	assert.Equal(t, "[E101] sorts.A.print: bad", e.Error())

	e.Line = 4
	assert.Equal(t, "[E101] line 4: sorts.A.print: bad", e.Error())
}
