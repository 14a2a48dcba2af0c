package compiler

import (
	"log/slog"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/roach88/dbnav/internal/fca"
	"github.com/roach88/dbnav/internal/schema"
)

// Spec is a compiled navigation spec. Family is nil when the spec has no
// data block.
type Spec struct {
	Model  *schema.Model
	Family *fca.Family
}

// Compile parses a CUE value holding a schema block and an optional data
// block.
func Compile(v cue.Value) (*Spec, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	sv := v.LookupPath(cue.ParsePath("schema"))
	if !sv.Exists() {
		return nil, compileErrorf(v, "schema", "schema is required")
	}
	model, err := CompileSchema(sv)
	if err != nil {
		return nil, err
	}
	spec := &Spec{Model: model}

	if dv := v.LookupPath(cue.ParsePath("data")); dv.Exists() {
		spec.Family, err = CompileData(dv, model)
		if err != nil {
			return nil, err
		}
	}
	slog.Debug("compiled spec", "sorts", len(model.Sorts()), "attributes", len(model.MVAs()), "data", spec.Family != nil)
	return spec, nil
}

// CompileString compiles CUE source text. filename is used in positions.
func CompileString(src, filename string) (*Spec, error) {
	ctx := cuecontext.New()
	v := ctx.CompileString(src, cue.Filename(filename))
	return Compile(v)
}
