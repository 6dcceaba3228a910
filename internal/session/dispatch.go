package session

import (
	"fmt"

	"github.com/roach88/ashpad/internal/field"
)

// dispatch validates the selection and runs the pipeline instantiated for the
// selected field. An incompatible pair fails before the compiler is touched.
func dispatch(p *pipeline, req request) Result {
	p.enter(req.run, StateIdle)
	if err := Validate(req.sel.Target, req.sel.Field); err != nil {
		return p.fail(req, StageCompatibility, err.Error())
	}

	switch req.sel.Field {
	case field.KindOxfoi:
		return compile[field.Foi](p, req)
	case field.KindCurve25519:
		return compile[field.Curve25519](p, req)
	case field.KindAltBn128:
		return compile[field.Bn128](p, req)
	}
	return p.fail(req, StageConfiguration, fmt.Sprintf("unsupported field %q", req.sel.Field))
}
