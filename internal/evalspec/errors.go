package evalspec

import "errors"

var (
	// ErrInvalidSpec is returned for a spec that cannot drive an evaluation:
	// unknown phone roles, missing trips or legs, ambiguous geometry.
	ErrInvalidSpec = errors.New("invalid evaluation spec")

	// ErrSpecNotFound is returned when no stored spec has the requested id.
	ErrSpecNotFound = errors.New("evaluation spec not found")
)
