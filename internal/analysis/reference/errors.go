package reference

import "errors"

var (
	// ErrDegenerateTrace is returned for a trace that cannot be resampled.
	ErrDegenerateTrace = errors.New("degenerate location trace")

	// ErrDegenerateRoute is returned for a ground truth route with fewer
	// than two coordinates.
	ErrDegenerateRoute = errors.New("degenerate ground truth route")

	// ErrEmptyCandidate is returned by a strategy that kept no points.
	ErrEmptyCandidate = errors.New("strategy produced no points")

	// ErrNoReference is returned when every strategy failed.
	ErrNoReference = errors.New("no usable reference trajectory")
)
