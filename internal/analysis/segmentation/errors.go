package segmentation

import (
	"errors"
	"fmt"
)

// ErrCorruptInput marks transition logs that cannot be turned into ranges.
var ErrCorruptInput = errors.New("corrupt input")

// CorruptInputError describes one offending range or device column.
type CorruptInputError struct {
	Op     string // build, link, propagate
	TripID string
	Detail string
}

func (e *CorruptInputError) Error() string {
	if e.TripID == "" {
		return fmt.Sprintf("%s: %s: %s", ErrCorruptInput, e.Op, e.Detail)
	}
	return fmt.Sprintf("%s: %s %s: %s", ErrCorruptInput, e.Op, e.TripID, e.Detail)
}

func (e *CorruptInputError) Unwrap() error {
	return ErrCorruptInput
}

func corrupt(op, tripID, format string, args ...any) error {
	return &CorruptInputError{Op: op, TripID: tripID, Detail: fmt.Sprintf(format, args...)}
}
