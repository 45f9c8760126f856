package immergo

import "fmt"

// ErrIndexOutOfRange is returned by vector operations given an index at or
// beyond the end of the vector. Indexes are never clamped or wrapped.
type ErrIndexOutOfRange struct {
	Index int
	Count int
}

func (e ErrIndexOutOfRange) Error() string {
	return fmt.Sprintf("index %d out of range for vector of length %d", e.Index, e.Count)
}

// ErrTypeMismatch is returned when an operation is given a host value of the
// wrong shape, e.g. a factory expecting an array handed a scalar.
type ErrTypeMismatch struct {
	Op   string
	Want string
	Got  any
}

func (e ErrTypeMismatch) Error() string {
	return fmt.Sprintf("%s: want %s, got %T", e.Op, e.Want, e.Got)
}

// ErrUseAfterFreeze is returned when a transient is used after its
// Persistent call.
type ErrUseAfterFreeze struct {
	Op string
}

func (e ErrUseAfterFreeze) Error() string {
	return fmt.Sprintf("%s: transient used after freeze", e.Op)
}

// ErrInvalidArgument is returned when a required operand is missing.
type ErrInvalidArgument struct {
	Op  string
	Msg string
}

func (e ErrInvalidArgument) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Msg)
}
