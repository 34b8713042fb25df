package lifecycle

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidAction is matched by every *InvalidActionError.
	ErrInvalidAction = errors.New("invalid action")
	// ErrUnreachable is wrapped when a source fails its availability probe.
	ErrUnreachable = errors.New("source unreachable")
	ErrUnknownSource = errors.New("unknown source")
	ErrClosed        = errors.New("manager closed")
	errNoItem        = errors.New("no source given")
)

// InvalidActionError rejects an action whose preconditions do not hold.
// No state changed when it is returned.
type InvalidActionError struct {
	Action string
	Key    Key
	Err    error
}

func (e *InvalidActionError) Error() string {
	if e.Key.SourceID == "" {
		return fmt.Sprintf("%s: %v", e.Action, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Action, e.Key, e.Err)
}

func (e *InvalidActionError) Unwrap() error {
	return e.Err
}

func (e *InvalidActionError) Is(target error) bool {
	return target == ErrInvalidAction
}

// Fault is an internal failure of a retrieval. It moves the retrieval to Error.
type Fault struct {
	Key     Key
	Message string
	// Recovered is the value of a recovered panic, if any.
	Recovered any
}

func (f *Fault) Error() string {
	return fmt.Sprintf("%s: %s", f.Key, f.Message)
}
