package observer

import "errors"

// Registry misuse errors, carried by panics.
var (
	ErrUnknownID          = errors.New("unknown observing id")
	ErrNoInferredContext  = errors.New("observed object has no managed context")
	ErrInvalidObservation = errors.New("invalid observation")
	ErrRegistryClosed     = errors.New("registry is closed")
)
