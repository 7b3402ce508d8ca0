package dispatch

import "errors"

// Policy errors
var (
	ErrNilTarget   = errors.New("dispatch target is nil")
	ErrUnknownKind = errors.New("unknown dispatch kind")
	ErrNoInferred  = errors.New("policy infers a managed context but none was supplied")
)
