package kvobserver

import (
	"github.com/a2y-d5l/go-kvobserver/dispatch"
	"github.com/a2y-d5l/go-kvobserver/observer"
)

// Misuse errors carried by panics. Test a recovered value with errors.Is.
var (
	ErrUnknownID          = observer.ErrUnknownID
	ErrNoInferredContext  = observer.ErrNoInferredContext
	ErrInvalidObservation = observer.ErrInvalidObservation
	ErrRegistryClosed     = observer.ErrRegistryClosed
	ErrNilTarget          = dispatch.ErrNilTarget
)
