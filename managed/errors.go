package managed

import "errors"

// Lifecycle errors
var (
	ErrAlreadyInserted = errors.New("object already belongs to a context")
	ErrNotInserted     = errors.New("object does not belong to this context")
	ErrContextClosed   = errors.New("context is closed")
)
