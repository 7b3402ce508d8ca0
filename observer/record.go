package observer

import (
	"sync/atomic"
	"unsafe"
	"weak"

	"github.com/a2y-d5l/go-kvobserver/dispatch"
	"github.com/a2y-d5l/go-kvobserver/kvo"
)

// ID identifies an observation within its registry. IDs start at 1 and are
// never reused.
type ID int

// Handler receives the change description of a notification.
type Handler func(change *kvo.Change)

// Managed is an observable object owned by a transactional context.
type Managed interface {
	kvo.Observable
	ManagedContext() dispatch.Transactional
}

// objectRef is how a record refers to its observed object. It is either a
// weakRef or a rawRef.
type objectRef interface {
	// identity returns the address used for equality, if resolvable.
	identity() (uintptr, bool)
	// deregister removes the registration, reporting false when the object
	// could not be reached.
	deregister(o kvo.Observer, keyPath string, token kvo.Token) bool
	mode() string
}

type weakRef struct {
	p weak.Pointer[kvo.Subject]
}

func (r weakRef) identity() (uintptr, bool) {
	s := r.p.Value()
	if s == nil {
		return 0, false
	}
	return uintptr(unsafe.Pointer(s)), true
}

func (r weakRef) deregister(o kvo.Observer, keyPath string, token kvo.Token) bool {
	s := r.p.Value()
	if s == nil {
		return false
	}
	s.RemoveObserver(o, keyPath, token)
	return true
}

func (weakRef) mode() string { return "weak" }

type rawRef struct {
	h kvo.Handle
}

func (r rawRef) identity() (uintptr, bool) { return r.h.Addr(), true }

func (r rawRef) deregister(o kvo.Observer, keyPath string, token kvo.Token) bool {
	r.h.RemoveObserver(o, keyPath, token)
	return true
}

func (rawRef) mode() string { return "raw" }

type record struct {
	id       atomic.Int64
	token    kvo.Token
	keyPath  string
	ref      objectRef
	policy   dispatch.Policy
	inferred dispatch.Transactional
	handler  Handler

	initialPending atomic.Bool
}

// equal reports whether r and o observe the same key path on the same live
// object. Records whose object cannot be resolved equal nothing.
func (r *record) equal(o *record) bool {
	if r.keyPath != o.keyPath {
		return false
	}
	a, ok := r.ref.identity()
	if !ok {
		return false
	}
	b, ok := o.ref.identity()
	if !ok {
		return false
	}
	return a == b
}
