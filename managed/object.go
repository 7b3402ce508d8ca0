package managed

import (
	"sync/atomic"

	"github.com/a2y-d5l/go-kvobserver/dispatch"
	"github.com/a2y-d5l/go-kvobserver/kvo"
)

// Object is embedded by managed entities.
type Object struct {
	kvo.Subject

	ctx     atomic.Pointer[Context]
	deleted atomic.Bool
}

// Entity is any type embedding Object.
type Entity interface {
	kvo.Observable
	ManagedContext() dispatch.Transactional
	managedObject() *Object
}

// AwakeFromInserter is implemented by entities that act on insertion.
type AwakeFromInserter interface {
	AwakeFromInsert()
}

// WillTurnIntoFaulter is implemented by entities that act before leaving
// their context.
type WillTurnIntoFaulter interface {
	WillTurnIntoFault()
}

func (o *Object) managedObject() *Object { return o }

// ManagedContext returns the owning context, or nil when the object is not
// inserted.
func (o *Object) ManagedContext() dispatch.Transactional {
	if c := o.ctx.Load(); c != nil {
		return c
	}
	return nil
}

// Context returns the owning context, or nil.
func (o *Object) Context() *Context { return o.ctx.Load() }

// IsDeleted reports whether the object was deleted from its context.
func (o *Object) IsDeleted() bool { return o.deleted.Load() }
