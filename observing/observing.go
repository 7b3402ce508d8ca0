// Package observing registers a fixed set of observations as one unit.
//
// A Group is built from declarations and a single callback. AddObservers
// registers every declaration through a registry, StopObserving removes them
// again:
//
//	g := observing.New(reg, v.refresh,
//		observing.Declaration{Object: account, KeyPath: "balance", Policy: dispatch.AsyncOnMainDirectInitial()},
//		observing.Declaration{Object: account, KeyPath: "owner", Policy: dispatch.AsyncOnMainDirectInitial()},
//	)
//	g.AddObservers()
//	defer g.StopObserving()
package observing

import (
	"slices"
	"sync"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/a2y-d5l/go-kvobserver/dispatch"
	"github.com/a2y-d5l/go-kvobserver/kvo"
	"github.com/a2y-d5l/go-kvobserver/observer"
)

// Declaration describes one observation of a Group.
type Declaration struct {
	Object  kvo.Observable
	KeyPath string
	Options kvo.Options
	Policy  dispatch.Policy
}

// Registry is the part of *observer.Registry a Group uses.
type Registry interface {
	Observe(obj kvo.Observable, keyPath string, options kvo.Options, policy dispatch.Policy, handler observer.Handler, opts ...observer.ObserveOption) observer.ID
	StopObservingIDs(ids ...observer.ID)
}

type declKey struct {
	subject *kvo.Subject
	keyPath string
}

// Group owns the observations registered from its declarations.
type Group struct {
	registry Registry
	process  observer.Handler
	decls    []Declaration

	// op serializes AddObservers and StopObserving. It is held while the
	// registry runs initial notifications, so process must not call either.
	op  sync.Mutex
	ids mapset.Set[observer.ID]
}

// New creates a group. Declarations naming the same object and key path are
// kept once; the first one wins.
func New(registry Registry, process observer.Handler, decls ...Declaration) *Group {
	seen := mapset.NewThreadUnsafeSet[declKey]()
	unique := make([]Declaration, 0, len(decls))
	for _, d := range decls {
		if !seen.Add(declKey{kvo.SubjectOf(d.Object), d.KeyPath}) {
			continue
		}
		unique = append(unique, d)
	}

	return &Group{
		registry: registry,
		process:  process,
		decls:    unique,
		ids:      mapset.NewSet[observer.ID](),
	}
}

// Declarations returns the deduplicated declarations.
func (g *Group) Declarations() []Declaration {
	return slices.Clone(g.decls)
}

// AddObservers registers every declaration, routing changes to the group's
// callback. It does nothing while the group already owns observations.
func (g *Group) AddObservers() {
	g.op.Lock()
	defer g.op.Unlock()

	if g.ids.Cardinality() > 0 {
		return
	}
	for _, d := range g.decls {
		g.ids.Add(g.registry.Observe(d.Object, d.KeyPath, d.Options, d.Policy, g.process))
	}
}

// StopObserving stops every owned observation and forgets their IDs.
func (g *Group) StopObserving() {
	g.op.Lock()
	defer g.op.Unlock()

	g.registry.StopObservingIDs(g.ids.ToSlice()...)
	g.ids.Clear()
}

// IDs returns the owned IDs in increasing order.
func (g *Group) IDs() []observer.ID {
	ids := g.ids.ToSlice()
	slices.Sort(ids)
	return ids
}

// Observing reports whether the group currently owns observations.
func (g *Group) Observing() bool {
	return g.ids.Cardinality() > 0
}
