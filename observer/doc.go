// Package observer tracks key-value observations by identifier and routes
// their notifications.
//
// A Registry registers observations on kvo.Observable values and hands back
// an ID. Notifications are routed according to the dispatch.Policy given at
// registration:
//
//	reg := observer.New(observer.WithName("profile-view"))
//	defer reg.Close()
//
//	id := reg.Observe(account, "balance", kvo.OptionInitial,
//		dispatch.AsyncOnMainDirectInitial(),
//		func(change *kvo.Change) { render(change.New) },
//	)
//	...
//	reg.StopObserving(id)
//
// # Storage
//
// A registration never keeps the observed object alive. By default the
// object is held through a weak pointer, so once it is collected its
// registrations can only be dropped from the table. Objects implementing
// Managed are held by raw handle instead: the handle keeps the object's
// observer table reachable, so deregistration still happens after the
// object itself is gone. StoreAsPointer overrides the choice.
//
// # Misuse
//
// Stopping an unknown ID, observing with an inferred managed context on an
// object that has none, invalid arguments and observing on a closed registry
// panic. The panic value is an error wrapping one of the sentinel errors of
// this package.
//
// # Concurrency
//
// A Registry may be used from several goroutines. Its table is guarded by a
// mutex that is never held while handlers run or while observers are added,
// so a duplicate check in ObserveIfNeeded and the insertion that follows are
// not atomic with respect to other callers. Work already handed to a queue
// is not cancelled by StopObserving; it is dropped after Close.
package observer
