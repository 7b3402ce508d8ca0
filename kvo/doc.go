// Package kvo implements key-value observation for Go values.
//
// A type becomes observable by embedding Subject. Observers register per key
// path with AddObserver and receive every change synchronously on the
// goroutine that performed it:
//
//	type Account struct {
//		kvo.Subject
//		Balance kvo.Property[int]
//	}
//
//	func NewAccount() *Account {
//		a := &Account{}
//		a.Balance.Bind(&a.Subject, "balance", 0)
//		return a
//	}
//
// Each registration carries a caller-chosen Token that is handed back on
// delivery, so an observer can correlate notifications without keeping the
// observed object alive.
//
// Observer bookkeeping lives in a side table allocated on first use. A Handle
// taken from a Subject keeps that table reachable after the Subject itself
// has been collected, which lets an owner deregister without touching the
// object.
package kvo
