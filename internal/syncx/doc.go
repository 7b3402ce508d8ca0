// Package syncx provides the execution primitives behind go-kvobserver's
// dispatch queues and managed contexts.
//
// Key Components:
//
// • Serial: single-goroutine executor running submitted tasks in FIFO order
// • FIFO: unbounded, blocking, closable task queue feeding a Serial
// • Latch: one-shot release used to wait for synchronous submissions
//
// Nothing in this package knows about observations; it only runs closures.
package syncx
