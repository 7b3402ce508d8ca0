// Package kvobserver centralizes registration, dispatch routing and teardown
// of key-value observations.
//
// The work is split across focused subpackages:
//
//   - github.com/a2y-d5l/go-kvobserver/kvo           - Observable values and change notifications
//   - github.com/a2y-d5l/go-kvobserver/dispatch      - Dispatch policies, queues and the main queue
//   - github.com/a2y-d5l/go-kvobserver/observer      - The observation registry
//   - github.com/a2y-d5l/go-kvobserver/observing     - Groups of declared observations
//   - github.com/a2y-d5l/go-kvobserver/managed       - Objects owned by transactional contexts
//   - github.com/a2y-d5l/go-kvobserver/observability - Logging and metrics
//
// The root package re-exports the types most callers need.
//
// Example usage:
//
//	reg := kvobserver.New(kvobserver.WithName("settings"))
//	defer reg.Close()
//
//	id := reg.Observe(settings, "theme", kvobserver.OptionInitial,
//		kvobserver.AsyncOnMainDirectInitial(),
//		func(change *kvobserver.Change) {
//			applyTheme(change.New.(string))
//		})
//
//	// later
//	reg.StopObserving(id)
package kvobserver
