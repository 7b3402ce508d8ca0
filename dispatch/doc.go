// Package dispatch decides where an observation handler runs.
//
// A Policy is a closed set of routing kinds, each optionally carrying the
// Queue or Transactional context it targets. Route applies the policy to one
// notification:
//
//	policy := dispatch.AsyncDirectInitial(queue)
//	policy.Route(env, initial, func() { handler(change) })
//
// Kinds whose name ends in DirectInitial run the first notification of a
// registration that asked for an initial value inline, and dispatch every
// other notification. The ManagedInferred kinds target the managed context
// supplied through Env, resolved by the caller from the observed object.
//
// SerialQueue is the Queue implementation used throughout the module. Main
// returns the process-wide main queue.
package dispatch
