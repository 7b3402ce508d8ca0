package observer

import (
	"context"

	"github.com/a2y-d5l/go-kvobserver/dispatch"
	"github.com/a2y-d5l/go-kvobserver/kvo"
)

// ObserveValue implements kvo.Observer. It finds the record registered under
// token and routes the change according to the record's policy.
func (c *core) ObserveValue(keyPath string, _ *kvo.Subject, change *kvo.Change, token kvo.Token) {
	v, ok := c.tokens.Load(token)
	if !ok {
		c.metrics.UnknownToken()
		c.logger.LogUnknownToken(context.Background(), uint64(token), keyPath)
		return
	}
	c.route(v.(*record), change)
}

func (c *core) route(rec *record, change *kvo.Change) {
	initial := rec.initialPending.Swap(false)
	gen := c.generation.Load()
	handler := rec.handler

	fn := func() {
		if c.generation.Load() != gen {
			c.metrics.Stale()
			c.logger.LogStale(context.Background(), int(rec.id.Load()), uint64(rec.token), rec.keyPath)
			return
		}
		handler(change)
	}

	env := dispatch.Env{Main: c.main, Inferred: rec.inferred}
	mode := rec.policy.Route(env, initial, fn)

	c.metrics.Notified(rec.policy.String(), mode.String())
	c.logger.LogDeliver(context.Background(), int(rec.id.Load()), uint64(rec.token), rec.keyPath, rec.policy.String(), mode.String(), initial)
}
