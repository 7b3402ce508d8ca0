package observer

import (
	"runtime"
	"testing"
	"weak"

	"github.com/a2y-d5l/go-kvobserver/kvo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func deadSubject(t *testing.T) (weak.Pointer[kvo.Subject], kvo.Handle) {
	t.Helper()
	s := new(kvo.Subject)
	wp, h := weak.Make(s), s.Handle()
	runtime.GC()
	require.Nil(t, wp.Value())
	return wp, h
}

func TestRecordEquality(t *testing.T) {
	a, b := new(kvo.Subject), new(kvo.Subject)

	weakA := &record{keyPath: "value", ref: weakRef{p: weak.Make(a)}}
	rawA := &record{keyPath: "value", ref: rawRef{h: a.Handle()}}
	otherKey := &record{keyPath: "name", ref: weakRef{p: weak.Make(a)}}
	weakB := &record{keyPath: "value", ref: weakRef{p: weak.Make(b)}}

	assert.True(t, weakA.equal(weakA))
	assert.True(t, weakA.equal(rawA), "weak and raw references to one object are equal")
	assert.True(t, rawA.equal(weakA))
	assert.False(t, weakA.equal(otherKey))
	assert.False(t, weakA.equal(weakB))

	runtime.KeepAlive(a)
	runtime.KeepAlive(b)
}

func TestRecordUnresolvableEqualsNothing(t *testing.T) {
	wp, h := deadSubject(t)

	dead := &record{keyPath: "value", ref: weakRef{p: wp}}
	alsoDead := &record{keyPath: "value", ref: weakRef{p: wp}}
	raw := &record{keyPath: "value", ref: rawRef{h: h}}

	assert.False(t, dead.equal(dead))
	assert.False(t, dead.equal(alsoDead))
	assert.False(t, raw.equal(dead))
	assert.True(t, raw.equal(raw), "raw identity survives the object")
}

func TestObjectRefs(t *testing.T) {
	wp, h := deadSubject(t)

	w := weakRef{p: wp}
	_, ok := w.identity()
	assert.False(t, ok)
	assert.False(t, w.deregister(nil, "value", 1))
	assert.Equal(t, "weak", w.mode())

	r := rawRef{h: h}
	addr, ok := r.identity()
	assert.True(t, ok)
	assert.Equal(t, h.Addr(), addr)
	assert.True(t, r.deregister(nil, "value", 1))
	assert.Equal(t, "raw", r.mode())
}
