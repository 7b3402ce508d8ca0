package dispatch

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerialQueueRunsInOrder(t *testing.T) {
	q := NewSerialQueue("test")
	defer q.Close(context.Background())

	var mu sync.Mutex
	var got []int
	for i := range 100 {
		q.Async(func() {
			mu.Lock()
			got = append(got, i)
			mu.Unlock()
		})
	}
	q.Sync(func() {})

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, got, 100)
	for i, v := range got {
		assert.Equal(t, i, v)
	}
}

func TestSerialQueueSyncBlocks(t *testing.T) {
	q := NewSerialQueue("test")
	defer q.Close(context.Background())

	var ran atomic.Bool
	q.Sync(func() {
		time.Sleep(10 * time.Millisecond)
		ran.Store(true)
	})
	assert.True(t, ran.Load())
}

func TestSerialQueueIsCurrent(t *testing.T) {
	q := NewSerialQueue("test")
	defer q.Close(context.Background())

	assert.False(t, q.IsCurrent())

	var inside atomic.Bool
	q.Sync(func() { inside.Store(q.IsCurrent()) })
	assert.True(t, inside.Load())

	other := NewSerialQueue("other")
	defer other.Close(context.Background())
	var crossed atomic.Bool
	other.Sync(func() { crossed.Store(q.IsCurrent()) })
	assert.False(t, crossed.Load())
}

func TestSerialQueueCloseDrains(t *testing.T) {
	q := NewSerialQueue("test")

	var n atomic.Int32
	for range 50 {
		q.Async(func() { n.Add(1) })
	}

	require.NoError(t, q.Close(context.Background()))
	assert.Equal(t, int32(50), n.Load())

	q.Async(func() { n.Add(1) })
	q.Sync(func() { n.Add(1) })
	assert.Equal(t, int32(50), n.Load())

	assert.NoError(t, q.Close(context.Background()))
}

func TestSerialQueueCloseTimeout(t *testing.T) {
	q := NewSerialQueue("test")
	release := make(chan struct{})
	q.Async(func() { <-release })

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, q.Close(ctx), context.DeadlineExceeded)
	close(release)
}

func TestSerialQueuePanicHandler(t *testing.T) {
	recovered := make(chan any, 1)
	q := NewSerialQueue("test", WithPanicHandler(func(r any) { recovered <- r }))
	defer q.Close(context.Background())

	q.Async(func() { panic("boom") })

	var after atomic.Bool
	q.Sync(func() { after.Store(true) })

	assert.Equal(t, "boom", <-recovered)
	assert.True(t, after.Load())
	assert.Equal(t, uint64(1), q.Stats().TasksPanicked)
}

func TestMainIsSingleton(t *testing.T) {
	assert.Same(t, Main(), Main())
	assert.Equal(t, "main", Main().Label())

	var onMain atomic.Bool
	Main().Sync(func() { onMain.Store(Main().IsCurrent()) })
	assert.True(t, onMain.Load())
}

func TestDirectOrAsyncOnMainWithRealQueue(t *testing.T) {
	mq := NewSerialQueue("main-test")
	defer mq.Close(context.Background())
	env := Env{Main: mq}
	p := DirectOrAsyncOnMain()

	var mode Mode
	mq.Sync(func() {
		mode = p.Route(env, false, func() {})
	})
	assert.Equal(t, ModeInline, mode)

	done := make(chan struct{})
	assert.Equal(t, ModeAsync, p.Route(env, false, func() { close(done) }))
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("handler never ran on the main queue")
	}
}
