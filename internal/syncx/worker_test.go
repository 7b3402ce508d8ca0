package syncx

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/petermattis/goid"
)

// --------------------- Serial Executor Tests ---------------------

func TestSerial_Creation(t *testing.T) {
	s := NewSerial(SerialConfig{Name: "test", Metrics: true})

	if s.Name() != "test" {
		t.Errorf("Expected name test, got %q", s.Name())
	}

	if s.metrics == nil {
		t.Error("Expected metrics to be enabled")
	}

	if s.IsStarted() || s.IsStopped() {
		t.Error("New executor should be neither started nor stopped")
	}
}

func TestSerial_StartStop(t *testing.T) {
	s := NewSerial(SerialConfig{})

	if err := s.Start(); err != nil {
		t.Fatalf("Failed to start executor: %v", err)
	}

	if !s.IsStarted() {
		t.Error("Executor should be started")
	}

	if err := s.Start(); err != ErrAlreadyStarted {
		t.Errorf("Expected ErrAlreadyStarted, got %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.Stop(ctx); err != nil {
		t.Fatalf("Failed to stop executor: %v", err)
	}

	if !s.IsStopped() {
		t.Error("Executor should be stopped")
	}

	if err := s.Stop(ctx); err != ErrAlreadyStopped {
		t.Errorf("Expected ErrAlreadyStopped, got %v", err)
	}

	if err := s.Submit(func() {}); err != ErrStopped {
		t.Errorf("Expected ErrStopped after Stop, got %v", err)
	}
}

func TestSerial_FIFOOrder(t *testing.T) {
	s := NewSerial(SerialConfig{Metrics: true})
	if err := s.Start(); err != nil {
		t.Fatalf("Failed to start executor: %v", err)
	}

	const numTasks = 200
	var mu sync.Mutex
	order := make([]int, 0, numTasks)

	for i := 0; i < numTasks; i++ {
		i := i
		if err := s.Submit(func() {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
		}); err != nil {
			t.Fatalf("Failed to submit task: %v", err)
		}
	}

	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("Failed to stop executor: %v", err)
	}

	if len(order) != numTasks {
		t.Fatalf("Expected %d tasks executed, got %d", numTasks, len(order))
	}
	for i, v := range order {
		if v != i {
			t.Fatalf("Task %d ran at position %d", v, i)
		}
	}

	metrics := s.Metrics()
	if metrics.TasksSubmitted != numTasks {
		t.Errorf("Expected %d tasks submitted, got %d", numTasks, metrics.TasksSubmitted)
	}
	if metrics.TasksCompleted != numTasks {
		t.Errorf("Expected %d tasks completed, got %d", numTasks, metrics.TasksCompleted)
	}
}

func TestSerial_SubmitBeforeStart(t *testing.T) {
	s := NewSerial(SerialConfig{})

	var ran atomic.Bool
	if err := s.Submit(func() { ran.Store(true) }); err != nil {
		t.Fatalf("Failed to submit task: %v", err)
	}

	if err := s.RunSync(func() {}); err != ErrNotStarted {
		t.Errorf("Expected ErrNotStarted, got %v", err)
	}

	if err := s.Start(); err != nil {
		t.Fatalf("Failed to start executor: %v", err)
	}
	if err := s.RunSync(func() {}); err != nil {
		t.Fatalf("RunSync failed: %v", err)
	}

	if !ran.Load() {
		t.Error("Task submitted before Start should run once started")
	}
	_ = s.Stop(context.Background())
}

func TestSerial_RunSync(t *testing.T) {
	s := NewSerial(SerialConfig{})
	if err := s.Start(); err != nil {
		t.Fatalf("Failed to start executor: %v", err)
	}
	defer s.Stop(context.Background())

	var onWorker bool
	if err := s.RunSync(func() { onWorker = s.IsCurrent() }); err != nil {
		t.Fatalf("RunSync failed: %v", err)
	}

	if !onWorker {
		t.Error("RunSync task should execute on the worker goroutine")
	}
	if s.IsCurrent() {
		t.Error("Test goroutine must not be reported as the worker")
	}
}

func TestGoroutineIDs(t *testing.T) {
	self := goid.Get()
	if self == 0 {
		t.Fatal("goid.Get returned 0 on the test goroutine")
	}

	other := make(chan int64)
	go func() { other <- goid.Get() }()
	id := <-other

	if id == 0 {
		t.Fatal("goid.Get returned 0 on a spawned goroutine")
	}
	if id == self {
		t.Errorf("Distinct goroutines share id %d", id)
	}
}

func TestSerial_StartRecordsWorkerID(t *testing.T) {
	s := NewSerial(SerialConfig{})
	if err := s.Start(); err != nil {
		t.Fatalf("Failed to start executor: %v", err)
	}
	defer s.Stop(context.Background())

	if s.gid.Load() == 0 {
		t.Fatal("Worker goroutine id was not recorded")
	}
	if s.gid.Load() == goid.Get() {
		t.Error("Worker id must differ from the caller's")
	}
}

func TestSerial_SubmitFromWorker(t *testing.T) {
	s := NewSerial(SerialConfig{})
	if err := s.Start(); err != nil {
		t.Fatalf("Failed to start executor: %v", err)
	}
	defer s.Stop(context.Background())

	done := NewLatch()
	err := s.Submit(func() {
		// Re-entrant async submission must not block.
		_ = s.Submit(done.CountDown)
	})
	if err != nil {
		t.Fatalf("Failed to submit task: %v", err)
	}

	if err := done.AwaitWithTimeout(5 * time.Second); err != nil {
		t.Fatal("Nested submission did not run")
	}
}

func TestSerial_PanicHandler(t *testing.T) {
	var recovered atomic.Value
	s := NewSerial(SerialConfig{
		Metrics:      true,
		PanicHandler: func(r any) { recovered.Store(r) },
	})
	if err := s.Start(); err != nil {
		t.Fatalf("Failed to start executor: %v", err)
	}
	defer s.Stop(context.Background())

	if err := s.RunSync(func() { panic("boom") }); err != nil {
		t.Fatalf("RunSync failed: %v", err)
	}

	if got := recovered.Load(); got != "boom" {
		t.Errorf("Expected recovered value boom, got %v", got)
	}

	var ran atomic.Bool
	if err := s.RunSync(func() { ran.Store(true) }); err != nil {
		t.Fatalf("RunSync failed: %v", err)
	}
	if !ran.Load() {
		t.Error("Worker should keep running after a recovered panic")
	}

	if got := s.Metrics().TasksPanicked; got != 1 {
		t.Errorf("Expected 1 panicked task, got %d", got)
	}
}

func TestSerial_StopDrainsQueuedTasks(t *testing.T) {
	s := NewSerial(SerialConfig{})
	if err := s.Start(); err != nil {
		t.Fatalf("Failed to start executor: %v", err)
	}

	blocker := make(chan struct{})
	var count int64
	_ = s.Submit(func() { <-blocker })
	for i := 0; i < 5; i++ {
		_ = s.Submit(func() { atomic.AddInt64(&count, 1) })
	}

	stopped := make(chan error, 1)
	go func() { stopped <- s.Stop(context.Background()) }()

	close(blocker)

	select {
	case err := <-stopped:
		if err != nil {
			t.Fatalf("Stop failed: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Stop did not return")
	}

	if got := atomic.LoadInt64(&count); got != 5 {
		t.Errorf("Expected 5 queued tasks to run before stop, got %d", got)
	}
}

func TestSerial_StopWithContextTimeout(t *testing.T) {
	s := NewSerial(SerialConfig{})
	if err := s.Start(); err != nil {
		t.Fatalf("Failed to start executor: %v", err)
	}

	blocker := make(chan struct{})
	defer close(blocker)
	_ = s.Submit(func() { <-blocker })

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := s.Stop(ctx); err != context.DeadlineExceeded {
		t.Errorf("Expected context.DeadlineExceeded, got %v", err)
	}
}
