package async

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
)

func TestSchedulerRunsSubmittedWork(t *testing.T) {
	s := NewScheduler(2)
	defer s.Close()

	done := make(chan struct{})
	s.Schedule(func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduled work never ran")
	}
}

func TestSchedulerFanOut(t *testing.T) {
	s := NewScheduler(4)
	defer s.Close()

	const n = 100
	var count atomic.Int32
	var wg sync.WaitGroup
	wg.Add(n)

	for i := 0; i < n; i++ {
		s.Schedule(func() {
			count.Add(1)
			wg.Done()
		})
	}

	wg.Wait()
	if got := count.Load(); got != n {
		t.Fatalf("count = %d, want %d", got, n)
	}
}

func TestSchedulerDropsSubmissionsAfterClose(t *testing.T) {
	s := NewScheduler(1, WithLogger(zaptest.NewLogger(t)))
	s.Close()
	s.Close() // idempotent

	ran := false
	s.Schedule(func() { ran = true })

	time.Sleep(10 * time.Millisecond)
	if ran {
		t.Fatal("work submitted after Close() ran anyway")
	}
}

func TestSchedulerRecoversPanics(t *testing.T) {
	s := NewScheduler(1, WithLogger(zaptest.NewLogger(t)))
	defer s.Close()

	s.Schedule(func() { panic("boom") })

	done := make(chan struct{})
	s.Schedule(func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not survive a panic in a prior submission")
	}
}

func TestSchedulerPoolSizeZeroPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("NewScheduler(0) did not panic")
		}
	}()
	NewScheduler(0)
}

func TestDefaultSchedulerIsASingleton(t *testing.T) {
	if Default() != Default() {
		t.Fatal("Default() returned different instances")
	}
}
