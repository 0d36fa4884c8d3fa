package async

import (
	"runtime/debug"
	"slices"
	"sync"
	"time"
)

// A Task is a single-value asynchronous computation that begins executing
// as soon as it is created — its constructor hands its body to a
// [Scheduler] immediately (hot start). Calling a task-returning function
// and awaiting the result later may observe a value that was computed
// before the await ever happened; this is a deliberate property of hot
// starting, not a bug.
//
// A Task's result is written exactly once, by whichever worker goroutine
// runs its body, and observed through [Task.Result] any number of times
// thereafter (repeated calls return the cached value/error; nothing is
// moved out from under a second caller, since Go has no move semantics to
// exploit here).
//
// The zero value is not usable; construct one with [Run] or [RunOn].
type Task[V any] struct {
	done  chan struct{}
	value V
	err   error
}

// Run constructs a Task whose body is fn, and hot-starts it on the
// process-wide [Default] scheduler.
func Run[V any](fn func() (V, error)) *Task[V] {
	return RunOn(Default(), fn)
}

// RunOn constructs a Task whose body is fn, and hot-starts it on s.
func RunOn[V any](s *Scheduler, fn func() (V, error)) *Task[V] {
	t := &Task[V]{done: make(chan struct{})}

	s.Schedule(func() {
		defer close(t.done)
		defer func() {
			if v := recover(); v != nil {
				t.err = &capturedPanic{value: v, stack: debug.Stack()}
			}
		}()

		t.value, t.err = fn()
	})

	return t
}

// Result blocks until t completes, then returns its value and error. If
// the body of t panicked, the panic is captured and returned as an error
// here rather than re-panicking the caller's goroutine.
//
// Result may be called any number of times; every call after the first
// simply observes the same already-written result.
func (t *Task[V]) Result() (V, error) {
	<-t.done
	return t.value, t.err
}

// Done reports whether t has completed, without blocking.
func (t *Task[V]) Done() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}

// TryResultFor waits up to d for t to complete. If t completes in time, it
// returns (value, true, error); if the deadline elapses first, it returns
// (zero, false, nil) — a timeout is not itself an error.
func (t *Task[V]) TryResultFor(d time.Duration) (V, bool, error) {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-t.done:
		return t.value, true, t.err
	case <-timer.C:
		var zero V
		return zero, false, nil
	}
}

// TryResultUntil behaves like [Task.TryResultFor], but with an absolute
// deadline instead of a relative duration.
func (t *Task[V]) TryResultUntil(deadline time.Time) (V, bool, error) {
	return t.TryResultFor(time.Until(deadline))
}

// WhenAll returns a Task that completes once every task in tasks has
// completed. It never short-circuits on the first failure: every error
// produced by every failing task is collected, and if at least one task
// failed, the returned Task fails with an [AggregateError] holding all of
// them, in task order.
func WhenAll[V any](tasks ...*Task[V]) *Task[[]V] {
	return WhenAllSeq(slices.Values(tasks))
}

// WhenAllSeq behaves like [WhenAll], but draws its tasks from an iter.Seq
// instead of a variadic slice, for callers that already have one lying
// around rather than a concrete slice of tasks.
func WhenAllSeq[V any](seq func(func(*Task[V]) bool)) *Task[[]V] {
	return Run(func() ([]V, error) {
		var tasks []*Task[V]
		for t := range seq {
			tasks = append(tasks, t)
		}

		values := make([]V, len(tasks))
		errs := make([]error, len(tasks))

		var wg sync.WaitGroup
		wg.Add(len(tasks))
		for i, task := range tasks {
			go func(i int, task *Task[V]) {
				defer wg.Done()
				values[i], errs[i] = task.Result()
			}(i, task)
		}
		wg.Wait()

		var failed []error
		for _, err := range errs {
			if err != nil {
				failed = append(failed, err)
			}
		}
		if len(failed) != 0 {
			return nil, &AggregateError{Errors: failed}
		}
		return values, nil
	})
}
