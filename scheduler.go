package async

import (
	"runtime"
	"sync"

	"go.uber.org/zap"
)

// A Scheduler is a fixed pool of worker goroutines draining resume work
// from an internal unbounded [Channel]: a process-wide (or caller-owned)
// thread pool that [Task] submits its body to at construction time.
//
// Scheduling is strict FIFO from any single submitter. There is no
// priority, no affinity, and no work stealing — work is unordered across
// submitters and strictly FIFO within one.
//
// The zero value is not usable; construct one with [NewScheduler], or use
// the process-wide [Default] scheduler.
type Scheduler struct {
	work    *Channel[func()]
	wg      sync.WaitGroup
	logger  *zap.Logger
	closeMu sync.Mutex
	closed  bool
}

// Option configures a [Scheduler] constructed with [NewScheduler].
type Option func(*Scheduler)

// WithLogger attaches a structured logger to a Scheduler. The Scheduler
// logs a warning whenever it recovers a panic from a submitted function,
// and a debug line whenever a submission arrives after [Scheduler.Close].
// Without WithLogger, a Scheduler logs nothing (zap.NewNop).
func WithLogger(logger *zap.Logger) Option {
	return func(s *Scheduler) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewScheduler creates a Scheduler with n worker goroutines. NewScheduler
// panics if n is not positive.
//
// An explicit, caller-owned Scheduler is preferable to the process-wide
// [Default] singleton in tests and anywhere else sensitive to worker-pool
// sizing or lifetime.
func NewScheduler(n int, opts ...Option) *Scheduler {
	if n <= 0 {
		panic("async: Scheduler pool size must be positive")
	}

	s := &Scheduler{
		work:   NewUnboundedChannel[func()](),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.wg.Add(n)
	for i := 0; i < n; i++ {
		go s.worker()
	}
	return s
}

var defaultScheduler = sync.OnceValue(func() *Scheduler {
	return NewScheduler(runtime.GOMAXPROCS(0))
})

// Default returns the process-wide Scheduler, lazily created and sized to
// runtime.GOMAXPROCS(0).
func Default() *Scheduler {
	return defaultScheduler()
}

func (s *Scheduler) worker() {
	defer s.wg.Done()

	for {
		fn, ok := s.work.Wait()
		if !ok {
			return
		}

		if err := recoverToError(fn); err != nil {
			s.logger.Warn("async: recovered panic in scheduled work", zap.Error(err))
		}
	}
}

// Schedule submits fn to be run on some worker goroutine other than the
// caller, exactly once, in the order it was submitted relative to other
// calls to Schedule from the same goroutine. Schedule is a no-op after
// [Scheduler.Close].
func (s *Scheduler) Schedule(fn func()) {
	s.closeMu.Lock()
	closed := s.closed
	s.closeMu.Unlock()

	if closed {
		s.logger.Debug("async: dropped submission after scheduler close")
		return
	}

	s.work.TryWrite(fn)
}

// Close stops s: it closes the internal work channel, which makes every
// worker's blocking Wait return, and joins every worker goroutine. Close is
// idempotent. Submissions made after Close are dropped, not queued.
func (s *Scheduler) Close() {
	s.closeMu.Lock()
	if s.closed {
		s.closeMu.Unlock()
		return
	}
	s.closed = true
	s.closeMu.Unlock()

	s.work.Close()
	s.wg.Wait()
}
