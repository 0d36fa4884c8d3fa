package async

import (
	"context"
	"iter"

	"golang.org/x/sync/semaphore"
)

// A Sequence is a lazy, single-consumer stream of values: it produces
// nothing until a terminal operation (or a range-over-func loop) pulls
// from it, and each combinator returns a new Sequence whose body consumes
// the previous one. It is implemented directly on top of Go 1.23's
// iter.Seq, which already gives a pull-based, single-resume-per-advance
// stream, suspended at each yield point until the caller resumes it.
//
// The zero value of Sequence yields nothing; construct one with [Range],
// [From], [FromSeq], or [Repeat], or derive one from an existing Sequence
// via one of its combinator methods.
type Sequence[V any] struct {
	seq iter.Seq[V]
}

// Seq exposes s as a plain iter.Seq, for use in a range-over-func loop or
// with the free functions ([Select], [Distinct], [Contains], [Average])
// that need a type parameter a method cannot introduce.
func (s Sequence[V]) Seq() iter.Seq[V] {
	if s.seq == nil {
		return func(func(V) bool) {}
	}
	return s.seq
}

// Range returns a Sequence of the integers from, from+1, …, to, inclusive
// of to.
func Range(from, to int) Sequence[int] {
	return Sequence[int]{seq: func(yield func(int) bool) {
		for i := from; i <= to; i++ {
			if !yield(i) {
				return
			}
		}
	}}
}

// From returns a Sequence over the elements of s, in order.
func From[V any](s []V) Sequence[V] {
	return Sequence[V]{seq: func(yield func(V) bool) {
		for _, v := range s {
			if !yield(v) {
				return
			}
		}
	}}
}

// FromSeq adapts an existing iter.Seq into a Sequence, so its combinators
// become available.
func FromSeq[V any](seq iter.Seq[V]) Sequence[V] {
	return Sequence[V]{seq: seq}
}

// Repeat returns a Sequence that yields v exactly n times.
func Repeat[V any](v V, n int) Sequence[V] {
	return Sequence[V]{seq: func(yield func(V) bool) {
		for i := 0; i < n; i++ {
			if !yield(v) {
				return
			}
		}
	}}
}

// Where returns a Sequence of the elements of s for which pred reports
// true. Chaining Where twice is equivalent to a single Where with the
// conjunction of both predicates.
func (s Sequence[V]) Where(pred func(V) bool) Sequence[V] {
	return Sequence[V]{seq: func(yield func(V) bool) {
		for v := range s.Seq() {
			if pred(v) && !yield(v) {
				return
			}
		}
	}}
}

// Select returns a Sequence of mapper applied to every element of s.
// Select is a free function, not a method, because it introduces a type
// parameter (R) that [Sequence]'s own type parameter can't supply.
// Chaining Select twice composes the two mapping functions.
func Select[V, R any](s Sequence[V], mapper func(V) R) Sequence[R] {
	return Sequence[R]{seq: func(yield func(R) bool) {
		for v := range s.Seq() {
			if !yield(mapper(v)) {
				return
			}
		}
	}}
}

// Skip returns a Sequence that omits the first n elements of s.
func (s Sequence[V]) Skip(n int) Sequence[V] {
	return Sequence[V]{seq: func(yield func(V) bool) {
		i := 0
		for v := range s.Seq() {
			if i < n {
				i++
				continue
			}
			if !yield(v) {
				return
			}
		}
	}}
}

// SkipWhile returns a Sequence that omits elements from the front of s for
// as long as pred reports true, yielding every element from the first one
// pred rejects onward.
func (s Sequence[V]) SkipWhile(pred func(V) bool) Sequence[V] {
	return Sequence[V]{seq: func(yield func(V) bool) {
		skipping := true
		for v := range s.Seq() {
			if skipping {
				if pred(v) {
					continue
				}
				skipping = false
			}
			if !yield(v) {
				return
			}
		}
	}}
}

// Distinct returns a Sequence of the elements of s, omitting every element
// already seen earlier in the stream. Distinct is a free function because
// it requires V to be comparable, a constraint [Sequence] itself does not
// carry.
func Distinct[V comparable](s Sequence[V]) Sequence[V] {
	return Sequence[V]{seq: func(yield func(V) bool) {
		seen := make(map[V]struct{})
		for v := range s.Seq() {
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			if !yield(v) {
				return
			}
		}
	}}
}

// Reverse returns a Sequence over the elements of s in reverse order. It
// materializes s in full before yielding its first element.
// Reverse(Reverse(s)) reproduces s's original order.
func (s Sequence[V]) Reverse() Sequence[V] {
	return Sequence[V]{seq: func(yield func(V) bool) {
		items := s.ToSlice()
		for i := len(items) - 1; i >= 0; i-- {
			if !yield(items[i]) {
				return
			}
		}
	}}
}

// Chunk returns a Sequence of non-overlapping slices of n consecutive
// elements of s. If the length of s is not a multiple of n, the final
// chunk is shorter than n. Chunk panics if n is not positive.
func (s Sequence[V]) Chunk(n int) Sequence[[]V] {
	if n <= 0 {
		panic("async: Chunk size must be positive")
	}
	return Sequence[[]V]{seq: func(yield func([]V) bool) {
		chunk := make([]V, 0, n)
		for v := range s.Seq() {
			chunk = append(chunk, v)
			if len(chunk) == n {
				if !yield(chunk) {
					return
				}
				chunk = make([]V, 0, n)
			}
		}
		if len(chunk) != 0 {
			yield(chunk)
		}
	}}
}

// Append returns a Sequence over the elements of s followed by v.
func (s Sequence[V]) Append(v V) Sequence[V] {
	return s.AppendSeq(Sequence[V]{seq: func(yield func(V) bool) { yield(v) }})
}

// AppendSeq returns a Sequence over the elements of s followed by the
// elements of other.
func (s Sequence[V]) AppendSeq(other Sequence[V]) Sequence[V] {
	return Sequence[V]{seq: func(yield func(V) bool) {
		for v := range s.Seq() {
			if !yield(v) {
				return
			}
		}
		for v := range other.Seq() {
			if !yield(v) {
				return
			}
		}
	}}
}

// Prepend returns a Sequence over v followed by the elements of s.
func (s Sequence[V]) Prepend(v V) Sequence[V] {
	return Sequence[V]{seq: func(yield func(V) bool) { yield(v) }}.AppendSeq(s)
}

// PrependSeq returns a Sequence over the elements of other followed by the
// elements of s.
func (s Sequence[V]) PrependSeq(other Sequence[V]) Sequence[V] {
	return other.AppendSeq(s)
}

// First returns the first element of s. The second return value is false
// if s is empty.
func (s Sequence[V]) First() (V, bool) {
	for v := range s.Seq() {
		return v, true
	}
	var zero V
	return zero, false
}

// Last returns the last element of s, or [ErrOutOfRange] if s is empty.
func (s Sequence[V]) Last() (V, error) {
	var last V
	found := false
	for v := range s.Seq() {
		last, found = v, true
	}
	if !found {
		return last, ErrOutOfRange
	}
	return last, nil
}

// Count returns the number of elements in s, consuming it in full.
func (s Sequence[V]) Count() int {
	n := 0
	for range s.Seq() {
		n++
	}
	return n
}

// ElementAt returns the element of s at index i (0-based), or
// [ErrOutOfRange] if s has fewer than i+1 elements or i is negative.
func (s Sequence[V]) ElementAt(i int) (V, error) {
	var zero V
	if i < 0 {
		return zero, ErrOutOfRange
	}
	n := 0
	for v := range s.Seq() {
		if n == i {
			return v, nil
		}
		n++
	}
	return zero, ErrOutOfRange
}

// Contains reports whether target appears anywhere in s. Contains is a
// free function because it requires V to be comparable.
func Contains[V comparable](s Sequence[V], target V) bool {
	for v := range s.Seq() {
		if v == target {
			return true
		}
	}
	return false
}

// Any reports whether pred holds for at least one element of s.
func (s Sequence[V]) Any(pred func(V) bool) bool {
	for v := range s.Seq() {
		if pred(v) {
			return true
		}
	}
	return false
}

// All reports whether pred holds for every element of s. All reports true
// for an empty s.
func (s Sequence[V]) All(pred func(V) bool) bool {
	for v := range s.Seq() {
		if !pred(v) {
			return false
		}
	}
	return true
}

// Number constrains the element types [Average] accepts.
type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// Average returns the arithmetic mean of the elements of s as a floating
// point value. The second return value is false if s is empty.
func Average[V Number](s Sequence[V]) (float64, bool) {
	var sum float64
	var n int
	for v := range s.Seq() {
		sum += float64(v)
		n++
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

// ToSlice consumes s in full and returns its elements as a slice.
func (s Sequence[V]) ToSlice() []V {
	var out []V
	for v := range s.Seq() {
		out = append(out, v)
	}
	return out
}

// ExecutionMode selects how [Sequence.ForEach] dispatches its calls to fn.
type ExecutionMode int

const (
	// Sequenced calls fn once per element, in order, on the calling
	// goroutine.
	Sequenced ExecutionMode = iota
	// Parallel submits one [Task] per element and waits on [WhenAll].
	Parallel
)

// ForEachOptions configures a parallel [Sequence.ForEach] call.
type ForEachOptions struct {
	// MaxConcurrency bounds how many elements are processed at once. Zero
	// (the default) means unbounded.
	MaxConcurrency int
}

// ForEach calls fn once for every element of s. In Sequenced mode, calls
// happen one at a time, in order, and ForEach stops and returns the first
// error fn produces. In Parallel mode, ForEach submits one [Task] per
// element and waits on [WhenAll]; a failing fn anywhere surfaces as an
// [AggregateError], and every element is still attempted.
func (s Sequence[V]) ForEach(fn func(V) error, mode ExecutionMode, opts ...ForEachOptions) error {
	switch mode {
	case Sequenced:
		for v := range s.Seq() {
			if err := fn(v); err != nil {
				return err
			}
		}
		return nil
	case Parallel:
		var options ForEachOptions
		if len(opts) != 0 {
			options = opts[0]
		}
		return s.forEachParallel(fn, options)
	default:
		panic("async: unknown ExecutionMode")
	}
}

func (s Sequence[V]) forEachParallel(fn func(V) error, opts ForEachOptions) error {
	var sem *semaphore.Weighted
	if opts.MaxConcurrency > 0 {
		sem = semaphore.NewWeighted(int64(opts.MaxConcurrency))
	}

	ctx := context.Background()

	var tasks []*Task[struct{}]
	for v := range s.Seq() {
		v := v

		if sem != nil {
			if err := sem.Acquire(ctx, 1); err != nil {
				return err
			}
		}

		tasks = append(tasks, Run(func() (struct{}, error) {
			if sem != nil {
				defer sem.Release(1)
			}
			return struct{}{}, fn(v)
		}))
	}

	_, err := WhenAll(tasks...).Result()
	return err
}
