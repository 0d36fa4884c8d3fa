package async

import (
	"errors"
	"sync"
	"testing"

	"pgregory.net/rapid"
)

func TestUnboundedQueueGrowsPastOneSegment(t *testing.T) {
	q := NewUnboundedQueueSize[int](4)

	const n = 100
	for i := 0; i < n; i++ {
		q.Push(i)
	}

	if got := q.Len(); got != n {
		t.Fatalf("Len() = %d, want %d", got, n)
	}

	for i := 0; i < n; i++ {
		v, err := q.Pop()
		if err != nil {
			t.Fatalf("Pop() at i=%d: %v", i, err)
		}
		if v != i {
			t.Fatalf("Pop() at i=%d = %d, want %d", i, v, i)
		}
	}

	if _, err := q.Pop(); !errors.Is(err, ErrQueueEmpty) {
		t.Fatalf("Pop() on drained queue = %v, want ErrQueueEmpty", err)
	}
}

func TestUnboundedQueueConcurrentProducersSingleConsumer(t *testing.T) {
	const producers = 8
	const perProducer = 500
	const total = producers * perProducer

	q := NewUnboundedQueueSize[int](16)

	var wg sync.WaitGroup
	wg.Add(producers)
	for p := 0; p < producers; p++ {
		go func(base int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				q.Push(base + i)
			}
		}(p * perProducer)
	}

	seen := make(map[int]bool, total)
	for len(seen) < total {
		if v, err := q.Pop(); err == nil {
			if seen[v] {
				t.Fatalf("value %d popped twice", v)
			}
			seen[v] = true
		}
	}

	wg.Wait()
}

// TestUnboundedQueueModel checks push/pop against a plain-slice model.
func TestUnboundedQueueModel(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		segmentSize := rapid.IntRange(1, 4).Draw(t, "segmentSize")
		q := NewUnboundedQueueSize[int](segmentSize)

		var model []int

		t.Repeat(map[string]func(*rapid.T){
			"push": func(t *rapid.T) {
				v := rapid.Int().Draw(t, "v")
				q.Push(v)
				model = append(model, v)
			},
			"pop": func(t *rapid.T) {
				v, err := q.Pop()
				if len(model) == 0 {
					if !errors.Is(err, ErrQueueEmpty) {
						t.Fatalf("Pop on empty queue = %v, want ErrQueueEmpty", err)
					}
					return
				}
				if err != nil {
					t.Fatalf("Pop: %v", err)
				}
				if v != model[0] {
					t.Fatalf("Pop() = %v, want %v", v, model[0])
				}
				model = model[1:]
			},
		})
	})
}
