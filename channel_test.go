package async

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestChannelRoundTrip(t *testing.T) {
	c := NewUnboundedChannel[int]()

	c.TryWrite(1)
	c.TryWrite(2)
	c.TryWrite(3)
	c.Close()

	var got []int
	for v := range c.Range() {
		got = append(got, v)
	}

	if diff := cmp.Diff([]int{1, 2, 3}, got); diff != "" {
		t.Fatalf("Range() mismatch:\n%s", diff)
	}
}

func TestChannelBoundedBackpressure(t *testing.T) {
	c := NewBoundedChannel[string](2)

	if !c.TryWrite("a") {
		t.Fatal("TryWrite(a) = false, want true")
	}
	if !c.TryWrite("b") {
		t.Fatal("TryWrite(b) = false, want true")
	}
	if c.TryWrite("c") {
		t.Fatal("TryWrite(c) = true, want false (channel full)")
	}

	v, ok := c.TryRead()
	if !ok || v != "a" {
		t.Fatalf("TryRead() = %v, %v, want a, true", v, ok)
	}

	if !c.TryWrite("c") {
		t.Fatal("TryWrite(c) after freeing a slot = false, want true")
	}
}

func TestChannelCloseIsIdempotent(t *testing.T) {
	c := NewUnboundedChannel[int]()
	c.Close()
	c.Close() // must not panic or deadlock

	if !c.Closed() {
		t.Fatal("Closed() = false after Close()")
	}
	if c.TryWrite(1) {
		t.Fatal("TryWrite after Close() = true, want false")
	}
}

func TestChannelWaitOnClosedDrainsResidualThenEmpty(t *testing.T) {
	c := NewUnboundedChannel[int]()
	c.TryWrite(1)
	c.Close()

	v, ok := c.Wait()
	if !ok || v != 1 {
		t.Fatalf("first Wait() = %v, %v, want 1, true", v, ok)
	}

	v, ok = c.Wait()
	if ok {
		t.Fatalf("second Wait() = %v, %v, want zero, false", v, ok)
	}
}

func TestChannelWaitBlocksUntilWrite(t *testing.T) {
	c := NewUnboundedChannel[int]()

	done := make(chan int)
	go func() {
		v, ok := c.Wait()
		if !ok {
			t.Error("Wait() reported closed before any write")
		}
		done <- v
	}()

	time.Sleep(10 * time.Millisecond)
	c.TryWrite(42)

	select {
	case v := <-done:
		if v != 42 {
			t.Fatalf("Wait() = %d, want 42", v)
		}
	case <-time.After(time.Second):
		t.Fatal("Wait() never returned")
	}
}

func TestChannelWaitContextCancellation(t *testing.T) {
	c := NewUnboundedChannel[int]()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, ok, err := c.WaitContext(ctx)
	if ok {
		t.Fatal("WaitContext() = ok=true on an empty, uncanceled-until-timeout channel")
	}
	if err == nil {
		t.Fatal("WaitContext() returned a nil error after its deadline elapsed")
	}
}
