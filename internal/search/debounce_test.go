package search_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/anon381/Movie-Search-App/internal/search"
)

func TestDebouncerOnlyLastTriggerFires(t *testing.T) {
	d := search.NewDebouncer(30 * time.Millisecond)
	var fired int32
	for i := 0; i < 5; i++ {
		d.Trigger(func() { atomic.AddInt32(&fired, 1) })
		time.Sleep(5 * time.Millisecond)
	}
	time.Sleep(80 * time.Millisecond)
	if got := atomic.LoadInt32(&fired); got != 1 {
		t.Fatalf("expected exactly one firing, got %d", got)
	}
}

func TestDebouncerZeroDelayRunsInline(t *testing.T) {
	d := search.NewDebouncer(0)
	ran := false
	d.Trigger(func() { ran = true })
	if !ran {
		t.Fatalf("zero delay must run synchronously")
	}
}

func TestDebouncerStopCancelsPending(t *testing.T) {
	d := search.NewDebouncer(20 * time.Millisecond)
	var fired int32
	d.Trigger(func() { atomic.AddInt32(&fired, 1) })
	d.Stop()
	time.Sleep(60 * time.Millisecond)
	if atomic.LoadInt32(&fired) != 0 {
		t.Fatalf("stopped trigger must not fire")
	}
}
