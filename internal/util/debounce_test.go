package util_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/derickschaefer/meteo/internal/util"
)

func TestDebouncerRunsOnlyLastCall(t *testing.T) {
	d := util.NewDebouncer(40 * time.Millisecond)
	var calls int32
	var last atomic.Value
	done := make(chan struct{}, 1)

	for _, q := range []string{"L", "Lo", "Lon"} {
		q := q
		d.Trigger(func() {
			atomic.AddInt32(&calls, 1)
			last.Store(q)
			done <- struct{}{}
		})
		time.Sleep(5 * time.Millisecond)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("debounced call never ran")
	}
	time.Sleep(80 * time.Millisecond)

	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("expected exactly 1 call, got %d", n)
	}
	if got := last.Load(); got != "Lon" {
		t.Errorf("expected last query Lon, got %v", got)
	}
}

func TestDebouncerStopCancelsPending(t *testing.T) {
	d := util.NewDebouncer(20 * time.Millisecond)
	var calls int32
	d.Trigger(func() { atomic.AddInt32(&calls, 1) })
	d.Stop()
	time.Sleep(60 * time.Millisecond)
	if n := atomic.LoadInt32(&calls); n != 0 {
		t.Errorf("stopped debouncer ran %d times", n)
	}
}

func TestDebouncerStopWaitsForRunningCall(t *testing.T) {
	d := util.NewDebouncer(time.Millisecond)
	started := make(chan struct{})
	var finished int32
	d.Trigger(func() {
		close(started)
		time.Sleep(50 * time.Millisecond)
		atomic.StoreInt32(&finished, 1)
	})

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("debounced call never started")
	}
	d.Stop()
	if atomic.LoadInt32(&finished) != 1 {
		t.Error("Stop returned while the fired call was still running")
	}
}

func TestDebouncerStopTwiceAfterCancel(t *testing.T) {
	d := util.NewDebouncer(time.Hour)
	d.Trigger(func() {})
	d.Trigger(func() {})

	done := make(chan struct{})
	go func() {
		d.Stop()
		d.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop blocked on calls that were cancelled before firing")
	}
}
