package debounce

import (
	"sync"
	"testing"
	"time"
)

func TestDebouncer_RunsAfterQuietInterval(t *testing.T) {
	d := New(20 * time.Millisecond)
	done := make(chan struct{})
	d.Schedule(func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("callback never ran")
	}
}

func TestDebouncer_LastScheduleWins(t *testing.T) {
	d := New(30 * time.Millisecond)

	var mu sync.Mutex
	var got []string
	done := make(chan struct{})

	for _, q := range []string{"l", "lo", "lon", "lond", "london"} {
		q := q
		d.Schedule(func() {
			mu.Lock()
			got = append(got, q)
			mu.Unlock()
			close(done)
		})
		time.Sleep(5 * time.Millisecond)
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("callback never ran")
	}
	// Give any incorrectly surviving earlier callbacks a chance to fire.
	time.Sleep(60 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 1 {
		t.Fatalf("callback ran %d times, want 1 (%v)", len(got), got)
	}
	if got[0] != "london" {
		t.Errorf("callback arg = %q, want %q", got[0], "london")
	}
}

func TestDebouncer_Cancel(t *testing.T) {
	d := New(20 * time.Millisecond)
	ran := make(chan struct{}, 1)
	d.Schedule(func() { ran <- struct{}{} })
	d.Cancel()

	select {
	case <-ran:
		t.Fatal("cancelled callback still ran")
	case <-time.After(80 * time.Millisecond):
	}
}

func TestDebouncer_ReusableAfterCancel(t *testing.T) {
	d := New(10 * time.Millisecond)
	d.Schedule(func() {})
	d.Cancel()

	done := make(chan struct{})
	d.Schedule(func() { close(done) })
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("callback after cancel never ran")
	}
}

func TestNew_DefaultDelay(t *testing.T) {
	d := New(0)
	if d.Delay() != 300*time.Millisecond {
		t.Errorf("Delay() = %v, want 300ms", d.Delay())
	}
}
