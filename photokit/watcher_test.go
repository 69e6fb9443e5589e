package photokit

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestWatcherObserve(t *testing.T) {
	sink := &recordingSink{}
	r := NewRegistry(sink)
	r.RegisterListener(ReadWrite)
	w := NewWatcher(NewManager(WithBridge(nil)), r, 0, nil)

	steps := []struct {
		status    AuthorizationStatus
		wantTotal int
	}{
		{NotDetermined, 0}, // baseline
		{NotDetermined, 0},
		{Limited, 1},
		{Limited, 1},
		{Denied, 2},
	}
	for i, s := range steps {
		w.Observe(ReadWrite, s.status)
		if n := len(sink.all()); n != s.wantTotal {
			t.Fatalf("step %d: %d events, want %d", i, n, s.wantTotal)
		}
	}
	if got := sink.all()[1].payload.NewStatus; got != Denied {
		t.Errorf("last event status = %q, want denied", got)
	}
}

func TestWatcherPoll(t *testing.T) {
	fb := newFakeBridge()
	fb.set(Read, NotDetermined)
	sink := &recordingSink{}
	r := NewRegistry(sink)
	m := NewManager(WithBridge(fb))
	w := NewWatcher(m, r, time.Hour, nil)

	// Nothing watched, nothing polled.
	w.Poll()
	if checks, _ := fb.calls(); checks != 0 {
		t.Errorf("bridge checks with no listeners = %d", checks)
	}

	r.RegisterListener(Read)
	w.Poll()
	fb.set(Read, Authorized)
	w.Poll()

	got := sink.all()
	if len(got) != 1 || got[0].payload.NewStatus != Authorized || got[0].payload.AccessLevel != Read {
		t.Errorf("events = %+v, want one read/authorized", got)
	}
	// Polling bypasses the cache.
	if checks, _ := fb.calls(); checks != 2 {
		t.Errorf("bridge checks = %d, want 2", checks)
	}
	if s, _ := m.CheckAuthorizationStatus(Read); s != Authorized {
		t.Errorf("cached status = %q, want authorized", s)
	}
}

func TestWatcherForgetsUnwatchedLevels(t *testing.T) {
	fb := newFakeBridge()
	sink := &recordingSink{}
	r := NewRegistry(sink)
	w := NewWatcher(NewManager(WithBridge(fb)), r, time.Hour, nil)

	id, _ := r.RegisterListener(Read)
	w.Poll() // baseline notDetermined
	if err := r.UnregisterListener(id); err != nil {
		t.Fatal(err)
	}
	fb.set(Read, Authorized)
	w.Poll()

	r.RegisterListener(Read)
	w.Poll()
	if got := sink.all(); len(got) != 0 {
		t.Errorf("events = %+v, want none after rewatching", got)
	}
}

func TestWatcherBaselineAndPrune(t *testing.T) {
	sink := &recordingSink{}
	r := NewRegistry(sink)
	id, _ := r.RegisterListener(AddOnly)
	w := NewWatcher(NewManager(WithBridge(nil)), r, 0, nil)

	w.Observe(AddOnly, NotDetermined)
	w.Baseline(AddOnly, Denied)
	if n := len(sink.all()); n != 0 {
		t.Fatalf("Baseline emitted %d events", n)
	}
	w.Observe(AddOnly, Denied)
	if n := len(sink.all()); n != 0 {
		t.Fatalf("unchanged status after Baseline emitted %d events", n)
	}

	r.SetListenerActive(id, false)
	w.Prune()
	r.SetListenerActive(id, true)
	w.Observe(AddOnly, Authorized)
	if n := len(sink.all()); n != 0 {
		t.Errorf("first observation after Prune emitted %d events", n)
	}
	w.Observe(AddOnly, Limited)
	if n := len(sink.all()); n != 1 {
		t.Errorf("events = %d, want 1", n)
	}
}

func TestWatcherPollSkipsErrors(t *testing.T) {
	fb := newFakeBridge()
	fb.checkErr = InvalidAuthorizationStatusError(7)
	sink := &recordingSink{}
	r := NewRegistry(sink)
	r.RegisterListener(Read)
	w := NewWatcher(NewManager(WithBridge(fb)), r, time.Hour, nil)

	w.Poll()
	w.Poll()
	if n := len(sink.all()); n != 0 {
		t.Errorf("emitted %d events from failed polls", n)
	}
}

func TestWatcherRunStops(t *testing.T) {
	fb := newFakeBridge()
	r := NewRegistry(&recordingSink{})
	r.RegisterListener(AddOnly)
	w := NewWatcher(NewManager(WithBridge(fb)), r, time.Millisecond, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := w.Run(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Run() = %v, want DeadlineExceeded", err)
	}
	if checks, _ := fb.calls(); checks == 0 {
		t.Error("Run() never polled")
	}
}
