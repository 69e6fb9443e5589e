package photokit

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

type countingSource struct {
	mu       sync.Mutex
	starts   int
	err      error
	onChange func(AccessLevel, AuthorizationStatus)
}

func (s *countingSource) Start(onChange func(AccessLevel, AuthorizationStatus)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.starts++
	if s.err != nil {
		return s.err
	}
	s.onChange = onChange
	return nil
}

func TestRegisterListener(t *testing.T) {
	clock := newFakeClock()
	r := NewRegistry(&recordingSink{}, WithRegistryClock(clock.Now))

	id, err := r.RegisterListener(ReadWrite)
	if err != nil {
		t.Fatalf("RegisterListener: %v", err)
	}
	if id == "" {
		t.Fatal("RegisterListener returned empty id")
	}

	got := r.ActiveListeners()
	if len(got) != 1 {
		t.Fatalf("ActiveListeners() = %d entries, want 1", len(got))
	}
	want := ListenerInfo{ID: id, AccessLevel: ReadWrite, CreatedAt: clock.Now().Unix(), Active: true}
	if got[0] != want {
		t.Errorf("ActiveListeners()[0] = %+v, want %+v", got[0], want)
	}
}

func TestRegisterListenerUniqueIDs(t *testing.T) {
	r := NewRegistry(&recordingSink{})
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id, err := r.RegisterListener(AccessLevels()[i%3])
		if err != nil {
			t.Fatal(err)
		}
		if seen[id] {
			t.Fatalf("duplicate id %s", id)
		}
		seen[id] = true
	}
	if n := len(r.ActiveListeners()); n != 100 {
		t.Errorf("ActiveListeners() = %d entries, want 100", n)
	}
}

func TestRegisterListenerInvalidLevel(t *testing.T) {
	r := NewRegistry(&recordingSink{})
	_, err := r.RegisterListener(AccessLevel("all"))
	var inv InvalidAccessLevelError
	if !errors.As(err, &inv) || inv != "all" {
		t.Errorf("err = %v, want InvalidAccessLevelError(all)", err)
	}
	if n := len(r.ActiveListeners()); n != 0 {
		t.Errorf("ActiveListeners() = %d entries, want 0", n)
	}
}

func TestUnregisterListener(t *testing.T) {
	r := NewRegistry(&recordingSink{})
	keep, _ := r.RegisterListener(Read)
	drop, _ := r.RegisterListener(Read)

	if err := r.UnregisterListener(drop); err != nil {
		t.Fatalf("UnregisterListener: %v", err)
	}
	if err := r.UnregisterListener(drop); !errors.Is(err, ErrListenerNotFound) {
		t.Errorf("second UnregisterListener err = %v, want ErrListenerNotFound", err)
	}
	if err := r.UnregisterListener("no-such-id"); !errors.Is(err, ErrListenerNotFound) {
		t.Errorf("unknown UnregisterListener err = %v, want ErrListenerNotFound", err)
	}

	got := r.ActiveListeners()
	if len(got) != 1 || got[0].ID != keep {
		t.Errorf("ActiveListeners() = %+v, want only %s", got, keep)
	}
}

func TestHandlePermissionChange(t *testing.T) {
	tests := []struct {
		name      string
		listeners []AccessLevel
		change    AccessLevel
		wantCount int
	}{
		{"no listeners", nil, Read, 0},
		{"other level", []AccessLevel{ReadWrite}, Read, 0},
		{"one listener", []AccessLevel{Read}, Read, 1},
		{"many listeners one event", []AccessLevel{Read, Read, Read, AddOnly}, Read, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := &recordingSink{}
			clock := newFakeClock()
			r := NewRegistry(sink, WithRegistryClock(clock.Now))
			for _, l := range tt.listeners {
				if _, err := r.RegisterListener(l); err != nil {
					t.Fatal(err)
				}
			}

			if err := r.HandlePermissionChange(Authorized, tt.change); err != nil {
				t.Fatalf("HandlePermissionChange: %v", err)
			}
			got := sink.all()
			if len(got) != tt.wantCount {
				t.Fatalf("emitted %d events, want %d", len(got), tt.wantCount)
			}
			if tt.wantCount == 0 {
				return
			}
			ev := got[0]
			if ev.target != DefaultEventTarget || ev.event != EventPermissionChanged {
				t.Errorf("emitted to %q/%q", ev.target, ev.event)
			}
			want := ChangeEvent{NewStatus: Authorized, AccessLevel: tt.change, Timestamp: clock.Now().UnixMilli()}
			if ev.payload != want {
				t.Errorf("payload = %+v, want %+v", ev.payload, want)
			}
		})
	}
}

func TestHandlePermissionChangeTarget(t *testing.T) {
	sink := &recordingSink{}
	r := NewRegistry(sink, WithEventTarget("settings"))
	r.RegisterListener(AddOnly)
	if err := r.HandlePermissionChange(Denied, AddOnly); err != nil {
		t.Fatal(err)
	}
	if got := sink.all(); len(got) != 1 || got[0].target != "settings" {
		t.Errorf("events = %+v, want one to settings", got)
	}
}

func TestHandlePermissionChangeEmitFailure(t *testing.T) {
	sink := &recordingSink{err: errSinkClosed}
	r := NewRegistry(sink)
	r.RegisterListener(Read)

	err := r.HandlePermissionChange(Denied, Read)
	if !errors.Is(err, ErrEventEmitFailed) {
		t.Errorf("err = %v, want ErrEventEmitFailed", err)
	}
	if !errors.Is(err, errSinkClosed) {
		t.Errorf("err = %v, want it to wrap the sink error", err)
	}
}

func TestSetListenerActive(t *testing.T) {
	sink := &recordingSink{}
	r := NewRegistry(sink)
	id, _ := r.RegisterListener(Read)

	if err := r.SetListenerActive(id, false); err != nil {
		t.Fatalf("pause: %v", err)
	}
	if n := len(r.ActiveListeners()); n != 0 {
		t.Errorf("ActiveListeners() while paused = %d, want 0", n)
	}
	if lv := r.WatchedLevels(); len(lv) != 0 {
		t.Errorf("WatchedLevels() while paused = %v", lv)
	}
	r.HandlePermissionChange(Denied, Read)
	if n := len(sink.all()); n != 0 {
		t.Errorf("paused listener produced %d events", n)
	}

	if err := r.SetListenerActive(id, true); err != nil {
		t.Fatalf("resume: %v", err)
	}
	r.HandlePermissionChange(Authorized, Read)
	if n := len(sink.all()); n != 1 {
		t.Errorf("resumed listener produced %d events, want 1", n)
	}

	if err := r.SetListenerActive("missing", true); !errors.Is(err, ErrListenerNotFound) {
		t.Errorf("err = %v, want ErrListenerNotFound", err)
	}
}

func TestWatchedLevels(t *testing.T) {
	r := NewRegistry(&recordingSink{})
	r.RegisterListener(AddOnly)
	r.RegisterListener(Read)
	r.RegisterListener(AddOnly)

	got := r.WatchedLevels()
	if fmt.Sprint(got) != "[read addOnly]" {
		t.Errorf("WatchedLevels() = %v, want [read addOnly]", got)
	}
}

func TestClearAllListeners(t *testing.T) {
	sink := &recordingSink{}
	r := NewRegistry(sink)
	r.RegisterListener(Read)
	r.RegisterListener(ReadWrite)

	r.ClearAllListeners()
	if n := len(r.ActiveListeners()); n != 0 {
		t.Errorf("ActiveListeners() = %d, want 0", n)
	}
	r.HandlePermissionChange(Denied, Read)
	if n := len(sink.all()); n != 0 {
		t.Errorf("emitted %d events after clear", n)
	}
}

func TestChangeSourceStartedOnce(t *testing.T) {
	sink := &recordingSink{}
	src := &countingSource{}
	r := NewRegistry(sink, WithChangeSource(src))

	for i := 0; i < 3; i++ {
		if _, err := r.RegisterListener(ReadWrite); err != nil {
			t.Fatal(err)
		}
	}
	if src.starts != 1 {
		t.Errorf("source started %d times, want 1", src.starts)
	}

	src.onChange(ReadWrite, Limited)
	got := sink.all()
	if len(got) != 1 || got[0].payload.NewStatus != Limited {
		t.Errorf("events = %+v, want one limited", got)
	}
}

func TestChangeSourceStartFailure(t *testing.T) {
	src := &countingSource{err: errors.New("no notification center")}
	r := NewRegistry(&recordingSink{}, WithChangeSource(src))

	if _, err := r.RegisterListener(Read); err == nil {
		t.Fatal("RegisterListener succeeded with failing source")
	}
	if n := len(r.ActiveListeners()); n != 0 {
		t.Errorf("failed registration left %d listeners", n)
	}

	src.mu.Lock()
	src.err = nil
	src.mu.Unlock()
	if _, err := r.RegisterListener(Read); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if src.starts != 2 {
		t.Errorf("source started %d times, want 2", src.starts)
	}
}

func TestRegistryConcurrentAccess(t *testing.T) {
	r := NewRegistry(&recordingSink{}, WithRegistryClock(func() time.Time { return time.Unix(0, 0) }))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			l := AccessLevels()[i%3]
			for j := 0; j < 25; j++ {
				id, err := r.RegisterListener(l)
				if err != nil {
					t.Errorf("RegisterListener: %v", err)
					return
				}
				r.HandlePermissionChange(Denied, l)
				r.ActiveListeners()
				if err := r.UnregisterListener(id); err != nil {
					t.Errorf("UnregisterListener: %v", err)
				}
			}
		}(i)
	}
	wg.Wait()

	if n := len(r.ActiveListeners()); n != 0 {
		t.Errorf("ActiveListeners() = %d, want 0", n)
	}
}

func TestListenerLookupIncludesPaused(t *testing.T) {
	r := NewRegistry(&recordingSink{})
	id, _ := r.RegisterListener(AddOnly)
	r.SetListenerActive(id, false)

	info, ok := r.Listener(id)
	if !ok || info.AccessLevel != AddOnly || info.Active {
		t.Errorf("Listener(%s) = %+v, %v; want paused addOnly listener", id, info, ok)
	}
	if _, ok := r.Listener("missing"); ok {
		t.Error("Listener(missing) reported a listener")
	}
}
