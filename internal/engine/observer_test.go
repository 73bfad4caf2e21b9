package engine

import (
	"testing"
	"time"
)

func TestEventsArriveInMutationOrder(t *testing.T) {
	e, _, rec := newTestEngine(t, DefaultConfig(), 2)
	e.Start()
	e.Hit(2)

	rec.mu.Lock()
	kinds := make([]EventKind, len(rec.events))
	for i, ev := range rec.events {
		kinds[i] = ev.Kind
	}
	rec.mu.Unlock()

	// start: holes, score, misses, spawn holes; hit: holes, score
	want := []EventKind{EventHoles, EventScore, EventMisses, EventHoles, EventHoles, EventScore}
	if len(kinds) != len(want) {
		t.Fatalf("Expected %v, got %v", want, kinds)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("Expected %v, got %v", want, kinds)
		}
	}
}

func TestHolesEventsAreCopies(t *testing.T) {
	e, _, rec := newTestEngine(t, DefaultConfig(), 1)
	e.Start()

	ev, ok := rec.last(EventHoles)
	if !ok {
		t.Fatal("Expected a holes event")
	}
	ev.Holes[1] = false
	ev.Holes[0] = true

	snap := e.Snapshot()
	if !snap.Holes[1] || snap.Holes[0] {
		t.Error("Observer mutation leaked into engine state")
	}
}

// TestObserverMayReenterEngine checks that a callback can drive the engine
// without deadlocking, here by restarting on game over.
func TestObserverMayReenterEngine(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxMisses = 1
	restarts := 0

	var e *Engine
	obs := ObserverFuncs{
		OnGameOver: func(int) {
			if restarts == 0 {
				restarts++
				e.Start()
			}
		},
	}
	e, fake, rec := newTestEngine(t, cfg, 0)
	e.out.observer = Multi(rec, obs)

	e.Start()
	fake.Advance(cfg.Curve.BaseEventLifetime)

	if restarts != 1 {
		t.Fatalf("Expected one restart, got %d", restarts)
	}
	if e.Snapshot().Status != StatusRunning {
		t.Errorf("Expected running after reentrant restart, got %v", e.Snapshot().Status)
	}

	// Events from the nested Start are delivered after the game over
	ev, _ := rec.last(EventMisses)
	if ev.Value != 0 {
		t.Errorf("Expected misses reset to 0 last, got %d", ev.Value)
	}
}

func TestMailboxDrainsInOrder(t *testing.T) {
	m := NewMailbox()
	m.ScoreChanged(1)
	m.MissesChanged(2)
	m.GameOver(3)

	select {
	case <-m.Ready():
	case <-time.After(time.Second):
		t.Fatal("Expected ready signal")
	}

	events := m.Drain()
	if len(events) != 3 {
		t.Fatalf("Expected 3 events, got %d", len(events))
	}
	if events[0].Kind != EventScore || events[1].Kind != EventMisses || events[2].Kind != EventGameOver {
		t.Errorf("Unexpected order: %v", events)
	}
	if events[2].Value != 3 {
		t.Errorf("Expected final score 3, got %d", events[2].Value)
	}
	if len(m.Drain()) != 0 {
		t.Error("Expected empty mailbox after drain")
	}
}

func TestMailboxFromTimerGoroutines(t *testing.T) {
	m := NewMailbox()
	cfg := DefaultConfig()
	e, fake, _ := newTestEngine(t, cfg, 0, 1, 2)
	e.out.observer = m

	done := make(chan struct{})
	go func() {
		defer close(done)
		e.Start()
		fake.Advance(time.Minute)
	}()
	<-done

	var over []Event
	for _, ev := range m.Drain() {
		if ev.Kind == EventGameOver {
			over = append(over, ev)
		}
	}
	if len(over) != 1 {
		t.Errorf("Expected one game over through mailbox, got %d", len(over))
	}
}

func TestMultiGivesEachObserverItsOwnHoles(t *testing.T) {
	var a, b []bool
	m := Multi(
		ObserverFuncs{OnHoles: func(h []bool) { a = h }},
		nil,
		ObserverFuncs{OnHoles: func(h []bool) { b = h }},
	)
	m.HolesChanged([]bool{true, false})
	a[0] = false

	if !b[0] {
		t.Error("Observers share the holes slice")
	}
}

func TestEventDeliver(t *testing.T) {
	var got []int
	obs := ObserverFuncs{
		OnScore:    func(v int) { got = append(got, v) },
		OnMisses:   func(v int) { got = append(got, 10+v) },
		OnGameOver: func(v int) { got = append(got, 100+v) },
	}
	Event{Kind: EventScore, Value: 1}.Deliver(obs)
	Event{Kind: EventMisses, Value: 2}.Deliver(obs)
	Event{Kind: EventGameOver, Value: 3}.Deliver(obs)
	Event{Kind: EventHoles, Holes: []bool{true}}.Deliver(obs)

	want := []int{1, 12, 103}
	if len(got) != len(want) {
		t.Fatalf("Expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Expected %v, got %v", want, got)
		}
	}
}
