package engine

import (
	"sync"
	"testing"
	"time"

	"github.com/tomz197/whackamole/internal/clock"
	"github.com/tomz197/whackamole/internal/difficulty"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// seqRand replays a fixed sequence of picks, cycling when exhausted.
type seqRand struct {
	mu   sync.Mutex
	seq  []int
	next int
}

func (r *seqRand) IntN(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.seq) == 0 {
		return 0
	}
	v := r.seq[r.next%len(r.seq)]
	r.next++
	return v % n
}

// recorder is an Observer that keeps every event it sees.
type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) add(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) HolesChanged(holes []bool) { r.add(Event{Kind: EventHoles, Holes: holes}) }
func (r *recorder) ScoreChanged(score int)    { r.add(Event{Kind: EventScore, Value: score}) }
func (r *recorder) MissesChanged(misses int)  { r.add(Event{Kind: EventMisses, Value: misses}) }
func (r *recorder) GameOver(finalScore int)   { r.add(Event{Kind: EventGameOver, Value: finalScore}) }

func (r *recorder) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

func (r *recorder) count(kind EventKind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, ev := range r.events {
		if ev.Kind == kind {
			n++
		}
	}
	return n
}

// last returns the most recent event of kind.
func (r *recorder) last(kind EventKind) (Event, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.events) - 1; i >= 0; i-- {
		if r.events[i].Kind == kind {
			return r.events[i], true
		}
	}
	return Event{}, false
}

// newTestEngine builds an engine on a fake clock with scripted placement.
func newTestEngine(t *testing.T, cfg Config, picks ...int) (*Engine, *clock.Fake, *recorder) {
	t.Helper()
	fake := clock.NewFake(epoch)
	rec := &recorder{}
	e, err := New(cfg,
		WithClock(fake),
		WithRand(&seqRand{seq: picks}),
		WithObserver(rec),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return e, fake, rec
}

// testConfig returns the default rules with a curve built for slots.
func testConfig(slots int) Config {
	cfg := DefaultConfig()
	cfg.Slots = slots
	cfg.Curve = difficulty.Default(slots)
	return cfg
}

func occupiedIndices(holes []bool) []int {
	var out []int
	for i, h := range holes {
		if h {
			out = append(out, i)
		}
	}
	return out
}

func allEmpty(holes []bool) bool {
	for _, h := range holes {
		if h {
			return false
		}
	}
	return true
}
