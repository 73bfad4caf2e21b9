package engine

import (
	"sync"
	"testing"
	"time"

	"github.com/tomz197/whackamole/internal/difficulty"
)

// TestConcurrentTapsOnRealClock hammers the board from several goroutines
// while real timers expire moles. Run with -race.
func TestConcurrentTapsOnRealClock(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxMisses = 1 << 30
	cfg.RefillDelay = time.Millisecond
	cfg.Curve = difficulty.Curve{
		Slots:             cfg.Slots,
		BaseSpawnInterval: 5 * time.Millisecond,
		MinSpawnInterval:  2 * time.Millisecond,
		BaseEventLifetime: 4 * time.Millisecond,
		MinEventLifetime:  2 * time.Millisecond,
		DecayRate:         0.9,
		StepSize:          5,
		ConcurrencyStep:   3,
	}

	rec := &recorder{}
	e, err := New(cfg, WithObserver(rec))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	e.Start()

	var wg sync.WaitGroup
	stop := make(chan struct{})
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(offset int) {
			defer wg.Done()
			for i := offset; ; i++ {
				select {
				case <-stop:
					return
				default:
				}
				e.Tap(i % cfg.Slots)
				if i%16 == 0 {
					time.Sleep(100 * time.Microsecond)
				}
			}
		}(w)
	}

	time.Sleep(150 * time.Millisecond)
	close(stop)
	wg.Wait()
	e.Stop()

	snap := e.Snapshot()
	if snap.Status != StatusStopped {
		t.Fatalf("Expected stopped, got %v", snap.Status)
	}
	if snap.Score+snap.Misses > snap.Spawns {
		t.Errorf("Resolved %d moles but only %d spawned", snap.Score+snap.Misses, snap.Spawns)
	}
	if !allEmpty(snap.Holes) {
		t.Error("Expected stop to withdraw every mole")
	}
	if n := e.PendingTimers(); n != 0 {
		t.Errorf("Expected no pending timers, got %d", n)
	}
	if rec.count(EventGameOver) != 0 {
		t.Error("Unexpected game over")
	}

	// Give any callback that already fired a chance to run; it must stay inert
	time.Sleep(20 * time.Millisecond)
	after := e.Snapshot()
	if after.Score != snap.Score || after.Misses != snap.Misses || after.Spawns != snap.Spawns {
		t.Errorf("State changed after stop: %+v -> %+v", snap, after)
	}
}
