// Package engine runs the whack-a-mole game: a fixed board of slots that a
// scheduler fills with short-lived moles, scored by hits and lost by expiries.
//
// All state lives behind one mutex. Timer callbacks and player taps race for
// it; whichever observes an occupied slot first resolves it and the other is a
// no-op. Every Start, Stop, Resume, Reset and game over bumps a session number
// so callbacks from an earlier session are inert even if already in flight.
package engine

import (
	"fmt"
	"io"
	"math/rand/v2"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/tomz197/whackamole/internal/clock"
	"github.com/tomz197/whackamole/internal/difficulty"
	"github.com/tomz197/whackamole/internal/slot"
)

// Status is the game lifecycle phase.
type Status int

const (
	StatusIdle     Status = iota // Fresh or reset
	StatusRunning                // Spawning and accepting hits
	StatusStopped                // Paused, score kept
	StatusGameOver               // Miss limit reached
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusRunning:
		return "running"
	case StatusStopped:
		return "stopped"
	case StatusGameOver:
		return "game-over"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Outcome is the result of a tap.
type Outcome int

const (
	OutcomeHit     Outcome = iota // Resolved a live mole
	OutcomeEmpty                  // Slot was empty, or lost the race to its expiry
	OutcomeInvalid                // Index out of range
	OutcomeIgnored                // Game not running
)

func (o Outcome) String() string {
	switch o {
	case OutcomeHit:
		return "hit"
	case OutcomeEmpty:
		return "empty"
	case OutcomeInvalid:
		return "invalid"
	case OutcomeIgnored:
		return "ignored"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Snapshot is an immutable copy of the game state.
type Snapshot struct {
	Status Status
	Score  int
	Misses int
	Spawns int
	Holes  []bool
	Params difficulty.Params
}

// Engine is the game state machine and spawn scheduler.
type Engine struct {
	mu  sync.Mutex
	cfg Config

	clock clock.Clock
	rng   Rand
	log   *log.Logger
	out   outbox

	slots   *slot.Registry
	status  Status
	score   int
	misses  int
	spawns  int
	session uint64

	tick   clock.Timer // Next scheduler tick
	refill clock.Timer // Pending refill check after a hit or miss
}

// New creates an idle engine.
func New(cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:    cfg,
		clock:  clock.Real{},
		slots:  slot.NewRegistry(cfg.Slots),
		status: StatusIdle,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.log == nil {
		e.log = log.New(io.Discard)
	}
	if e.rng == nil {
		seed := uint64(e.clock.Now().UnixNano())
		e.rng = rand.New(rand.NewPCG(seed, seed>>1|1))
	}
	return e, nil
}

// Config returns the rules the engine was built with.
func (e *Engine) Config() Config {
	return e.cfg
}

// Start begins a new game from any state, discarding the previous one.
func (e *Engine) Start() {
	e.mu.Lock()
	e.cancelAllLocked()
	e.session++
	e.score, e.misses, e.spawns = 0, 0, 0
	e.status = StatusRunning
	e.emitAllLocked()

	e.log.Info("game started", "slots", e.cfg.Slots, "max_misses", e.cfg.MaxMisses)
	e.spawnLocked()
	e.scheduleTickLocked()
	e.mu.Unlock()

	e.out.flush()
}

// Stop pauses a running game. Score and misses are kept; live moles are
// withdrawn without counting as misses.
func (e *Engine) Stop() {
	e.mu.Lock()
	if e.status != StatusRunning {
		e.mu.Unlock()
		return
	}
	e.session++
	e.status = StatusStopped
	if e.cancelAllLocked() > 0 {
		e.emitHolesLocked()
	}
	e.log.Debug("game stopped", "score", e.score, "misses", e.misses)
	e.mu.Unlock()

	e.out.flush()
}

// Resume continues a stopped game without resetting it.
func (e *Engine) Resume() {
	e.mu.Lock()
	if e.status != StatusStopped {
		e.mu.Unlock()
		return
	}
	e.session++
	e.status = StatusRunning
	e.log.Debug("game resumed", "score", e.score, "misses", e.misses)
	e.spawnLocked()
	e.scheduleTickLocked()
	e.mu.Unlock()

	e.out.flush()
}

// Reset returns to the zeroed idle state from anywhere. It does not start a game.
func (e *Engine) Reset() {
	e.mu.Lock()
	e.resetLocked()
	e.mu.Unlock()

	e.out.flush()
}

// Close resets the engine and drops its observer.
func (e *Engine) Close() {
	e.mu.Lock()
	e.resetLocked()
	e.mu.Unlock()

	e.out.flush()

	e.out.mu.Lock()
	e.out.observer = nil
	e.out.queue = nil
	e.out.mu.Unlock()
}

func (e *Engine) resetLocked() {
	e.cancelAllLocked()
	e.session++
	e.score, e.misses, e.spawns = 0, 0, 0
	e.status = StatusIdle
	e.emitAllLocked()
}

// Hit taps slot i and reports whether it resolved a live mole.
func (e *Engine) Hit(i int) bool {
	return e.Tap(i) == OutcomeHit
}

// Tap taps slot i.
func (e *Engine) Tap(i int) Outcome {
	e.mu.Lock()
	outcome := e.tapLocked(i)
	e.mu.Unlock()

	e.out.flush()
	return outcome
}

func (e *Engine) tapLocked(i int) Outcome {
	if !e.slots.InRange(i) {
		e.log.Debug("tap out of range", "slot", i, "slots", e.cfg.Slots)
		return OutcomeInvalid
	}
	if e.status != StatusRunning {
		return OutcomeIgnored
	}

	// Vacate cancels the expiry; an expiry already waiting on the lock sees an empty slot
	if !e.slots.Vacate(i) {
		if e.cfg.EmptyTap == TapCountsMiss {
			e.log.Debug("empty tap counted as miss", "slot", i)
			e.missLocked()
		}
		return OutcomeEmpty
	}

	e.score++
	e.log.Debug("mole hit", "slot", i, "score", e.score)
	e.emitHolesLocked()
	e.out.push(Event{Kind: EventScore, Value: e.score})
	e.scheduleRefillLocked()
	return OutcomeHit
}

// missLocked counts one miss and ends the game at the limit.
func (e *Engine) missLocked() {
	if e.misses >= e.cfg.MaxMisses {
		return
	}
	e.misses++
	e.out.push(Event{Kind: EventMisses, Value: e.misses})

	if e.misses >= e.cfg.MaxMisses {
		e.gameOverLocked()
		return
	}
	e.scheduleRefillLocked()
}

func (e *Engine) gameOverLocked() {
	e.session++
	e.status = StatusGameOver
	if e.cancelAllLocked() > 0 {
		e.emitHolesLocked()
	}
	e.log.Info("game over", "score", e.score, "spawns", e.spawns)
	e.out.push(Event{Kind: EventGameOver, Value: e.score})
}

// Status returns the lifecycle phase.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

// Snapshot returns a copy of the current state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Snapshot{
		Status: e.status,
		Score:  e.score,
		Misses: e.misses,
		Spawns: e.spawns,
		Holes:  e.slots.Occupancy(),
		Params: e.cfg.Curve.At(e.score),
	}
}

// PendingTimers returns every armed timer: tick, refill and per-slot expiries.
func (e *Engine) PendingTimers() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	n := e.slots.Pending()
	if e.tick != nil {
		n++
	}
	if e.refill != nil {
		n++
	}
	return n
}

func (e *Engine) emitHolesLocked() {
	e.out.push(Event{Kind: EventHoles, Holes: e.slots.Occupancy()})
}

func (e *Engine) emitAllLocked() {
	e.emitHolesLocked()
	e.out.push(Event{Kind: EventScore, Value: e.score})
	e.out.push(Event{Kind: EventMisses, Value: e.misses})
}
