package client

import (
	"time"

	"github.com/tomz197/whackamole/internal/draw"
	"github.com/tomz197/whackamole/internal/engine"
	"github.com/tomz197/whackamole/internal/input"
)

// GameState represents the current screen for a client.
type GameState int

const (
	GameStateStart    GameState = iota // Title screen
	GameStatePlaying                   // Active gameplay
	GameStatePaused                    // Engine stopped, score kept
	GameStateOver                      // Miss limit reached, show restart prompt
	GameStateShutdown                  // Server is shutting down
)

// flash highlights a cell for a short time after a hit or an escape.
type flash struct {
	cell  draw.Cell
	until time.Time
}

// ClientState holds the client's view of its game, rebuilt from engine
// notifications. Only the frame loop goroutine touches it.
type ClientState struct {
	Input      input.Input
	GameState  GameState
	Holes      []bool
	Score      int
	Misses     int
	FinalScore int
	NewRecord  bool // This game set the all-time record
	Running    bool // Client loop running

	flashes       []flash
	vanished      []int // Slots emptied by the last holes update, pending a miss
	prevGameState GameState
	delta         time.Duration // Frame delta time
	shutdownTimer float64       // Countdown before auto-disconnect on shutdown
	isInactive    bool          // Whether the client is in inactive warning state
	wasInactive   bool
}

// NewClientState creates a new initialized client state for a board of slots.
func NewClientState(slots int) *ClientState {
	return &ClientState{
		GameState: GameStateStart,
		Holes:     make([]bool, slots),
		flashes:   make([]flash, slots),
		Running:   true,
	}
}

// applyEvent folds one engine notification into the view.
func (s *ClientState) applyEvent(ev engine.Event, now time.Time, flashFor time.Duration) {
	switch ev.Kind {
	case engine.EventHoles:
		s.vanished = s.vanished[:0]
		for i := range min(len(ev.Holes), len(s.Holes)) {
			if s.Holes[i] && !ev.Holes[i] {
				s.vanished = append(s.vanished, i)
			}
		}
		s.Holes = ev.Holes
	case engine.EventScore:
		s.Score = ev.Value
		s.vanished = s.vanished[:0]
	case engine.EventMisses:
		if ev.Value > s.Misses {
			for _, i := range s.vanished {
				s.flash(i, draw.CellMiss, now, flashFor)
			}
		}
		s.Misses = ev.Value
		s.vanished = s.vanished[:0]
	case engine.EventGameOver:
		s.FinalScore = ev.Value
		// A reset or shutdown in the same frame wins over a late game over
		if s.GameState == GameStatePlaying {
			s.GameState = GameStateOver
		}
	}
}

func (s *ClientState) flash(i int, cell draw.Cell, now time.Time, d time.Duration) {
	if i < 0 || i >= len(s.flashes) {
		return
	}
	s.flashes[i] = flash{cell: cell, until: now.Add(d)}
}

// cells returns what each board cell shows at now.
func (s *ClientState) cells(now time.Time) []draw.Cell {
	cells := make([]draw.Cell, len(s.Holes))
	for i, occupied := range s.Holes {
		switch {
		case occupied:
			cells[i] = draw.CellMole
		case i < len(s.flashes) && now.Before(s.flashes[i].until):
			cells[i] = s.flashes[i].cell
		default:
			cells[i] = draw.CellEmpty
		}
	}
	return cells
}

// resetGame clears the per-game view before a new game.
func (s *ClientState) resetGame() {
	s.Score, s.Misses, s.FinalScore = 0, 0, 0
	s.NewRecord = false
	clear(s.Holes)
	clear(s.flashes)
	s.vanished = s.vanished[:0]
}
