package highscore

import (
	"errors"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Tracker caches the best record and writes through to a Store when it is beaten.
type Tracker struct {
	mu    sync.Mutex
	store Store
	best  Record
	now   func() time.Time
	log   *log.Logger
}

// NewTracker reads the stored record once. A corrupt store is logged and
// treated as empty so the next save replaces it.
func NewTracker(store Store, logger *log.Logger) (*Tracker, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	t := &Tracker{store: store, now: time.Now, log: logger}

	rec, err := store.Load()
	switch {
	case err == nil:
		t.best = rec
	case errors.Is(err, ErrCorrupt):
		logger.Warn("discarding unreadable high score", "err", err)
	default:
		return nil, err
	}
	return t, nil
}

// Best returns the current record.
func (t *Tracker) Best() Record {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.best
}

// Submit records score for player if it beats the best. Reports whether it did.
// The cached record is updated even when the write fails.
func (t *Tracker) Submit(player string, score int) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if score <= t.best.Score {
		return false, nil
	}
	t.best = Record{Score: score, Player: player, At: t.now().UTC()}
	t.log.Info("new high score", "player", player, "score", score)

	if err := t.store.Save(t.best); err != nil {
		t.log.Error("saving high score", "err", err)
		return true, err
	}
	return true, nil
}
