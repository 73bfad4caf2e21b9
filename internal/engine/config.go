package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tomz197/whackamole/internal/clock"
	"github.com/tomz197/whackamole/internal/difficulty"
)

// ErrInvalidConfig is returned by New for unusable configuration.
var ErrInvalidConfig = errors.New("engine: invalid config")

// Defaults taken from the classic 3x3 board.
const (
	DefaultSlots       = 9
	DefaultMaxMisses   = 3
	DefaultRefillDelay = 300 * time.Millisecond
)

// TapPolicy decides what a tap on an empty slot does.
type TapPolicy int

const (
	TapIgnore     TapPolicy = iota // Empty tap is a no-op
	TapCountsMiss                  // Empty tap costs a miss like an expiry
)

func (p TapPolicy) String() string {
	switch p {
	case TapIgnore:
		return "ignore"
	case TapCountsMiss:
		return "miss"
	default:
		return fmt.Sprintf("TapPolicy(%d)", int(p))
	}
}

// ParseTapPolicy parses "ignore" or "miss".
func ParseTapPolicy(s string) (TapPolicy, error) {
	switch s {
	case "", "ignore":
		return TapIgnore, nil
	case "miss":
		return TapCountsMiss, nil
	}
	return TapIgnore, fmt.Errorf("%w: unknown empty tap policy %q", ErrInvalidConfig, s)
}

// Config holds the game rules.
type Config struct {
	Slots         int
	MaxMisses     int
	Curve         difficulty.Curve
	RefillDelay   time.Duration // Delay between a resolved mole and the refill check
	SpawnAttempts int           // Random probes before the linear scan; 0 means 2*Slots
	EmptyTap      TapPolicy
}

// DefaultConfig returns the 9 slot, 3 miss game.
func DefaultConfig() Config {
	return Config{
		Slots:       DefaultSlots,
		MaxMisses:   DefaultMaxMisses,
		Curve:       difficulty.Default(DefaultSlots),
		RefillDelay: DefaultRefillDelay,
	}
}

// Validate checks the rules and the embedded curve.
func (c Config) Validate() error {
	if c.Slots < 1 {
		return fmt.Errorf("%w: slots %d < 1", ErrInvalidConfig, c.Slots)
	}
	if c.MaxMisses < 1 {
		return fmt.Errorf("%w: max misses %d < 1", ErrInvalidConfig, c.MaxMisses)
	}
	if c.Curve.Slots != c.Slots {
		return fmt.Errorf("%w: curve sized for %d slots, board has %d", ErrInvalidConfig, c.Curve.Slots, c.Slots)
	}
	if c.RefillDelay < 0 {
		return fmt.Errorf("%w: negative refill delay", ErrInvalidConfig)
	}
	if c.SpawnAttempts < 0 {
		return fmt.Errorf("%w: negative spawn attempts", ErrInvalidConfig)
	}
	if err := c.Curve.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

func (c Config) spawnAttempts() int {
	if c.SpawnAttempts > 0 {
		return c.SpawnAttempts
	}
	return 2 * c.Slots
}

// Rand is the random source used to place moles.
type Rand interface {
	IntN(n int) int
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the timer facility. Defaults to clock.Real.
func WithClock(c clock.Clock) Option {
	return func(e *Engine) {
		e.clock = c
	}
}

// WithRand sets the placement random source.
func WithRand(r Rand) Option {
	return func(e *Engine) {
		e.rng = r
	}
}

// WithObserver sets the outbound notification port.
func WithObserver(o Observer) Option {
	return func(e *Engine) {
		e.out.observer = o
	}
}

// WithLogger sets the engine logger. Defaults to a discarding logger.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		e.log = l
	}
}
