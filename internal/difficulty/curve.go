// Package difficulty maps accumulated score to spawn timing and concurrency.
package difficulty

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrInvalidCurve is returned by Validate for unusable curve parameters.
var ErrInvalidCurve = errors.New("difficulty: invalid curve")

// Default curve parameters.
const (
	DefaultBaseSpawnInterval = 1200 * time.Millisecond
	DefaultMinSpawnInterval  = 350 * time.Millisecond
	DefaultBaseEventLifetime = 1000 * time.Millisecond
	DefaultMinEventLifetime  = 250 * time.Millisecond
	DefaultDecayRate         = 0.85
	DefaultStepSize          = 5  // Points per difficulty level
	DefaultConcurrencyStep   = 10 // Points per extra concurrent mole
)

// Params are the scheduling parameters for one score value.
type Params struct {
	Level            int
	SpawnInterval    time.Duration
	EventLifetime    time.Duration
	TargetConcurrent int
}

// Curve is an exponential decay with floors:
//
//	level    = score / StepSize
//	interval = max(MinSpawnInterval, BaseSpawnInterval * DecayRate^level)
//	lifetime = max(MinEventLifetime, BaseEventLifetime * DecayRate^level)
//	target   = min(Slots, 1 + score / ConcurrencyStep)
type Curve struct {
	Slots             int
	BaseSpawnInterval time.Duration
	MinSpawnInterval  time.Duration
	BaseEventLifetime time.Duration
	MinEventLifetime  time.Duration
	DecayRate         float64
	StepSize          int
	ConcurrencyStep   int
}

// Default returns the curve with default parameters for the given slot count.
func Default(slots int) Curve {
	return Curve{
		Slots:             slots,
		BaseSpawnInterval: DefaultBaseSpawnInterval,
		MinSpawnInterval:  DefaultMinSpawnInterval,
		BaseEventLifetime: DefaultBaseEventLifetime,
		MinEventLifetime:  DefaultMinEventLifetime,
		DecayRate:         DefaultDecayRate,
		StepSize:          DefaultStepSize,
		ConcurrencyStep:   DefaultConcurrencyStep,
	}
}

// Validate reports the first unusable parameter.
func (c Curve) Validate() error {
	switch {
	case c.Slots < 1:
		return fmt.Errorf("%w: slots %d < 1", ErrInvalidCurve, c.Slots)
	case c.MinSpawnInterval <= 0:
		return fmt.Errorf("%w: spawn interval floor must be positive", ErrInvalidCurve)
	case c.MinEventLifetime <= 0:
		return fmt.Errorf("%w: event lifetime floor must be positive", ErrInvalidCurve)
	case c.BaseSpawnInterval < c.MinSpawnInterval:
		return fmt.Errorf("%w: base spawn interval %v below floor %v", ErrInvalidCurve, c.BaseSpawnInterval, c.MinSpawnInterval)
	case c.BaseEventLifetime < c.MinEventLifetime:
		return fmt.Errorf("%w: base event lifetime %v below floor %v", ErrInvalidCurve, c.BaseEventLifetime, c.MinEventLifetime)
	case !(c.DecayRate > 0 && c.DecayRate < 1):
		return fmt.Errorf("%w: decay rate %v outside (0,1)", ErrInvalidCurve, c.DecayRate)
	case c.StepSize < 1:
		return fmt.Errorf("%w: step size %d < 1", ErrInvalidCurve, c.StepSize)
	case c.ConcurrencyStep < 1:
		return fmt.Errorf("%w: concurrency step %d < 1", ErrInvalidCurve, c.ConcurrencyStep)
	}
	return nil
}

// Level returns the difficulty level reached at score.
func (c Curve) Level(score int) int {
	if score <= 0 || c.StepSize < 1 {
		return 0
	}
	return score / c.StepSize
}

// At returns the parameters for score. Negative scores are treated as zero.
func (c Curve) At(score int) Params {
	if score < 0 {
		score = 0
	}
	level := c.Level(score)
	factor := math.Pow(c.DecayRate, float64(level))

	return Params{
		Level:            level,
		SpawnInterval:    decay(c.BaseSpawnInterval, c.MinSpawnInterval, factor),
		EventLifetime:    decay(c.BaseEventLifetime, c.MinEventLifetime, factor),
		TargetConcurrent: c.targetConcurrent(score),
	}
}

func (c Curve) targetConcurrent(score int) int {
	step := c.ConcurrencyStep
	if step < 1 {
		step = 1
	}
	target := 1 + score/step
	if target > c.Slots {
		target = c.Slots
	}
	return target
}

// decay scales base by factor, clamped to floor.
func decay(base, floor time.Duration, factor float64) time.Duration {
	d := time.Duration(float64(base) * factor)
	if d < floor {
		return floor
	}
	return d
}
