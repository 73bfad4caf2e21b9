// Package config centralizes all tunable game parameters.
package config

import (
	"errors"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tomz197/whackamole/internal/config"
	"github.com/tomz197/whackamole/internal/difficulty"
	"github.com/tomz197/whackamole/internal/engine"
)

// Board layout
const (
	MaxBoardSlots = 33 // One per slot key
)

// Player
const (
	MaxUsernameLength = 16 // Maximum display length for player usernames
	LeaderboardSize   = 5
)

// Shutdown
const (
	ShutdownDisplaySeconds = 10.0 // Seconds to show shutdown message before auto-disconnect
)

// Inactivity
const (
	InactivityWarnUser       = 90  // Seconds
	InactivityDisconnectUser = 120 // Seconds
)

// Client rendering
const (
	ClientTargetFPS       = 30
	ClientTargetFrameTime = time.Second / ClientTargetFPS
	HitFlashDuration      = 150 * time.Millisecond // How long a hit or miss stays highlighted
)

// Environment keys for the game rules.
const (
	EnvSlots            = "WHACK_SLOTS"
	EnvMaxMisses        = "WHACK_MAX_MISSES"
	EnvSpawnInterval    = "WHACK_SPAWN_INTERVAL"
	EnvMinSpawnInterval = "WHACK_MIN_SPAWN_INTERVAL"
	EnvEventLifetime    = "WHACK_EVENT_LIFETIME"
	EnvMinEventLifetime = "WHACK_MIN_EVENT_LIFETIME"
	EnvDecayRate        = "WHACK_DECAY_RATE"
	EnvLevelStep        = "WHACK_LEVEL_STEP"
	EnvConcurrencyStep  = "WHACK_CONCURRENCY_STEP"
	EnvRefillDelay      = "WHACK_REFILL_DELAY"
	EnvEmptyTap         = "WHACK_EMPTY_TAP"
)

// Engine builds the game rules from the environment, starting from the defaults.
// Every malformed variable is reported; the result is validated.
func Engine() (engine.Config, error) {
	var errs []error
	collect := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	cfg := engine.DefaultConfig()

	slots, err := config.GetEnvInt(EnvSlots, cfg.Slots)
	collect(err)
	if slots > MaxBoardSlots {
		errs = append(errs, errors.New(EnvSlots+": more slots than keys"))
	}
	cfg.Slots = slots
	cfg.Curve = difficulty.Default(slots)

	cfg.MaxMisses, err = config.GetEnvInt(EnvMaxMisses, cfg.MaxMisses)
	collect(err)
	cfg.Curve.BaseSpawnInterval, err = config.GetEnvDuration(EnvSpawnInterval, cfg.Curve.BaseSpawnInterval)
	collect(err)
	cfg.Curve.MinSpawnInterval, err = config.GetEnvDuration(EnvMinSpawnInterval, cfg.Curve.MinSpawnInterval)
	collect(err)
	cfg.Curve.BaseEventLifetime, err = config.GetEnvDuration(EnvEventLifetime, cfg.Curve.BaseEventLifetime)
	collect(err)
	cfg.Curve.MinEventLifetime, err = config.GetEnvDuration(EnvMinEventLifetime, cfg.Curve.MinEventLifetime)
	collect(err)
	cfg.Curve.DecayRate, err = config.GetEnvFloat(EnvDecayRate, cfg.Curve.DecayRate)
	collect(err)
	cfg.Curve.StepSize, err = config.GetEnvInt(EnvLevelStep, cfg.Curve.StepSize)
	collect(err)
	cfg.Curve.ConcurrencyStep, err = config.GetEnvInt(EnvConcurrencyStep, cfg.Curve.ConcurrencyStep)
	collect(err)
	cfg.RefillDelay, err = config.GetEnvDuration(EnvRefillDelay, cfg.RefillDelay)
	collect(err)
	cfg.EmptyTap, err = engine.ParseTapPolicy(config.GetEnv(EnvEmptyTap, ""))
	collect(err)

	if len(errs) > 0 {
		return cfg, errors.Join(errs...)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// NewLogger returns a charm logger writing to w at LOG_LEVEL (default info).
func NewLogger(w io.Writer, prefix string) *log.Logger {
	level, err := log.ParseLevel(config.GetEnv("LOG_LEVEL", "info"))
	if err != nil {
		level = log.InfoLevel
	}
	return log.NewWithOptions(w, log.Options{
		Level:           level,
		Prefix:          prefix,
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
	})
}

// OpenLogFile opens LOG_FILE for appending. Without LOG_FILE it returns
// io.Discard, since the local game owns the terminal.
func OpenLogFile() (io.Writer, func() error, error) {
	path := config.GetEnv("LOG_FILE", "")
	if path == "" {
		return io.Discard, func() error { return nil }, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}
