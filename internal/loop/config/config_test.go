package config

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/tomz197/whackamole/internal/engine"
)

func TestEngineDefaults(t *testing.T) {
	cfg, err := Engine()
	if err != nil {
		t.Fatalf("Engine: %v", err)
	}
	def := engine.DefaultConfig()
	if cfg.Slots != def.Slots || cfg.MaxMisses != def.MaxMisses || cfg.RefillDelay != def.RefillDelay {
		t.Errorf("Expected defaults %+v, got %+v", def, cfg)
	}
	if cfg.Curve != def.Curve {
		t.Errorf("Expected default curve %+v, got %+v", def.Curve, cfg.Curve)
	}
}

func TestEngineFromEnv(t *testing.T) {
	t.Setenv(EnvSlots, "16")
	t.Setenv(EnvMaxMisses, "5")
	t.Setenv(EnvSpawnInterval, "900ms")
	t.Setenv(EnvEventLifetime, "800")
	t.Setenv(EnvDecayRate, "0.9")
	t.Setenv(EnvEmptyTap, "miss")

	cfg, err := Engine()
	if err != nil {
		t.Fatalf("Engine: %v", err)
	}
	if cfg.Slots != 16 || cfg.Curve.Slots != 16 {
		t.Errorf("Expected 16 slots, got %d/%d", cfg.Slots, cfg.Curve.Slots)
	}
	if cfg.MaxMisses != 5 {
		t.Errorf("Expected 5 misses, got %d", cfg.MaxMisses)
	}
	if cfg.Curve.BaseSpawnInterval != 900*time.Millisecond {
		t.Errorf("Expected 900ms, got %v", cfg.Curve.BaseSpawnInterval)
	}
	if cfg.Curve.BaseEventLifetime != 800*time.Millisecond {
		t.Errorf("Expected 800ms, got %v", cfg.Curve.BaseEventLifetime)
	}
	if cfg.Curve.DecayRate != 0.9 {
		t.Errorf("Expected 0.9, got %v", cfg.Curve.DecayRate)
	}
	if cfg.EmptyTap != engine.TapCountsMiss {
		t.Errorf("Expected miss policy, got %v", cfg.EmptyTap)
	}
}

func TestEngineRejectsBadEnv(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{EnvSlots, "nine"},
		{EnvSlots, "0"},
		{EnvSlots, "40"},
		{EnvMaxMisses, "-1"},
		{EnvDecayRate, "2"},
		{EnvRefillDelay, "later"},
		{EnvEmptyTap, "explode"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := Engine(); err == nil {
				t.Error("Expected error")
			}
		})
	}
}

func TestEngineInvalidIsConfigError(t *testing.T) {
	t.Setenv(EnvMaxMisses, "0")
	_, err := Engine()
	if !errors.Is(err, engine.ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}
}

func TestNewLoggerLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "warn")
	var buf bytes.Buffer
	logger := NewLogger(&buf, "test")
	logger.Info("hidden")
	logger.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("Info logged at warn level")
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "test") {
		t.Errorf("Expected prefixed warning, got %q", out)
	}
}
