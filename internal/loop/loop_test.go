package loop

import (
	"bufio"
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/muesli/termenv"

	"github.com/tomz197/whackamole/internal/engine"
)

func TestRunQuitsOnKey(t *testing.T) {
	var out bytes.Buffer
	done := make(chan error, 1)
	go func() {
		done <- Run(bufio.NewReader(strings.NewReader("q")), &out, Options{
			Rules:        engine.DefaultConfig(),
			Username:     "local",
			Profile:      termenv.Ascii,
			TermSizeFunc: func() (int, int, error) { return 80, 30, nil },
		})
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not return after q")
	}
	if !strings.Contains(out.String(), "Press SPACE to Start") && !strings.Contains(out.String(), "Controls") {
		t.Error("Title screen was never drawn")
	}
}

func TestRunRejectsInvalidRules(t *testing.T) {
	rules := engine.DefaultConfig()
	rules.Slots = 0
	err := Run(bufio.NewReader(strings.NewReader("")), &bytes.Buffer{}, Options{Rules: rules})
	if err == nil {
		t.Fatal("Expected error for invalid rules")
	}
}
