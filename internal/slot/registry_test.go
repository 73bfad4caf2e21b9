package slot

import (
	"testing"
	"time"

	"github.com/tomz197/whackamole/internal/clock"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestOccupyRejectsOccupiedAndOutOfRange(t *testing.T) {
	r := NewRegistry(3)

	if !r.Occupy(1) {
		t.Fatal("Expected first Occupy(1) to succeed")
	}
	if r.Occupy(1) {
		t.Error("Occupy on an occupied slot must fail")
	}
	if r.Occupy(-1) || r.Occupy(3) {
		t.Error("Occupy out of range must fail")
	}
	if r.CountOccupied() != 1 {
		t.Errorf("Expected 1 occupied, got %d", r.CountOccupied())
	}
}

func TestVacateIsIdempotentAndCancelsTimer(t *testing.T) {
	c := clock.NewFake(epoch)
	r := NewRegistry(3)
	fired := false

	r.Occupy(2)
	if !r.Arm(2, c.AfterFunc(time.Second, func() { fired = true })) {
		t.Fatal("Expected Arm to succeed on occupied slot")
	}
	if r.Pending() != 1 {
		t.Fatalf("Expected 1 pending timer, got %d", r.Pending())
	}

	if !r.Vacate(2) {
		t.Fatal("Expected first Vacate to win")
	}
	if r.Vacate(2) {
		t.Error("Second Vacate must report no transition")
	}
	if r.Vacate(99) {
		t.Error("Vacate out of range must be a no-op")
	}

	c.Advance(2 * time.Second)
	if fired {
		t.Error("Timer fired after its slot was vacated")
	}
	if r.Pending() != 0 || c.Pending() != 0 {
		t.Errorf("Expected no pending timers, registry=%d clock=%d", r.Pending(), c.Pending())
	}
}

func TestArmRefusesDoubleArmingAndEmptySlots(t *testing.T) {
	c := clock.NewFake(epoch)
	r := NewRegistry(2)

	if r.Arm(0, c.AfterFunc(time.Second, func() {})) {
		t.Error("Arm on empty slot must fail")
	}

	r.Occupy(0)
	if !r.Arm(0, c.AfterFunc(time.Second, func() {})) {
		t.Fatal("Expected Arm to succeed")
	}
	if r.Arm(0, c.AfterFunc(time.Second, func() {})) {
		t.Error("Arm must refuse a second timer for the same spawn")
	}
	if r.Arm(0, nil) {
		t.Error("Arm must refuse a nil timer")
	}
}

func TestVacateSerialOnlyMatchesCurrentSpawn(t *testing.T) {
	r := NewRegistry(1)

	r.Occupy(0)
	first := r.Serial(0)
	r.Vacate(0)
	r.Occupy(0)
	second := r.Serial(0)

	if first == second {
		t.Fatal("Expected a new serial for a new spawn")
	}
	if r.VacateSerial(0, first) {
		t.Error("Stale serial must not vacate the new spawn")
	}
	if !r.IsOccupied(0) {
		t.Fatal("Slot should still be occupied")
	}
	if !r.VacateSerial(0, second) {
		t.Error("Current serial should vacate")
	}
	if r.VacateSerial(0, second) {
		t.Error("Repeat VacateSerial must be a no-op")
	}
	if r.VacateSerial(0, 0) {
		t.Error("Zero serial must never match")
	}
}

func TestSerialsSurviveClear(t *testing.T) {
	r := NewRegistry(1)
	r.Occupy(0)
	before := r.Serial(0)
	r.Clear()
	r.Occupy(0)

	if r.Serial(0) == before {
		t.Error("Serial reused after Clear")
	}
}

func TestEmptyIndicesAndOccupancy(t *testing.T) {
	r := NewRegistry(5)
	r.Occupy(0)
	r.Occupy(3)

	empty := r.EmptyIndices()
	want := []int{1, 2, 4}
	if len(empty) != len(want) {
		t.Fatalf("Expected %v, got %v", want, empty)
	}
	for i := range want {
		if empty[i] != want[i] {
			t.Fatalf("Expected %v, got %v", want, empty)
		}
	}

	occ := r.Occupancy()
	occ[0] = false
	if !r.IsOccupied(0) {
		t.Error("Occupancy must return a copy")
	}
}

func TestClearCancelsEverything(t *testing.T) {
	c := clock.NewFake(epoch)
	r := NewRegistry(4)
	fires := 0

	for i := 0; i < 3; i++ {
		r.Occupy(i)
		r.Arm(i, c.AfterFunc(time.Second, func() { fires++ }))
	}

	if n := r.Clear(); n != 3 {
		t.Errorf("Expected 3 cleared, got %d", n)
	}
	if r.CountOccupied() != 0 || r.Pending() != 0 {
		t.Errorf("Expected empty registry, occupied=%d pending=%d", r.CountOccupied(), r.Pending())
	}

	c.Advance(time.Minute)
	if fires != 0 {
		t.Errorf("Expected no fires after Clear, got %d", fires)
	}
}
