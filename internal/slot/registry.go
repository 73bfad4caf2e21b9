// Package slot tracks per-hole occupancy and the expiry timer armed for it.
package slot

import "github.com/tomz197/whackamole/internal/clock"

// record is one hole. A record owns at most one pending timer, and only while occupied.
type record struct {
	occupied bool
	timer    clock.Timer
	serial   uint64 // Spawn instance currently occupying the slot
}

// Registry is a fixed arena of slot records indexed by slot number.
// It is not safe for concurrent use; the engine serialises access with the same
// mutex that guards score and misses.
type Registry struct {
	slots      []record
	occupied   int
	nextSerial uint64
}

// NewRegistry creates a registry of n empty slots.
func NewRegistry(n int) *Registry {
	if n < 0 {
		n = 0
	}
	return &Registry{slots: make([]record, n)}
}

// Len returns the number of slots.
func (r *Registry) Len() int {
	return len(r.slots)
}

// InRange reports whether i addresses a slot.
func (r *Registry) InRange(i int) bool {
	return i >= 0 && i < len(r.slots)
}

// Occupy marks slot i occupied under a fresh serial.
// Returns false if i is out of range or already occupied.
func (r *Registry) Occupy(i int) bool {
	if !r.InRange(i) || r.slots[i].occupied {
		return false
	}
	r.nextSerial++
	r.slots[i] = record{occupied: true, serial: r.nextSerial}
	r.occupied++
	return true
}

// Arm records the expiry timer for an occupied slot.
// Refuses empty slots and slots that already hold a timer.
func (r *Registry) Arm(i int, t clock.Timer) bool {
	if !r.InRange(i) || t == nil {
		return false
	}
	rec := &r.slots[i]
	if !rec.occupied || rec.timer != nil {
		return false
	}
	rec.timer = t
	return true
}

// Serial returns the spawn serial of an occupied slot, or 0.
func (r *Registry) Serial(i int) uint64 {
	if !r.InRange(i) || !r.slots[i].occupied {
		return 0
	}
	return r.slots[i].serial
}

// Vacate cancels any pending timer and clears slot i.
// Idempotent; returns true only for the call that actually cleared an occupied slot.
func (r *Registry) Vacate(i int) bool {
	if !r.InRange(i) {
		return false
	}
	rec := &r.slots[i]
	if rec.timer != nil {
		rec.timer.Stop()
		rec.timer = nil
	}
	if !rec.occupied {
		return false
	}
	rec.occupied = false
	rec.serial = 0
	r.occupied--
	return true
}

// VacateSerial clears slot i only while the given spawn instance still occupies it.
func (r *Registry) VacateSerial(i int, serial uint64) bool {
	if serial == 0 || r.Serial(i) != serial {
		return false
	}
	return r.Vacate(i)
}

// IsOccupied reports whether slot i holds a mole.
func (r *Registry) IsOccupied(i int) bool {
	return r.InRange(i) && r.slots[i].occupied
}

// CountOccupied returns the number of occupied slots.
func (r *Registry) CountOccupied() int {
	return r.occupied
}

// EmptyIndices returns the free slot indices in ascending order.
func (r *Registry) EmptyIndices() []int {
	empty := make([]int, 0, len(r.slots)-r.occupied)
	for i := range r.slots {
		if !r.slots[i].occupied {
			empty = append(empty, i)
		}
	}
	return empty
}

// Occupancy returns a copy of the occupancy vector.
func (r *Registry) Occupancy() []bool {
	out := make([]bool, len(r.slots))
	for i := range r.slots {
		out[i] = r.slots[i].occupied
	}
	return out
}

// Pending returns the number of armed expiry timers.
func (r *Registry) Pending() int {
	n := 0
	for i := range r.slots {
		if r.slots[i].timer != nil {
			n++
		}
	}
	return n
}

// Clear cancels every timer and vacates every slot. Returns how many were occupied.
func (r *Registry) Clear() int {
	cleared := 0
	for i := range r.slots {
		if r.Vacate(i) {
			cleared++
		}
	}
	return cleared
}
