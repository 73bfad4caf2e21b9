package clock

import (
	"testing"
	"time"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestFakeFiresInDeadlineOrder(t *testing.T) {
	c := NewFake(epoch)
	var order []int

	c.AfterFunc(30*time.Millisecond, func() { order = append(order, 3) })
	c.AfterFunc(10*time.Millisecond, func() { order = append(order, 1) })
	c.AfterFunc(20*time.Millisecond, func() { order = append(order, 2) })

	c.Advance(25 * time.Millisecond)
	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Fatalf("Expected [1 2] after 25ms, got %v", order)
	}
	if c.Pending() != 1 {
		t.Errorf("Expected 1 pending timer, got %d", c.Pending())
	}

	c.Advance(5 * time.Millisecond)
	if len(order) != 3 || order[2] != 3 {
		t.Fatalf("Expected [1 2 3], got %v", order)
	}
	if !c.Now().Equal(epoch.Add(30 * time.Millisecond)) {
		t.Errorf("Expected clock at +30ms, got %v", c.Now().Sub(epoch))
	}
}

func TestFakeStopPreventsFire(t *testing.T) {
	c := NewFake(epoch)
	fired := false
	timer := c.AfterFunc(time.Second, func() { fired = true })

	if !timer.Stop() {
		t.Fatal("Expected Stop to report a pending timer")
	}
	if timer.Stop() {
		t.Error("Expected second Stop to return false")
	}

	c.Advance(2 * time.Second)
	if fired {
		t.Error("Stopped timer fired")
	}
	if c.Pending() != 0 {
		t.Errorf("Expected 0 pending timers, got %d", c.Pending())
	}
}

func TestFakeStopAfterFireReturnsFalse(t *testing.T) {
	c := NewFake(epoch)
	timer := c.AfterFunc(time.Millisecond, func() {})
	c.Advance(time.Millisecond)

	if timer.Stop() {
		t.Error("Expected Stop on a fired timer to return false")
	}
}

func TestFakeCallbackArmsWithinWindow(t *testing.T) {
	c := NewFake(epoch)
	fires := 0

	var rearm func()
	rearm = func() {
		fires++
		c.AfterFunc(100*time.Millisecond, rearm)
	}
	c.AfterFunc(100*time.Millisecond, rearm)

	c.Advance(350 * time.Millisecond)
	if fires != 3 {
		t.Errorf("Expected 3 fires in 350ms, got %d", fires)
	}

	next, ok := c.NextDeadline()
	if !ok {
		t.Fatal("Expected a pending deadline")
	}
	if want := epoch.Add(400 * time.Millisecond); !next.Equal(want) {
		t.Errorf("Expected next deadline %v, got %v", want, next)
	}
}

func TestFakeZeroDelayFiresOnAdvanceZero(t *testing.T) {
	c := NewFake(epoch)
	fired := false
	c.AfterFunc(0, func() { fired = true })

	if fired {
		t.Fatal("Zero-delay timer fired before Advance")
	}
	c.Advance(0)
	if !fired {
		t.Error("Expected zero-delay timer to fire on Advance(0)")
	}
}

func TestFakeStopFromCallback(t *testing.T) {
	c := NewFake(epoch)
	fired := false
	later := c.AfterFunc(20*time.Millisecond, func() { fired = true })
	c.AfterFunc(10*time.Millisecond, func() { later.Stop() })

	c.Advance(time.Second)
	if fired {
		t.Error("Timer stopped by an earlier callback still fired")
	}
}
