package engine

// Scheduler side of the engine: the tick task, refill checks and per-slot expiry timers.
// Every callback captures the session it was armed in and exits when it no longer matches.

// onTick runs one scheduler cycle and arms the next one at the current interval.
func (e *Engine) onTick(session uint64) {
	e.mu.Lock()
	if session != e.session || e.status != StatusRunning {
		e.mu.Unlock()
		return
	}
	e.tick = nil
	e.spawnLocked()
	e.scheduleTickLocked()
	e.mu.Unlock()

	e.out.flush()
}

// onRefill tops the board up between ticks.
func (e *Engine) onRefill(session uint64) {
	e.mu.Lock()
	if session != e.session || e.status != StatusRunning {
		e.mu.Unlock()
		return
	}
	e.refill = nil
	e.spawnLocked()
	e.mu.Unlock()

	e.out.flush()
}

// onExpire resolves slot i as a miss if the same spawn still occupies it.
func (e *Engine) onExpire(session uint64, i int, serial uint64) {
	e.mu.Lock()
	if session != e.session || e.status != StatusRunning {
		e.mu.Unlock()
		return
	}
	if !e.slots.VacateSerial(i, serial) {
		// Lost the race to a hit
		e.mu.Unlock()
		return
	}
	e.log.Debug("mole expired", "slot", i, "misses", e.misses+1)
	e.emitHolesLocked()
	e.missLocked()
	e.mu.Unlock()

	e.out.flush()
}

func (e *Engine) scheduleTickLocked() {
	if e.tick != nil {
		e.tick.Stop()
	}
	interval := e.cfg.Curve.At(e.score).SpawnInterval
	session := e.session
	e.tick = e.clock.AfterFunc(interval, func() { e.onTick(session) })
}

// scheduleRefillLocked arms a refill check unless one is already pending.
func (e *Engine) scheduleRefillLocked() {
	if e.refill != nil {
		return
	}
	session := e.session
	e.refill = e.clock.AfterFunc(e.cfg.RefillDelay, func() { e.onRefill(session) })
}

// spawnLocked fills empty slots until the target concurrency for the current score.
func (e *Engine) spawnLocked() {
	params := e.cfg.Curve.At(e.score)
	spawned := 0

	for e.slots.CountOccupied() < params.TargetConcurrent {
		i := e.pickEmptyLocked()
		if i < 0 || !e.slots.Occupy(i) {
			break
		}
		session, serial := e.session, e.slots.Serial(i)
		timer := e.clock.AfterFunc(params.EventLifetime, func() { e.onExpire(session, i, serial) })
		e.slots.Arm(i, timer)

		e.spawns++
		spawned++
		e.log.Debug("mole spawned", "slot", i, "lifetime", params.EventLifetime, "level", params.Level)
	}

	if spawned > 0 {
		e.emitHolesLocked()
	}
}

// pickEmptyLocked probes random slots a bounded number of times, then falls
// back to the first empty slot. Returns -1 when the board is full.
func (e *Engine) pickEmptyLocked() int {
	n := e.slots.Len()
	if e.slots.CountOccupied() >= n {
		return -1
	}
	for attempt := 0; attempt < e.cfg.spawnAttempts(); attempt++ {
		i := e.rng.IntN(n)
		if !e.slots.IsOccupied(i) {
			return i
		}
	}
	for i := 0; i < n; i++ {
		if !e.slots.IsOccupied(i) {
			return i
		}
	}
	return -1
}

// cancelAllLocked stops the tick, the refill and every expiry, and empties the board.
// Returns the number of moles withdrawn.
func (e *Engine) cancelAllLocked() int {
	if e.tick != nil {
		e.tick.Stop()
		e.tick = nil
	}
	if e.refill != nil {
		e.refill.Stop()
		e.refill = nil
	}
	return e.slots.Clear()
}
