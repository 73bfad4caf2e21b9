package engine

import "sync"

// Observer receives the engine's state changes, always as new values.
// Calls never happen while the engine lock is held, so an observer may call
// back into the engine. Calls may arrive on timer goroutines.
type Observer interface {
	HolesChanged(holes []bool)
	ScoreChanged(score int)
	MissesChanged(misses int)
	GameOver(finalScore int)
}

// EventKind identifies an outbound notification.
type EventKind int

const (
	EventHoles EventKind = iota
	EventScore
	EventMisses
	EventGameOver
)

func (k EventKind) String() string {
	switch k {
	case EventHoles:
		return "holes"
	case EventScore:
		return "score"
	case EventMisses:
		return "misses"
	case EventGameOver:
		return "game-over"
	default:
		return "unknown"
	}
}

// Event is one notification. Holes is set for EventHoles and owned by the receiver;
// Value carries score, misses or the final score.
type Event struct {
	Kind  EventKind
	Holes []bool
	Value int
}

// Deliver calls the matching Observer method.
func (ev Event) Deliver(o Observer) {
	switch ev.Kind {
	case EventHoles:
		o.HolesChanged(ev.Holes)
	case EventScore:
		o.ScoreChanged(ev.Value)
	case EventMisses:
		o.MissesChanged(ev.Value)
	case EventGameOver:
		o.GameOver(ev.Value)
	}
}

// ObserverFuncs adapts optional functions to Observer. Nil fields are skipped.
type ObserverFuncs struct {
	OnHoles    func(holes []bool)
	OnScore    func(score int)
	OnMisses   func(misses int)
	OnGameOver func(finalScore int)
}

// Compile-time check that ObserverFuncs implements Observer.
var _ Observer = ObserverFuncs{}

func (f ObserverFuncs) HolesChanged(holes []bool) {
	if f.OnHoles != nil {
		f.OnHoles(holes)
	}
}

func (f ObserverFuncs) ScoreChanged(score int) {
	if f.OnScore != nil {
		f.OnScore(score)
	}
}

func (f ObserverFuncs) MissesChanged(misses int) {
	if f.OnMisses != nil {
		f.OnMisses(misses)
	}
}

func (f ObserverFuncs) GameOver(finalScore int) {
	if f.OnGameOver != nil {
		f.OnGameOver(finalScore)
	}
}

// Multi fans every notification out to each observer in order.
func Multi(observers ...Observer) Observer {
	kept := make(multi, 0, len(observers))
	for _, o := range observers {
		if o != nil {
			kept = append(kept, o)
		}
	}
	return kept
}

type multi []Observer

func (m multi) HolesChanged(holes []bool) {
	for i, o := range m {
		h := holes
		if i > 0 {
			// Each receiver owns its slice
			h = append([]bool(nil), holes...)
		}
		o.HolesChanged(h)
	}
}

func (m multi) ScoreChanged(score int) {
	for _, o := range m {
		o.ScoreChanged(score)
	}
}

func (m multi) MissesChanged(misses int) {
	for _, o := range m {
		o.MissesChanged(misses)
	}
}

func (m multi) GameOver(finalScore int) {
	for _, o := range m {
		o.GameOver(finalScore)
	}
}

// outbox queues events in mutation order and delivers them outside the engine lock.
// Only one goroutine delivers at a time; others enqueue and return.
type outbox struct {
	mu         sync.Mutex
	queue      []Event
	delivering bool
	observer   Observer
}

// push is called with the engine lock held.
func (o *outbox) push(ev Event) {
	o.mu.Lock()
	if o.observer != nil {
		o.queue = append(o.queue, ev)
	}
	o.mu.Unlock()
}

// flush is called after the engine lock is released.
func (o *outbox) flush() {
	o.mu.Lock()
	if o.delivering || o.observer == nil {
		o.mu.Unlock()
		return
	}
	o.delivering = true
	for len(o.queue) > 0 && o.observer != nil {
		ev := o.queue[0]
		o.queue[0] = Event{}
		o.queue = o.queue[1:]
		obs := o.observer
		o.mu.Unlock()

		ev.Deliver(obs)

		o.mu.Lock()
	}
	o.queue = nil
	o.delivering = false
	o.mu.Unlock()
}

// Mailbox is an Observer that posts events for a single consumer goroutine,
// such as a terminal frame loop. It never blocks the engine.
type Mailbox struct {
	mu    sync.Mutex
	queue []Event
	ready chan struct{}
}

// Compile-time check that Mailbox implements Observer.
var _ Observer = (*Mailbox)(nil)

// NewMailbox creates an empty mailbox.
func NewMailbox() *Mailbox {
	return &Mailbox{ready: make(chan struct{}, 1)}
}

// Ready is signalled whenever events are waiting.
func (m *Mailbox) Ready() <-chan struct{} {
	return m.ready
}

// Drain returns and removes all queued events in order.
func (m *Mailbox) Drain() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	events := m.queue
	m.queue = nil
	return events
}

func (m *Mailbox) post(ev Event) {
	m.mu.Lock()
	m.queue = append(m.queue, ev)
	m.mu.Unlock()

	select {
	case m.ready <- struct{}{}:
	default:
	}
}

func (m *Mailbox) HolesChanged(holes []bool) { m.post(Event{Kind: EventHoles, Holes: holes}) }
func (m *Mailbox) ScoreChanged(score int)    { m.post(Event{Kind: EventScore, Value: score}) }
func (m *Mailbox) MissesChanged(misses int)  { m.post(Event{Kind: EventMisses, Value: misses}) }
func (m *Mailbox) GameOver(finalScore int)   { m.post(Event{Kind: EventGameOver, Value: finalScore}) }
