package game

import (
	"log"
	"sync"
	"sync/atomic"
)

// CaptureEvent is emitted once per ownership transfer.
type CaptureEvent struct {
	TerritoryID   string        `json:"territory_id"`
	NewOwner      string        `json:"new_owner"`
	TerritoryType TerritoryType `json:"territory_type"`
}

// Notifier receives capture events. Implementations must not block the
// simulation and must swallow their own delivery failures.
type Notifier interface {
	NotifyCapture(CaptureEvent)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(CaptureEvent)

// NotifyCapture calls f(ev).
func (f NotifierFunc) NotifyCapture(ev CaptureEvent) { f(ev) }

// NopNotifier discards every event.
type NopNotifier struct{}

// NotifyCapture does nothing.
func (NopNotifier) NotifyCapture(CaptureEvent) {}

// MultiNotifier fans an event out to several notifiers. A panicking notifier
// does not stop delivery to the others.
type MultiNotifier struct {
	notifiers []Notifier
	logger    *log.Logger
}

// NewMultiNotifier creates a fan-out notifier. Nil entries are skipped.
func NewMultiNotifier(logger *log.Logger, notifiers ...Notifier) *MultiNotifier {
	m := &MultiNotifier{logger: logger}
	for _, n := range notifiers {
		if n != nil {
			m.notifiers = append(m.notifiers, n)
		}
	}
	return m
}

// NotifyCapture delivers ev to every notifier.
func (m *MultiNotifier) NotifyCapture(ev CaptureEvent) {
	for _, n := range m.notifiers {
		m.deliver(n, ev)
	}
}

func (m *MultiNotifier) deliver(n Notifier, ev CaptureEvent) {
	defer func() {
		if r := recover(); r != nil && m.logger != nil {
			m.logger.Printf("capture notifier panicked for %s: %v", ev.TerritoryID, r)
		}
	}()
	n.NotifyCapture(ev)
}

// AsyncNotifier hands events to a background goroutine. When the buffer is
// full the event is dropped and counted.
type AsyncNotifier struct {
	next    Notifier
	events  chan CaptureEvent
	wg      sync.WaitGroup
	mu      sync.RWMutex
	closed  bool
	dropped atomic.Uint64
	logger  *log.Logger
}

// NewAsyncNotifier starts a worker that forwards events to next.
func NewAsyncNotifier(next Notifier, buffer int, logger *log.Logger) *AsyncNotifier {
	if buffer <= 0 {
		buffer = 64
	}
	a := &AsyncNotifier{
		next:   next,
		events: make(chan CaptureEvent, buffer),
		logger: logger,
	}
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		for ev := range a.events {
			a.forward(ev)
		}
	}()
	return a
}

func (a *AsyncNotifier) forward(ev CaptureEvent) {
	defer func() {
		if r := recover(); r != nil && a.logger != nil {
			a.logger.Printf("async capture notifier panicked for %s: %v", ev.TerritoryID, r)
		}
	}()
	a.next.NotifyCapture(ev)
}

// NotifyCapture queues ev without blocking.
func (a *AsyncNotifier) NotifyCapture(ev CaptureEvent) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		a.dropped.Add(1)
		return
	}
	select {
	case a.events <- ev:
	default:
		a.dropped.Add(1)
		if a.logger != nil {
			a.logger.Printf("capture notifier queue full, dropped event for %s", ev.TerritoryID)
		}
	}
}

// Dropped returns the number of events that were not delivered.
func (a *AsyncNotifier) Dropped() uint64 {
	return a.dropped.Load()
}

// Close stops accepting events and waits for queued ones to be delivered.
func (a *AsyncNotifier) Close() {
	a.mu.Lock()
	if !a.closed {
		a.closed = true
		close(a.events)
	}
	a.mu.Unlock()
	a.wg.Wait()
}
