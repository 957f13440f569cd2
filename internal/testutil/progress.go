package testutil

import (
	"sync"

	"github.com/ffmirror/ffmirror-go/internal/models"
)

// EventCollector records progress events emitted during a mirror
// operation so tests can assert on them.
type EventCollector struct {
	mu     sync.Mutex
	events []models.Event
}

// Sink is the callback to pass into mirror operations.
func (c *EventCollector) Sink(ev models.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, ev)
}

// Events returns a copy of the recorded events.
func (c *EventCollector) Events() []models.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.Event, len(c.events))
	copy(out, c.events)
	return out
}

// OfKind returns the recorded events of the given kind.
func (c *EventCollector) OfKind(kind models.EventKind) []models.Event {
	var out []models.Event
	for _, ev := range c.Events() {
		if ev.Kind == kind {
			out = append(out, ev)
		}
	}
	return out
}
