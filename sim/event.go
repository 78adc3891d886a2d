package sim

// VTimeInSec defines the time in the simulated space in the unit of second.
type VTimeInSec float64

// An Event is something going to happen in the future.
type Event interface {
	// Time returns the time that the event should happen.
	Time() VTimeInSec

	// Priority breaks ties between events due at the same instant. Events
	// with smaller priority values are handled first. Same-time, same-
	// priority events are handled in the order they were scheduled.
	Priority() int

	// Handler returns the handler that should handle the event.
	Handler() Handler

	// Canceled tells if the event has been revoked. The engine drops
	// canceled events without handling them.
	Canceled() bool
}

// EventBase provides the basic fields and getters for other events.
type EventBase struct {
	ID       string
	time     VTimeInSec
	priority int
	handler  Handler
	canceled bool
}

// NewEventBase creates a new EventBase.
func NewEventBase(t VTimeInSec, handler Handler) *EventBase {
	e := new(EventBase)
	e.time = t
	e.handler = handler
	return e
}

// Time returns the time that the event is going to happen.
func (e EventBase) Time() VTimeInSec {
	return e.time
}

// Priority returns the tie-breaking priority of the event.
func (e EventBase) Priority() int {
	return e.priority
}

// SetPriority sets the tie-breaking priority of the event. It must be called
// before the event is scheduled.
func (e *EventBase) SetPriority(p int) {
	e.priority = p
}

// SetHandler sets which handler that handles the event.
func (e *EventBase) SetHandler(h Handler) {
	e.handler = h
}

// Handler returns the handler to handle the event.
func (e EventBase) Handler() Handler {
	return e.handler
}

// Canceled returns true if the event has been revoked.
func (e EventBase) Canceled() bool {
	return e.canceled
}

// Cancel revokes the event. A canceled event stays in the event queue but is
// skipped by the engine.
func (e *EventBase) Cancel() {
	e.canceled = true
}

// A Handler defines a domain for the events.
//
// One event is always constraint to one Handler, which means the event can
// only be scheduled by one handler and can only directly modify that handler.
type Handler interface {
	Handle(e Event) error
}
