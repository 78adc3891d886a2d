package sim

// TimeTeller can be used to get the current time.
type TimeTeller interface {
	CurrentTime() VTimeInSec
}

// EventScheduler can be used to schedule future events.
type EventScheduler interface {
	Schedule(e Event)
}

// An Engine is a unit that keeps the discrete event simulation run.
type Engine interface {
	Hookable
	TimeTeller
	EventScheduler

	// StepOne processes the single earliest pending event. It returns false
	// when no event is left.
	StepOne() (bool, error)

	// Run will process all the events until no event is left.
	Run() error

	// EventCount returns the number of pending events, including events that
	// have been canceled but not yet skipped over.
	EventCount() int
}
