package timing

// VTimeInSec is the simulated time elapsed since the start of a run, in
// seconds.
type VTimeInSec float64

// Handler processes events of various types. Events are plain data structs;
// handlers type-switch on them.
type Handler interface {
	Handle(event any) error
}

// ScheduledEvent is the engine-facing wrapper for user-defined events.
type ScheduledEvent struct {
	// Event is the data payload to be delivered to the handler.
	Event any

	// Time is when the event should be processed.
	Time VTimeInSec

	// Handler is the component that will process this event.
	Handler Handler
}
