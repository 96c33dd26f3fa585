package timing

import (
	"github.com/sarchlab/larvadrift/sim/hooking"
)

// TimeTeller exposes the current simulated time.
type TimeTeller interface {
	CurrentTime() VTimeInSec
}

// EventScheduler schedules events in the simulation timeline.
type EventScheduler interface {
	TimeTeller

	Schedule(evt ScheduledEvent)
}

// An Engine is a unit that keeps the discrete event simulation run.
type Engine interface {
	hooking.Hookable
	EventScheduler

	// Run will process all the events until the simulation finishes.
	Run() error

	// Pause will pause the simulation until continue is called.
	Pause()

	// Continue will continue the paused simulation.
	Continue()
}

// HookPosBeforeEvent is a hook position that triggers before handling an event.
var HookPosBeforeEvent = &hooking.HookPos{Name: "BeforeEvent"}

// HookPosAfterEvent is a hook position that triggers after handling an event.
var HookPosAfterEvent = &hooking.HookPos{Name: "AfterEvent"}
