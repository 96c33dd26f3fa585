package timing

import "time"

// Clock is what the host hands to the behavior layer on every step: the
// wall-clock time of the step and how long a step lasts.
type Clock struct {
	// Start is the wall-clock time of the first step of the run.
	Start time.Time

	// Now is the wall-clock time of the current step.
	Now time.Time

	// Step is the duration of one step.
	Step time.Duration

	// Index counts steps from 0.
	Index uint64
}

// StepSeconds returns the step duration in seconds.
func (c Clock) StepSeconds() float64 {
	return c.Step.Seconds()
}

// HourOfDay returns the hour of Now in loc. A nil loc uses Now's own location.
func (c Clock) HourOfDay(loc *time.Location) int {
	if loc == nil {
		return c.Now.Hour()
	}

	return c.Now.In(loc).Hour()
}
