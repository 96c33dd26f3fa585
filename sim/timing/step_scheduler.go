package timing

import (
	"sync"
	"time"
)

// StepEvent asks a handler to advance the model by one fixed-length step.
type StepEvent struct {
	Clock Clock
}

// StepScheduler schedules StepEvents at a fixed cadence. Step i happens at
// virtual time i*step, so the first step runs at the run's start time.
type StepScheduler struct {
	lock    sync.Mutex
	handler Handler
	Engine  EventScheduler

	start time.Time
	step  time.Duration
	limit uint64

	next      uint64
	scheduled bool
}

// NewStepScheduler creates a scheduler for step events. A limit of 0 means
// steps are scheduled until the caller stops asking.
func NewStepScheduler(
	handler Handler,
	engine EventScheduler,
	start time.Time,
	step time.Duration,
	limit uint64,
) *StepScheduler {
	if step <= 0 {
		panic("timing: step duration must be positive")
	}

	return &StepScheduler{
		handler: handler,
		Engine:  engine,
		start:   start,
		step:    step,
		limit:   limit,
	}
}

// ScheduleNext schedules the next step event, if one is not pending and the
// limit has not been reached. It reports whether a step is pending afterwards.
func (s *StepScheduler) ScheduleNext() bool {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.scheduled {
		return true
	}

	if s.limit > 0 && s.next >= s.limit {
		return false
	}

	offset := time.Duration(s.next) * s.step
	evt := &StepEvent{
		Clock: Clock{
			Start: s.start,
			Now:   s.start.Add(offset),
			Step:  s.step,
			Index: s.next,
		},
	}

	s.Engine.Schedule(ScheduledEvent{
		Event:   evt,
		Time:    VTimeInSec(offset.Seconds()),
		Handler: s.handler,
	})

	s.scheduled = true
	s.next++

	return true
}

// Consumed marks the pending step as handled so the next one can be
// scheduled. Handlers call it at the beginning of handling a StepEvent.
func (s *StepScheduler) Consumed() {
	s.lock.Lock()
	s.scheduled = false
	s.lock.Unlock()
}

// Scheduled returns the number of steps scheduled so far.
func (s *StepScheduler) Scheduled() uint64 {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.next
}

// Limit returns the configured number of steps, 0 when unbounded.
func (s *StepScheduler) Limit() uint64 {
	return s.limit
}
