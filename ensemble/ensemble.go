// Package ensemble holds the state of every particle of a run as parallel
// arrays. Particles are appended at seeding and never removed; deactivated
// particles stay as inert records.
package ensemble

import (
	"math"

	"github.com/sarchlab/larvadrift/sim/idgen"
)

// Default attribute values of a freshly seeded particle.
const (
	DefaultLength = 0.5
	DefaultNSteps = 1.0
)

// Status records whether a particle is active and, if not, why. The zero value
// is active; other values index the ensemble's reason table.
type Status uint8

// StatusActive marks a particle that still takes part in the simulation.
const StatusActive Status = 0

// A Selection is a list of particle indices a stage operates on.
type Selection []int

// Particle describes one particle to seed. A non-positive Length takes
// DefaultLength.
type Particle struct {
	X, Y, Z float64
	Length  float64
}

// Ensemble is the struct-of-arrays container of all particles of a run.
type Ensemble struct {
	ID     []string
	X      []float64
	Y      []float64
	Z      []float64
	Length []float64
	NSteps []float64
	Active []bool
	Status []Status

	reasons []string
	ids     idgen.Generator
}

// An Option customizes a new Ensemble.
type Option func(e *Ensemble)

// WithIDGenerator sets the generator used for particle IDs.
func WithIDGenerator(g idgen.Generator) Option {
	return func(e *Ensemble) {
		e.ids = g
	}
}

// New creates an empty Ensemble.
func New(opts ...Option) *Ensemble {
	e := &Ensemble{
		reasons: []string{"active"},
		ids:     idgen.NewPrefixed("larva-"),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Seed appends particles with default attribute values and returns their
// indices. Depths above the surface are clamped to 0.
func (e *Ensemble) Seed(particles ...Particle) Selection {
	sel := make(Selection, 0, len(particles))

	for _, p := range particles {
		length := p.Length
		if length <= 0 {
			length = DefaultLength
		}

		sel = append(sel, len(e.X))

		e.ID = append(e.ID, e.ids.Generate())
		e.X = append(e.X, p.X)
		e.Y = append(e.Y, p.Y)
		e.Z = append(e.Z, math.Min(0, p.Z))
		e.Length = append(e.Length, length)
		e.NSteps = append(e.NSteps, DefaultNSteps)
		e.Active = append(e.Active, true)
		e.Status = append(e.Status, StatusActive)
	}

	return sel
}

// Len returns the number of particles, active or not.
func (e *Ensemble) Len() int {
	return len(e.X)
}

// NumActive returns the number of active particles.
func (e *Ensemble) NumActive() int {
	n := 0
	for _, a := range e.Active {
		if a {
			n++
		}
	}

	return n
}

// All selects every particle.
func (e *Ensemble) All() Selection {
	sel := make(Selection, e.Len())
	for i := range sel {
		sel[i] = i
	}

	return sel
}

// ActiveSelection selects the particles that are currently active.
func (e *Ensemble) ActiveSelection() Selection {
	sel := make(Selection, 0, e.Len())
	for i, a := range e.Active {
		if a {
			sel = append(sel, i)
		}
	}

	return sel
}

// Deactivate permanently deactivates the selected particles for which
// predicate holds, recording reason. Particles that are already inactive are
// left untouched. It returns the number of particles deactivated by this call.
func (e *Ensemble) Deactivate(
	sel Selection,
	predicate func(i int) bool,
	reason string,
) int {
	status := e.statusFor(reason)

	n := 0
	for _, i := range sel {
		if !e.Active[i] || !predicate(i) {
			continue
		}

		e.Active[i] = false
		e.Status[i] = status
		n++
	}

	return n
}

func (e *Ensemble) statusFor(reason string) Status {
	for i, r := range e.reasons {
		if i > 0 && r == reason {
			return Status(i)
		}
	}

	e.reasons = append(e.reasons, reason)

	return Status(len(e.reasons) - 1)
}

// Reason returns the deactivation reason of particle i, or "active".
func (e *Ensemble) Reason(i int) string {
	return e.reasons[e.Status[i]]
}

// Reasons returns the status table: index 0 is "active", the rest are
// deactivation reasons in the order they were first used.
func (e *Ensemble) Reasons() []string {
	out := make([]string, len(e.reasons))
	copy(out, e.reasons)

	return out
}

// ReasonCounts counts particles per status label.
func (e *Ensemble) ReasonCounts() map[string]int {
	counts := make(map[string]int, len(e.reasons))
	for _, s := range e.Status {
		counts[e.reasons[s]]++
	}

	return counts
}
