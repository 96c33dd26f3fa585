// Package behavior implements the per-step biology of virtual larvae: diel
// vertical migration and PLD mortality. Stages operate on an ensemble and a
// selection of its particles; which particles are selected is the caller's
// business.
package behavior

import (
	"github.com/sarchlab/larvadrift/ensemble"
	"github.com/sarchlab/larvadrift/sim/timing"
)

// Scope tells the orchestrator which particles a stage wants to see.
type Scope int

const (
	// ScopeActive selects only particles that are active when the stage runs.
	ScopeActive Scope = iota

	// ScopeAll selects every particle, active or not.
	ScopeAll
)

// StageReport summarizes what a stage did in one step.
type StageReport struct {
	Stage       string `json:"stage"`
	Selected    int    `json:"selected"`
	Deactivated int    `json:"deactivated"`
}

// A Stage is one link of the per-step pipeline.
type Stage interface {
	// Name identifies the stage in reports and hooks.
	Name() string

	// Scope tells which particles the stage operates on.
	Scope() Scope

	// Update applies the stage to the selected particles.
	Update(
		e *ensemble.Ensemble,
		sel ensemble.Selection,
		clk timing.Clock,
	) (StageReport, error)
}

// Deactivator permanently switches particles off. The ensemble implements it.
type Deactivator interface {
	Deactivate(
		sel ensemble.Selection,
		predicate func(i int) bool,
		reason string,
	) int
}

var _ Deactivator = (*ensemble.Ensemble)(nil)
