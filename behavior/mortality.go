package behavior

import (
	"github.com/sarchlab/larvadrift/ensemble"
	"github.com/sarchlab/larvadrift/sim/timing"
)

// StageMortality is the name of the mortality stage.
const StageMortality = "mortality"

// ReasonDead is the deactivation reason of larvae that completed their PLD.
const ReasonDead = "dead"

// Mortality ages larvae by one step per update and deactivates those whose
// age exceeds CompletePLD days.
type Mortality struct {
	// CompletePLD is the pelagic larval duration in days.
	CompletePLD float64

	// StepsPerDay converts days to steps.
	StepsPerDay float64

	// AgeInactive keeps incrementing the step count of deactivated larvae.
	AgeInactive bool

	// Deactivator switches larvae off. Nil uses the ensemble itself.
	Deactivator Deactivator
}

// NewMortality creates the mortality stage. Deactivated larvae keep ageing,
// as the step counter is not guarded by the active flag.
func NewMortality(completePLD, stepsPerDay float64) *Mortality {
	return &Mortality{
		CompletePLD: completePLD,
		StepsPerDay: stepsPerDay,
		AgeInactive: true,
	}
}

// Name returns "mortality".
func (m *Mortality) Name() string {
	return StageMortality
}

// Scope returns ScopeAll when inactive larvae keep ageing, ScopeActive
// otherwise.
func (m *Mortality) Scope() Scope {
	if m.AgeInactive {
		return ScopeAll
	}

	return ScopeActive
}

// Threshold is the step count a larva must exceed to be deactivated.
func (m *Mortality) Threshold() float64 {
	return m.CompletePLD * m.StepsPerDay
}

// Update increments the step count of the selected larvae by one and
// deactivates the ones past the threshold.
func (m *Mortality) Update(
	e *ensemble.Ensemble,
	sel ensemble.Selection,
	_ timing.Clock,
) (StageReport, error) {
	for _, i := range sel {
		e.NSteps[i]++
	}

	threshold := m.Threshold()

	var d Deactivator = e
	if m.Deactivator != nil {
		d = m.Deactivator
	}

	n := d.Deactivate(sel, func(i int) bool {
		return e.NSteps[i] > threshold
	}, ReasonDead)

	return StageReport{
		Stage:       StageMortality,
		Selected:    len(sel),
		Deactivated: n,
	}, nil
}
