package behavior

import (
	"math"
	"time"

	"github.com/sarchlab/larvadrift/ensemble"
	"github.com/sarchlab/larvadrift/sim/timing"
)

// MigrationRateFactor converts body length into swimming speed. It is an
// empirical calibration constant of the larval model.
const MigrationRateFactor = 1.84185

const mmToM = 1e-3

// StageMigration is the name of the diel vertical migration stage.
const StageMigration = "migration"

// DielVerticalMigration moves larvae down during the morning and up during
// the afternoon and night. Depth never goes above the surface; there is no
// lower bound.
type DielVerticalMigration struct {
	// Factor multiplies length (mm) to get speed (mm/s).
	Factor float64

	// Location defines the local hour of day. Nil uses the clock's own zone.
	Location *time.Location
}

// NewDielVerticalMigration creates the migration stage with the calibrated
// rate factor.
func NewDielVerticalMigration(loc *time.Location) *DielVerticalMigration {
	return &DielVerticalMigration{
		Factor:   MigrationRateFactor,
		Location: loc,
	}
}

// Name returns "migration".
func (b *DielVerticalMigration) Name() string {
	return StageMigration
}

// Scope returns ScopeActive.
func (b *DielVerticalMigration) Scope() Scope {
	return ScopeActive
}

// SwimSpeed returns the vertical speed in m/s of a larva of the given length
// in mm.
func (b *DielVerticalMigration) SwimSpeed(lengthMM float64) float64 {
	return b.Factor * lengthMM * mmToM
}

// Direction returns -1 (descend) for hours [0, 12) and +1 (ascend) for hours
// [12, 24).
func Direction(hour int) float64 {
	if hour < 12 {
		return -1
	}

	return 1
}

// Update moves every selected particle by its maximum displacement for one
// step in the direction of the current hour.
func (b *DielVerticalMigration) Update(
	e *ensemble.Ensemble,
	sel ensemble.Selection,
	clk timing.Clock,
) (StageReport, error) {
	direction := Direction(clk.HourOfDay(b.Location))
	seconds := clk.StepSeconds()

	for _, i := range sel {
		maxMigration := b.SwimSpeed(e.Length[i]) * seconds
		e.Z[i] = math.Min(0, e.Z[i]+direction*maxMigration)
	}

	return StageReport{Stage: StageMigration, Selected: len(sel)}, nil
}
