package transport

import (
	"errors"
	"fmt"
	"math"

	"github.com/sarchlab/larvadrift/ensemble"
	"github.com/sarchlab/larvadrift/sim/timing"
)

// ReasonStranded is the deactivation reason of larvae that reached land under
// the stranding coastline action.
const ReasonStranded = "stranded"

// Coastline actions understood by Drift.
const (
	CoastlinePrevious  = "previous"
	CoastlineStranding = "stranding"
	CoastlineNone      = "none"
)

// Drift is a forward-Euler host: it displaces larvae by the sampled current,
// plus a fraction of the sampled wind, over one step. It does no
// interpolation and no turbulence closure; vertical "mixing" only applies the
// sampled upward velocity.
type Drift struct {
	Sampler         Sampler
	WindDriftFactor float64
	CoastlineAction string
}

// NewDrift creates a Drift over s with the declared fallbacks applied and the
// "previous" coastline action.
func NewDrift(s Sampler) *Drift {
	return &Drift{
		Sampler:         WithFallbacks(s, RequiredVariables),
		CoastlineAction: CoastlinePrevious,
	}
}

func gather(values []float64, sel ensemble.Selection) []float64 {
	out := make([]float64, len(sel))
	for k, i := range sel {
		out[k] = values[i]
	}

	return out
}

func (d *Drift) sample(
	name string,
	x, y, z []float64,
	clk timing.Clock,
) ([]float64, error) {
	values, err := d.Sampler.Sample(name, x, y, z, clk.Now)
	if err != nil {
		return nil, fmt.Errorf("transport: sample %s: %w", name, err)
	}

	return values, nil
}

// Advect moves the selected larvae horizontally and applies the coastline
// action to those that end up on land.
func (d *Drift) Advect(
	e *ensemble.Ensemble,
	sel ensemble.Selection,
	clk timing.Clock,
) error {
	if len(sel) == 0 {
		return nil
	}

	x, y, z := gather(e.X, sel), gather(e.Y, sel), gather(e.Z, sel)

	u, err := d.sample(XSeaWaterVelocity, x, y, z, clk)
	if err != nil {
		return err
	}

	v, err := d.sample(YSeaWaterVelocity, x, y, z, clk)
	if err != nil {
		return err
	}

	var windU, windV []float64
	if d.WindDriftFactor > 0 {
		if windU, err = d.sample(XWind, x, y, z, clk); err != nil {
			return err
		}

		if windV, err = d.sample(YWind, x, y, z, clk); err != nil {
			return err
		}
	}

	dt := clk.StepSeconds()
	for k, i := range sel {
		du, dv := u[k], v[k]
		if windU != nil {
			du += d.WindDriftFactor * windU[k]
			dv += d.WindDriftFactor * windV[k]
		}

		e.X[i] += du * dt
		e.Y[i] += dv * dt
	}

	return d.applyCoastline(e, sel, x, y, clk)
}

func (d *Drift) applyCoastline(
	e *ensemble.Ensemble,
	sel ensemble.Selection,
	prevX, prevY []float64,
	clk timing.Clock,
) error {
	if d.CoastlineAction == CoastlineNone {
		return nil
	}

	mask, err := d.Sampler.Sample(LandBinaryMask,
		gather(e.X, sel), gather(e.Y, sel), gather(e.Z, sel), clk.Now)
	if errors.Is(err, ErrUnavailable) {
		return nil
	}

	if err != nil {
		return fmt.Errorf("transport: sample %s: %w", LandBinaryMask, err)
	}

	onLand := make(map[int]bool)
	for k, i := range sel {
		if mask[k] < 0.5 {
			continue
		}

		switch d.CoastlineAction {
		case CoastlinePrevious:
			e.X[i], e.Y[i] = prevX[k], prevY[k]
		case CoastlineStranding:
			onLand[i] = true
		default:
			return fmt.Errorf("transport: unknown coastline action %q",
				d.CoastlineAction)
		}
	}

	if len(onLand) > 0 {
		e.Deactivate(sel, func(i int) bool { return onLand[i] }, ReasonStranded)
	}

	return nil
}

// MixVertically moves the selected larvae by the sampled upward velocity and
// keeps them below the surface.
func (d *Drift) MixVertically(
	e *ensemble.Ensemble,
	sel ensemble.Selection,
	clk timing.Clock,
) error {
	if len(sel) == 0 {
		return nil
	}

	w, err := d.sample(UpwardSeaWaterVelocity,
		gather(e.X, sel), gather(e.Y, sel), gather(e.Z, sel), clk)
	if err != nil {
		return err
	}

	dt := clk.StepSeconds()
	for k, i := range sel {
		e.Z[i] = math.Min(0, e.Z[i]+w[k]*dt)
	}

	return nil
}

var _ Transport = (*Drift)(nil)
