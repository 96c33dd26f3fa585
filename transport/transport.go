// Package transport is the contract between the larval behavior layer and the
// Lagrangian transport engine hosting it. It also carries Drift, a minimal
// host good enough for smoke runs.
package transport

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/sarchlab/larvadrift/ensemble"
	"github.com/sarchlab/larvadrift/sim/timing"
)

// ErrUnavailable is returned by a Sampler that has no data for a variable.
var ErrUnavailable = errors.New("variable unavailable")

// Names of the environment variables a larval run samples.
const (
	XSeaWaterVelocity      = "x_sea_water_velocity"
	YSeaWaterVelocity      = "y_sea_water_velocity"
	UpwardSeaWaterVelocity = "upward_sea_water_velocity"
	XWind                  = "x_wind"
	YWind                  = "y_wind"
	LandBinaryMask         = "land_binary_mask"
)

// Variable declares an environment variable and the value used when the
// host has no data for it.
type Variable struct {
	Name        string
	Fallback    float64
	HasFallback bool
}

// RequiredVariables are the environment variables a larval run needs.
// The land mask has no fallback: without data, no coastline check is made.
var RequiredVariables = []Variable{
	{Name: XSeaWaterVelocity, Fallback: 0, HasFallback: true},
	{Name: YSeaWaterVelocity, Fallback: 0, HasFallback: true},
	{Name: UpwardSeaWaterVelocity, Fallback: 0, HasFallback: true},
	{Name: XWind, Fallback: 0, HasFallback: true},
	{Name: YWind, Fallback: 0, HasFallback: true},
	{Name: LandBinaryMask},
}

// RequiredProfileZRange is the depth range, in metres, that vertical profiles
// must cover.
var RequiredProfileZRange = [2]float64{0, -50}

// A Sampler reads environment fields at particle positions.
type Sampler interface {
	// Sample returns one value per position. It returns an error wrapping
	// ErrUnavailable when it has no data for variable. Individual missing
	// values are NaN.
	Sample(variable string, x, y, z []float64, t time.Time) ([]float64, error)
}

// Transport is the part of the host engine the step orchestrator calls.
type Transport interface {
	// Advect moves the selected particles horizontally with the currents.
	Advect(e *ensemble.Ensemble, sel ensemble.Selection, clk timing.Clock) error

	// MixVertically applies the host's vertical processes.
	MixVertically(e *ensemble.Ensemble, sel ensemble.Selection, clk timing.Clock) error
}

type fallbackSampler struct {
	inner     Sampler
	variables map[string]Variable
}

// WithFallbacks wraps s so that unavailable variables and NaN samples take the
// declared fallback of the variable. Variables without a fallback still
// report ErrUnavailable.
func WithFallbacks(s Sampler, vars []Variable) Sampler {
	fs := &fallbackSampler{
		inner:     s,
		variables: make(map[string]Variable, len(vars)),
	}

	for _, v := range vars {
		fs.variables[v.Name] = v
	}

	return fs
}

func (s *fallbackSampler) Sample(
	variable string,
	x, y, z []float64,
	t time.Time,
) ([]float64, error) {
	decl, declared := s.variables[variable]

	values, err := s.inner.Sample(variable, x, y, z, t)
	if err != nil {
		if !errors.Is(err, ErrUnavailable) || !declared || !decl.HasFallback {
			return nil, err
		}

		values = make([]float64, len(x))
		for i := range values {
			values[i] = decl.Fallback
		}

		return values, nil
	}

	if len(values) != len(x) {
		return nil, fmt.Errorf("transport: %s: got %d samples for %d positions",
			variable, len(values), len(x))
	}

	if declared && decl.HasFallback {
		for i, v := range values {
			if math.IsNaN(v) {
				values[i] = decl.Fallback
			}
		}
	}

	return values, nil
}

// UniformField is a Sampler returning the same value everywhere. Variables
// not in the map are unavailable.
type UniformField map[string]float64

// Sample returns the uniform value of variable at every position.
func (f UniformField) Sample(
	variable string,
	x, _, _ []float64,
	_ time.Time,
) ([]float64, error) {
	v, ok := f[variable]
	if !ok {
		return nil, fmt.Errorf("transport: %s: %w", variable, ErrUnavailable)
	}

	values := make([]float64, len(x))
	for i := range values {
		values[i] = v
	}

	return values, nil
}
