package ensemble

import (
	"math"
	"math/rand"
)

// SeedDisc seeds n particles uniformly over a disc of the given radius around
// center, all at center's depth and length. A zero radius puts every particle
// at the center.
func (e *Ensemble) SeedDisc(
	n int,
	center Particle,
	radius float64,
	rng *rand.Rand,
) Selection {
	particles := make([]Particle, n)

	for i := range particles {
		p := center
		if radius > 0 {
			r := radius * math.Sqrt(rng.Float64())
			theta := 2 * math.Pi * rng.Float64()
			p.X += r * math.Cos(theta)
			p.Y += r * math.Sin(theta)
		}

		particles[i] = p
	}

	return e.Seed(particles...)
}
