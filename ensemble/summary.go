package ensemble

import "math"

// Summary condenses the ensemble into a few numbers for diagnostics.
type Summary struct {
	Total    int     `json:"total"`
	Active   int     `json:"active"`
	Inactive int     `json:"inactive"`
	MinZ     float64 `json:"min_z"`
	MeanZ    float64 `json:"mean_z"`
	MaxZ     float64 `json:"max_z"`
}

// Summary computes depth statistics over active particles. Depth fields are 0
// when no particle is active.
func (e *Ensemble) Summary() Summary {
	s := Summary{Total: e.Len()}

	minZ, maxZ, sumZ := math.Inf(1), math.Inf(-1), 0.0
	for i, active := range e.Active {
		if !active {
			continue
		}

		z := e.Z[i]
		minZ = math.Min(minZ, z)
		maxZ = math.Max(maxZ, z)
		sumZ += z
		s.Active++
	}

	s.Inactive = s.Total - s.Active
	if s.Active > 0 {
		s.MinZ = minZ
		s.MaxZ = maxZ
		s.MeanZ = sumZ / float64(s.Active)
	}

	return s
}
