package model

import (
	"github.com/sarchlab/larvadrift/behavior"
	"github.com/sarchlab/larvadrift/ensemble"
	"github.com/sarchlab/larvadrift/sim/timing"
	"github.com/sarchlab/larvadrift/transport"
)

// Names of the stages delegated to the host.
const (
	StageAdvection = "advection"
	StageMixing    = "mixing"
)

// hostStage turns one of the host's transport calls into a pipeline stage.
type hostStage struct {
	name string
	call func(*ensemble.Ensemble, ensemble.Selection, timing.Clock) error
}

func newAdvectionStage(t transport.Transport) *hostStage {
	return &hostStage{name: StageAdvection, call: t.Advect}
}

func newMixingStage(t transport.Transport) *hostStage {
	return &hostStage{name: StageMixing, call: t.MixVertically}
}

func (s *hostStage) Name() string {
	return s.name
}

func (s *hostStage) Scope() behavior.Scope {
	return behavior.ScopeActive
}

// Update calls the host. Deactivations made by the host (stranding) are
// counted against this stage.
func (s *hostStage) Update(
	e *ensemble.Ensemble,
	sel ensemble.Selection,
	clk timing.Clock,
) (behavior.StageReport, error) {
	before := e.NumActive()

	if err := s.call(e, sel, clk); err != nil {
		return behavior.StageReport{Stage: s.name, Selected: len(sel)}, err
	}

	return behavior.StageReport{
		Stage:       s.name,
		Selected:    len(sel),
		Deactivated: before - e.NumActive(),
	}, nil
}
