// Package model runs one step of the larval IBM: the optional migration
// stage, mortality, then the host's advection and vertical mixing.
package model

import (
	"fmt"
	"sync"
	"time"

	"github.com/sarchlab/larvadrift/behavior"
	"github.com/sarchlab/larvadrift/ensemble"
	"github.com/sarchlab/larvadrift/sim/hooking"
	"github.com/sarchlab/larvadrift/sim/timing"
)

// Hook positions raised by a Model.
var (
	// HookPosStepStart fires before the first stage. Item is the Clock.
	HookPosStepStart = &hooking.HookPos{Name: "StepStart"}

	// HookPosAfterStage fires after each stage. Item is the stage name and
	// Detail the behavior.StageReport.
	HookPosAfterStage = &hooking.HookPos{Name: "AfterStage"}

	// HookPosStepEnd fires after the last stage. Item is the Clock and Detail
	// the StepReport.
	HookPosStepEnd = &hooking.HookPos{Name: "StepEnd"}
)

// StepReport summarizes one step.
type StepReport struct {
	Step        uint64                 `json:"step"`
	Time        time.Time              `json:"time"`
	Stages      []behavior.StageReport `json:"stages"`
	Deactivated int                    `json:"deactivated"`
	Ensemble    ensemble.Summary       `json:"ensemble"`
}

// Model owns the ensemble of a run and applies its stages in order, once per
// step.
type Model struct {
	*hooking.HookableBase

	ensemble *ensemble.Ensemble
	stages   []behavior.Stage

	reportLock sync.RWMutex
	last       StepReport
	stepsTaken uint64
}

// Ensemble returns the particles owned by the model. It must not be read
// while a step runs on another goroutine.
func (m *Model) Ensemble() *ensemble.Ensemble {
	return m.ensemble
}

// Stages returns the stages in execution order.
func (m *Model) Stages() []behavior.Stage {
	return m.stages
}

// Stage returns the stage with the given name, or nil.
func (m *Model) Stage(name string) behavior.Stage {
	for _, s := range m.stages {
		if s.Name() == name {
			return s
		}
	}

	return nil
}

// LastReport returns the report of the most recent step. It is safe to call
// concurrently with Step.
func (m *Model) LastReport() StepReport {
	m.reportLock.RLock()
	defer m.reportLock.RUnlock()

	return m.last
}

// StepsTaken returns how many steps completed.
func (m *Model) StepsTaken() uint64 {
	m.reportLock.RLock()
	defer m.reportLock.RUnlock()

	return m.stepsTaken
}

// Step runs every stage once. Each stage sees the selection matching its
// scope, computed right before it runs, so larvae deactivated by one stage
// are left out of all later ones. A failing stage aborts the step; stages
// already applied are not rolled back.
func (m *Model) Step(clk timing.Clock) (StepReport, error) {
	report := StepReport{
		Step:   clk.Index,
		Time:   clk.Now,
		Stages: make([]behavior.StageReport, 0, len(m.stages)),
	}

	m.InvokeHook(hooking.HookCtx{
		Domain: m,
		Pos:    HookPosStepStart,
		Item:   clk,
	})

	for _, stage := range m.stages {
		sel := m.selectFor(stage)

		stageReport, err := stage.Update(m.ensemble, sel, clk)
		if err != nil {
			return report, fmt.Errorf("model: step %d: %s: %w",
				clk.Index, stage.Name(), err)
		}

		report.Stages = append(report.Stages, stageReport)
		report.Deactivated += stageReport.Deactivated

		m.InvokeHook(hooking.HookCtx{
			Domain: m,
			Pos:    HookPosAfterStage,
			Item:   stage.Name(),
			Detail: stageReport,
		})
	}

	report.Ensemble = m.ensemble.Summary()

	m.reportLock.Lock()
	m.last = report
	m.stepsTaken++
	m.reportLock.Unlock()

	m.InvokeHook(hooking.HookCtx{
		Domain: m,
		Pos:    HookPosStepEnd,
		Item:   clk,
		Detail: report,
	})

	return report, nil
}

func (m *Model) selectFor(stage behavior.Stage) ensemble.Selection {
	if stage.Scope() == behavior.ScopeAll {
		return m.ensemble.All()
	}

	return m.ensemble.ActiveSelection()
}
