package datarecording

import (
	"context"
	"time"

	"github.com/sarchlab/larvadrift/behavior"
	"github.com/sarchlab/larvadrift/model"
	"github.com/sarchlab/larvadrift/sim/hooking"
)

// Tables written by StepRecorder.
const (
	StepTable  = "step"
	StageTable = "stage"
)

// StepEntry is one row of the step table.
type StepEntry struct {
	Step        uint64
	Time        string
	Total       int
	Active      int
	Deactivated int
	MinZ        float64
	MeanZ       float64
	MaxZ        float64
}

// StageEntry is one row of the stage table.
type StageEntry struct {
	Step        uint64
	Stage       string
	Selected    int
	Deactivated int
}

// StepRecorder is a hook that writes every step report of a model into the
// step and stage tables.
type StepRecorder struct {
	recorder DataRecorder
	errs     []error
}

// NewStepRecorder creates the tables and returns the hook.
func NewStepRecorder(recorder DataRecorder) (*StepRecorder, error) {
	if err := recorder.CreateTable(StepTable, StepEntry{}); err != nil {
		return nil, err
	}

	if err := recorder.CreateTable(StageTable, StageEntry{}); err != nil {
		return nil, err
	}

	return &StepRecorder{recorder: recorder}, nil
}

// Func records the step report carried by a StepEnd hook.
func (r *StepRecorder) Func(ctx hooking.HookCtx) {
	if ctx.Pos != model.HookPosStepEnd {
		return
	}

	report, ok := ctx.Detail.(model.StepReport)
	if !ok {
		return
	}

	r.record(report)
}

func (r *StepRecorder) record(report model.StepReport) {
	s := report.Ensemble
	r.insert(StepTable, StepEntry{
		Step:        report.Step,
		Time:        report.Time.UTC().Format(time.RFC3339),
		Total:       s.Total,
		Active:      s.Active,
		Deactivated: report.Deactivated,
		MinZ:        s.MinZ,
		MeanZ:       s.MeanZ,
		MaxZ:        s.MaxZ,
	})

	for _, stage := range report.Stages {
		r.insert(StageTable, stageEntry(report.Step, stage))
	}
}

func stageEntry(step uint64, s behavior.StageReport) StageEntry {
	return StageEntry{
		Step:        step,
		Stage:       s.Stage,
		Selected:    s.Selected,
		Deactivated: s.Deactivated,
	}
}

func (r *StepRecorder) insert(table string, entry any) {
	if err := r.recorder.InsertData(table, entry); err != nil {
		r.errs = append(r.errs, err)
	}
}

// Errors returns the insert errors met so far. Hooks cannot fail a step, so
// they are collected here.
func (r *StepRecorder) Errors() []error {
	return r.errs
}

// ReadSteps returns the step table of a recording in step order.
func ReadSteps(ctx context.Context, r DataReader) ([]StepEntry, error) {
	return readAll[StepEntry](ctx, r, StepTable, "Step")
}

// ReadStages returns the stage table of a recording, by step and then in
// execution order within a step.
func ReadStages(ctx context.Context, r DataReader) ([]StageEntry, error) {
	return readAll[StageEntry](ctx, r, StageTable, "Step, rowid")
}
