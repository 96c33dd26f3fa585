// Package logging builds the zap logger of a run and a hook that logs step
// diagnostics.
package logging

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sarchlab/larvadrift/behavior"
	"github.com/sarchlab/larvadrift/model"
	"github.com/sarchlab/larvadrift/sim/hooking"
)

// New builds a production logger, at debug level when verbose.
func New(verbose bool) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	if verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}

	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return logger, nil
}

// StepLogHook logs every step of a model. Steps go to debug level; steps that
// deactivate larvae also log an info line per stage that did so.
type StepLogHook struct {
	logger *zap.Logger
}

// NewStepLogHook creates a hook writing to logger.
func NewStepLogHook(logger *zap.Logger) *StepLogHook {
	return &StepLogHook{logger: logger}
}

// Func implements hooking.Hook.
func (h *StepLogHook) Func(ctx hooking.HookCtx) {
	switch ctx.Pos {
	case model.HookPosStepEnd:
		report, ok := ctx.Detail.(model.StepReport)
		if ok {
			h.logStep(report)
		}
	case model.HookPosAfterStage:
		h.logStage(ctx)
	}
}

func (h *StepLogHook) logStep(report model.StepReport) {
	s := report.Ensemble
	h.logger.Debug("step",
		zap.Uint64("step", report.Step),
		zap.String("time", report.Time.UTC().Format(time.RFC3339)),
		zap.Int("active", s.Active),
		zap.Int("inactive", s.Inactive),
		zap.Int("deactivated", report.Deactivated),
		zap.Float64("min_z", s.MinZ),
		zap.Float64("mean_z", s.MeanZ),
		zap.Float64("max_z", s.MaxZ),
	)
}

func (h *StepLogHook) logStage(ctx hooking.HookCtx) {
	report, ok := ctx.Detail.(behavior.StageReport)
	if !ok || report.Deactivated == 0 {
		return
	}

	h.logger.Info("larvae deactivated",
		zap.String("stage", report.Stage),
		zap.Int("count", report.Deactivated),
		zap.Int("selected", report.Selected),
	)
}
