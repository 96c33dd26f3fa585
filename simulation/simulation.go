// Package simulation drives a Model with the serial event engine, one step
// event per timestep, and owns the recorder and monitor of the run.
package simulation

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/sarchlab/larvadrift/config"
	"github.com/sarchlab/larvadrift/datarecording"
	"github.com/sarchlab/larvadrift/ensemble"
	"github.com/sarchlab/larvadrift/model"
	"github.com/sarchlab/larvadrift/monitoring"
	"github.com/sarchlab/larvadrift/sim/timing"
)

// Result summarizes a finished run.
type Result struct {
	RunID        string
	Steps        uint64
	StoppedEarly bool
	Final        ensemble.Summary
	Reasons      map[string]int
}

// A Simulation runs the steps of one larval drift experiment.
type Simulation struct {
	id     string
	cfg    config.Config
	logger *zap.Logger

	engine    *timing.SerialEngine
	model     *model.Model
	scheduler *timing.StepScheduler

	dataRecorder datarecording.DataRecorder
	execRecorder *datarecording.ExecRecorder
	stepRecorder *datarecording.StepRecorder

	monitor  *monitoring.Monitor
	progress *monitoring.ProgressBar

	stoppedEarly bool
}

// ID returns the run ID.
func (s *Simulation) ID() string {
	return s.id
}

// GetEngine returns the engine used in the simulation.
func (s *Simulation) GetEngine() *timing.SerialEngine {
	return s.engine
}

// GetModel returns the model being stepped.
func (s *Simulation) GetModel() *model.Model {
	return s.model
}

// GetDataRecorder returns the data recorder, nil when recording is off.
func (s *Simulation) GetDataRecorder() datarecording.DataRecorder {
	return s.dataRecorder
}

// GetMonitor returns the monitor, nil when monitoring is off.
func (s *Simulation) GetMonitor() *monitoring.Monitor {
	return s.monitor
}

// Handle runs one step of the model. The next step is scheduled only while
// larvae remain active.
func (s *Simulation) Handle(evt any) error {
	stepEvt, ok := evt.(*timing.StepEvent)
	if !ok {
		return fmt.Errorf("simulation: unexpected event %T", evt)
	}

	s.scheduler.Consumed()

	if s.progress != nil {
		s.progress.IncrementInProgress(1)
	}

	report, err := s.model.Step(stepEvt.Clock)
	if err != nil {
		return err
	}

	if s.progress != nil {
		s.progress.MoveInProgressToFinished(1)
	}

	if report.Ensemble.Active == 0 {
		s.stoppedEarly = s.scheduler.Limit() == 0 ||
			s.scheduler.Scheduled() < s.scheduler.Limit()
		s.logger.Info("no active larvae left",
			zap.Uint64("step", report.Step))

		return nil
	}

	s.scheduler.ScheduleNext()

	return nil
}

// Run schedules the first step and processes events until the step limit is
// reached, no larva is active, or a stage fails.
func (s *Simulation) Run() (Result, error) {
	if s.execRecorder != nil {
		s.execRecorder.Start(
			datarecording.ExecInfo{Property: "Run ID", Value: s.id},
			datarecording.ExecInfo{Property: "Complete PLD",
				Value: strconv.FormatFloat(s.cfg.IBM.CompletePLD, 'g', -1, 64)},
			datarecording.ExecInfo{Property: "Steps Per Day",
				Value: strconv.FormatFloat(s.cfg.IBM.StepsPerDay, 'g', -1, 64)},
			datarecording.ExecInfo{Property: "Migration",
				Value: strconv.FormatBool(s.cfg.IBM.Migration)},
			datarecording.ExecInfo{Property: "Particles",
				Value: strconv.Itoa(s.model.Ensemble().Len())},
		)
	}

	s.logger.Info("run started",
		zap.String("run_id", s.id),
		zap.Int("particles", s.model.Ensemble().Len()),
		zap.Uint64("steps", s.cfg.Run.Steps),
		zap.Duration("step", s.cfg.Run.Step),
	)

	var err error
	if s.scheduler.ScheduleNext() {
		err = s.engine.Run()
	}

	result := s.result()

	if err != nil {
		s.logger.Error("run failed",
			zap.Uint64("steps", result.Steps), zap.Error(err))

		return result, err
	}

	if s.stepRecorder != nil {
		if recErrs := s.stepRecorder.Errors(); len(recErrs) > 0 {
			return result, errors.Join(recErrs...)
		}
	}

	s.logger.Info("run finished",
		zap.Uint64("steps", result.Steps),
		zap.Int("active", result.Final.Active),
		zap.Bool("stopped_early", result.StoppedEarly),
	)

	return result, nil
}

func (s *Simulation) result() Result {
	return Result{
		RunID:        s.id,
		Steps:        s.model.StepsTaken(),
		StoppedEarly: s.stoppedEarly,
		Final:        s.model.Ensemble().Summary(),
		Reasons:      s.model.Ensemble().ReasonCounts(),
	}
}

// Terminate finishes the recording and stops the monitor.
func (s *Simulation) Terminate() error {
	var errs []error

	if s.monitor != nil {
		if s.progress != nil {
			s.monitor.CompleteProgressBar(s.progress)
		}

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		errs = append(errs, s.monitor.StopServer(ctx))
		cancel()
	}

	if s.execRecorder != nil {
		errs = append(errs, s.execRecorder.End())
	}

	if s.dataRecorder != nil {
		errs = append(errs, s.dataRecorder.Close())
	}

	_ = s.logger.Sync()

	return errors.Join(errs...)
}
