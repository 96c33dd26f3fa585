package simulation

import (
	"context"
	"errors"
	"math/rand"

	"go.uber.org/zap"

	"github.com/sarchlab/larvadrift/config"
	"github.com/sarchlab/larvadrift/datarecording"
	"github.com/sarchlab/larvadrift/ensemble"
	"github.com/sarchlab/larvadrift/logging"
	"github.com/sarchlab/larvadrift/model"
	"github.com/sarchlab/larvadrift/monitoring"
	"github.com/sarchlab/larvadrift/sim/hooking"
	"github.com/sarchlab/larvadrift/sim/idgen"
	"github.com/sarchlab/larvadrift/sim/timing"
	"github.com/sarchlab/larvadrift/transport"
)

// Builder can be used to build a simulation.
type Builder struct {
	cfg         config.Config
	transport   transport.Transport
	ensemble    *ensemble.Ensemble
	logger      *zap.Logger
	hooks       []hooking.Hook
	recordOn    bool
	monitorOn   bool
	openBrowser bool
}

// MakeBuilder creates a new builder with the default configuration. Recording
// and monitoring follow the configuration's run section.
func MakeBuilder() Builder {
	return Builder{
		cfg:    config.Default(),
		logger: zap.NewNop(),
	}
}

// WithConfig sets the run configuration.
func (b Builder) WithConfig(cfg config.Config) Builder {
	b.cfg = cfg
	return b
}

// WithTransport sets the host transport. Without it, a Drift host over the
// configured uniform field is used.
func (b Builder) WithTransport(t transport.Transport) Builder {
	b.transport = t
	return b
}

// WithEnsemble sets the larvae to step. Without it, larvae are seeded on a
// disc as configured.
func (b Builder) WithEnsemble(e *ensemble.Ensemble) Builder {
	b.ensemble = e
	return b
}

// WithLogger sets the logger of the run.
func (b Builder) WithLogger(logger *zap.Logger) Builder {
	b.logger = logger
	return b
}

// WithHook registers an extra hook on the model.
func (b Builder) WithHook(h hooking.Hook) Builder {
	b.hooks = append(b.hooks[:len(b.hooks):len(b.hooks)], h)
	return b
}

// WithOutputFileName turns recording on, writing to filename + ".sqlite3".
// An empty name picks a unique one. A clickhouse:// DSN records to that
// server instead.
func (b Builder) WithOutputFileName(filename string) Builder {
	b.recordOn = true
	b.cfg.Run.RecordPath = filename

	return b
}

// WithoutRecording turns recording off.
func (b Builder) WithoutRecording() Builder {
	b.recordOn = false
	b.cfg.Run.RecordPath = ""

	return b
}

// WithMonitorPort turns monitoring on, on the given port. Port 0 picks a
// random one.
func (b Builder) WithMonitorPort(port int) Builder {
	b.monitorOn = true
	b.cfg.Run.Monitor = true
	b.cfg.Run.MonitorPort = port

	return b
}

// WithoutMonitoring sets the simulation to not use monitoring.
func (b Builder) WithoutMonitoring() Builder {
	b.monitorOn = false
	b.cfg.Run.Monitor = false

	return b
}

// WithBrowser opens the monitor page in a browser once the server is up.
func (b Builder) WithBrowser() Builder {
	b.openBrowser = true
	return b
}

// Build validates the configuration and builds the simulation.
func (b Builder) Build() (*Simulation, error) {
	if err := b.cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Simulation{
		id:     idgen.NewGlobal().Generate(),
		cfg:    b.cfg,
		logger: b.logger.With(zap.String("component", "simulation")),
		engine: timing.NewSerialEngine(),
	}

	modelBuilder := model.MakeBuilder().
		WithConfig(b.cfg).
		WithTransport(b.buildTransport()).
		WithEnsemble(b.buildEnsemble()).
		WithHook(logging.NewStepLogHook(b.logger))

	if err := b.buildRecorders(s); err != nil {
		return nil, err
	}

	if s.stepRecorder != nil {
		modelBuilder = modelBuilder.WithHook(s.stepRecorder)
	}

	for _, h := range b.hooks {
		modelBuilder = modelBuilder.WithHook(h)
	}

	m, err := modelBuilder.Build()
	if err != nil {
		return nil, errors.Join(err, closeRecorder(s))
	}

	s.model = m
	s.scheduler = timing.NewStepScheduler(
		s, s.engine, b.cfg.Run.Start, b.cfg.Run.Step, b.cfg.Run.Steps)

	if b.monitorOn || b.cfg.Run.Monitor {
		if err := b.startMonitor(s); err != nil {
			return nil, errors.Join(err, closeRecorder(s))
		}
	}

	return s, nil
}

func (b Builder) buildTransport() transport.Transport {
	if b.transport != nil {
		return b.transport
	}

	f := b.cfg.Field
	drift := transport.NewDrift(transport.UniformField{
		transport.XSeaWaterVelocity:      f.CurrentU,
		transport.YSeaWaterVelocity:      f.CurrentV,
		transport.XWind:                  f.WindU,
		transport.YWind:                  f.WindV,
		transport.UpwardSeaWaterVelocity: f.UpwardVelocity,
	})
	drift.WindDriftFactor = f.WindDriftFactor
	drift.CoastlineAction = f.CoastlineAction

	return drift
}

func (b Builder) buildEnsemble() *ensemble.Ensemble {
	if b.ensemble != nil {
		return b.ensemble
	}

	sd := b.cfg.Seeding
	e := ensemble.New()
	e.SeedDisc(
		sd.Particles,
		ensemble.Particle{X: sd.X, Y: sd.Y, Z: sd.Z, Length: sd.Length},
		sd.Radius,
		rand.New(rand.NewSource(sd.RandSeed)),
	)

	return e
}

func (b Builder) buildRecorders(s *Simulation) error {
	if !b.recordOn && b.cfg.Run.RecordPath == "" {
		return nil
	}

	recorder, err := b.openRecorder()
	if err != nil {
		return err
	}

	s.dataRecorder = recorder

	if s.execRecorder, err = datarecording.NewExecRecorder(recorder); err != nil {
		return errors.Join(err, closeRecorder(s))
	}

	if s.stepRecorder, err = datarecording.NewStepRecorder(recorder); err != nil {
		return errors.Join(err, closeRecorder(s))
	}

	return nil
}

func (b Builder) openRecorder() (datarecording.DataRecorder, error) {
	target := b.cfg.Run.RecordPath
	if datarecording.IsClickHouseDSN(target) {
		return datarecording.NewClickHouse(context.Background(), target)
	}

	return datarecording.New(target)
}

func (b Builder) startMonitor(s *Simulation) error {
	s.monitor = monitoring.NewMonitor().
		WithLogger(b.logger).
		WithPortNumber(b.cfg.Run.MonitorPort).
		WithBrowser(b.openBrowser)
	s.monitor.RegisterEngine(s.engine)
	s.monitor.RegisterModel(s.model)

	s.progress = s.monitor.CreateProgressBar("steps", b.cfg.Run.Steps)

	_, err := s.monitor.StartServer()

	return err
}

func closeRecorder(s *Simulation) error {
	if s.dataRecorder == nil {
		return nil
	}

	return s.dataRecorder.Close()
}
