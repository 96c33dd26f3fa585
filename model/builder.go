package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/sarchlab/larvadrift/behavior"
	"github.com/sarchlab/larvadrift/config"
	"github.com/sarchlab/larvadrift/ensemble"
	"github.com/sarchlab/larvadrift/sim/hooking"
	"github.com/sarchlab/larvadrift/transport"
)

// ErrNoTransport is returned when a Model is built without a host transport.
var ErrNoTransport = errors.New("model: transport is required")

// Builder can be used to build a Model.
type Builder struct {
	cfg       config.Config
	transport transport.Transport
	ensemble  *ensemble.Ensemble
	hooks     []hooking.Hook
}

// MakeBuilder creates a builder with the default configuration.
func MakeBuilder() Builder {
	return Builder{
		cfg: config.Default(),
	}
}

// WithConfig sets the configuration of the model.
func (b Builder) WithConfig(cfg config.Config) Builder {
	b.cfg = cfg
	return b
}

// WithTransport sets the host transport the model delegates to.
func (b Builder) WithTransport(t transport.Transport) Builder {
	b.transport = t
	return b
}

// WithEnsemble sets the particles the model steps. Without it the model
// starts with an empty ensemble.
func (b Builder) WithEnsemble(e *ensemble.Ensemble) Builder {
	b.ensemble = e
	return b
}

// WithHook registers a hook on the model.
func (b Builder) WithHook(h hooking.Hook) Builder {
	b.hooks = append(b.hooks[:len(b.hooks):len(b.hooks)], h)
	return b
}

// Build validates the configuration and builds the Model. Configuration
// errors are reported here, before any step runs.
func (b Builder) Build() (*Model, error) {
	if err := b.cfg.Validate(); err != nil {
		return nil, err
	}

	if b.transport == nil {
		return nil, ErrNoTransport
	}

	stages, err := b.buildStages()
	if err != nil {
		return nil, err
	}

	e := b.ensemble
	if e == nil {
		e = ensemble.New()
	}

	m := &Model{
		HookableBase: hooking.NewHookableBase(),
		ensemble:     e,
		stages:       stages,
	}

	for _, h := range b.hooks {
		m.AcceptHook(h)
	}

	return m, nil
}

// buildStages reads the behavior options through the registry, which holds
// only values that passed their bounds.
func (b Builder) buildStages() ([]behavior.Stage, error) {
	reg, err := b.cfg.Registry()
	if err != nil {
		return nil, err
	}

	migration, err := reg.Bool(config.OptMigration)
	if err != nil {
		return nil, err
	}

	completePLD, err := reg.Float(config.OptCompletePLD)
	if err != nil {
		return nil, err
	}

	stepsPerDay, err := reg.Float(config.OptStepsPerDay)
	if err != nil {
		return nil, err
	}

	ageInactive, err := reg.Bool(config.OptAgeInactive)
	if err != nil {
		return nil, err
	}

	timezone, err := reg.String(config.OptTimezone)
	if err != nil {
		return nil, err
	}

	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("model: timezone %q: %w", timezone, err)
	}

	var stages []behavior.Stage
	if migration {
		stages = append(stages, behavior.NewDielVerticalMigration(loc))
	}

	mortality := behavior.NewMortality(completePLD, stepsPerDay)
	mortality.AgeInactive = ageInactive

	return append(stages,
		mortality,
		newAdvectionStage(b.transport),
		newMixingStage(b.transport),
	), nil
}
