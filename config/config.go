// Package config declares the options of a larval drift run and loads them
// from YAML files, .env files and the environment.
package config

import (
	"fmt"
	"time"

	"github.com/sarchlab/larvadrift/transport"
)

// Option names of the default registry.
const (
	OptCompletePLD     = "ibm:complete_pld"
	OptStepsPerDay     = "ibm:steps_per_day"
	OptMigration       = "ibm:migration"
	OptAgeInactive     = "ibm:age_inactive"
	OptCoastlineAction = "general:coastline_action"
	OptTimezone        = "general:timezone"
	OptWindDriftFactor = "drift:wind_drift_factor"
)

// NewDefaultRegistry declares every option a run understands, at its default
// value.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()

	r.MustAdd(Option{
		Name:        OptCompletePLD,
		Kind:        KindFloat,
		Default:     1.0,
		Min:         1.0,
		Max:         90.0,
		Units:       "days",
		Description: "Days larvae in PLD",
		Level:       LevelBasic,
	})
	r.MustAdd(Option{
		Name:        OptStepsPerDay,
		Kind:        KindFloat,
		Default:     24.0,
		Min:         1.0,
		Max:         86400.0,
		Units:       "steps/day",
		Description: "Steps that make one day of larval age",
		Level:       LevelAdvanced,
	})
	r.MustAdd(Option{
		Name:        OptMigration,
		Kind:        KindBool,
		Default:     true,
		Description: "Enable diel vertical migration",
		Level:       LevelBasic,
	})
	r.MustAdd(Option{
		Name:        OptAgeInactive,
		Kind:        KindBool,
		Default:     true,
		Description: "Keep counting steps of deactivated larvae",
		Level:       LevelAdvanced,
	})
	r.MustAdd(Option{
		Name:        OptCoastlineAction,
		Kind:        KindEnum,
		Default:     transport.CoastlinePrevious,
		Enum: []string{
			transport.CoastlinePrevious,
			transport.CoastlineStranding,
			transport.CoastlineNone,
		},
		Description: "What happens to larvae reaching land",
		Level:       LevelBasic,
	})
	r.MustAdd(Option{
		Name:        OptTimezone,
		Kind:        KindString,
		Default:     "UTC",
		Description: "Time zone of the hour of day driving migration",
		Level:       LevelAdvanced,
	})
	r.MustAdd(Option{
		Name:        OptWindDriftFactor,
		Kind:        KindFloat,
		Default:     0.0,
		Min:         0.0,
		Max:         0.1,
		Description: "Fraction of wind speed added to larval drift",
		Level:       LevelAdvanced,
	})

	return r
}

// IBM holds the options of the behavior layer.
type IBM struct {
	CompletePLD float64 `yaml:"complete_pld"  env:"LARVADRIFT_COMPLETE_PLD"`
	StepsPerDay float64 `yaml:"steps_per_day" env:"LARVADRIFT_STEPS_PER_DAY"`
	Migration   bool    `yaml:"migration"     env:"LARVADRIFT_MIGRATION"`
	AgeInactive bool    `yaml:"age_inactive"  env:"LARVADRIFT_AGE_INACTIVE"`
	Timezone    string  `yaml:"timezone"      env:"LARVADRIFT_TIMEZONE"`
}

// Field holds the spatially uniform environment used by the reference host.
type Field struct {
	CurrentU        float64 `yaml:"current_u"         env:"LARVADRIFT_CURRENT_U"`
	CurrentV        float64 `yaml:"current_v"         env:"LARVADRIFT_CURRENT_V"`
	WindU           float64 `yaml:"wind_u"            env:"LARVADRIFT_WIND_U"`
	WindV           float64 `yaml:"wind_v"            env:"LARVADRIFT_WIND_V"`
	UpwardVelocity  float64 `yaml:"upward_velocity"   env:"LARVADRIFT_UPWARD_VELOCITY"`
	WindDriftFactor float64 `yaml:"wind_drift_factor" env:"LARVADRIFT_WIND_DRIFT_FACTOR"`
	CoastlineAction string  `yaml:"coastline_action"  env:"LARVADRIFT_COASTLINE_ACTION"`
}

// Seeding describes where larvae are released.
type Seeding struct {
	Particles int     `yaml:"particles" env:"LARVADRIFT_PARTICLES"`
	X         float64 `yaml:"x"         env:"LARVADRIFT_SEED_X"`
	Y         float64 `yaml:"y"         env:"LARVADRIFT_SEED_Y"`
	Z         float64 `yaml:"z"         env:"LARVADRIFT_SEED_Z"`
	Radius    float64 `yaml:"radius"    env:"LARVADRIFT_SEED_RADIUS"`
	Length    float64 `yaml:"length"    env:"LARVADRIFT_SEED_LENGTH"`
	RandSeed  int64   `yaml:"rand_seed" env:"LARVADRIFT_RAND_SEED"`
}

// Run holds the stepping and instrumentation settings.
type Run struct {
	Start       time.Time     `yaml:"start"        env:"LARVADRIFT_START"`
	Step        time.Duration `yaml:"step"         env:"LARVADRIFT_STEP"`
	Steps       uint64        `yaml:"steps"        env:"LARVADRIFT_STEPS"`
	RecordPath  string        `yaml:"record_path"  env:"LARVADRIFT_RECORD_PATH"`
	Monitor     bool          `yaml:"monitor"      env:"LARVADRIFT_MONITOR"`
	MonitorPort int           `yaml:"monitor_port" env:"LARVADRIFT_MONITOR_PORT"`
}

// Config is the complete configuration of a run.
type Config struct {
	IBM     IBM     `yaml:"ibm"`
	Field   Field   `yaml:"field"`
	Seeding Seeding `yaml:"seeding"`
	Run     Run     `yaml:"run"`
}

// Default returns the configuration of a run with every option at its default.
func Default() Config {
	return Config{
		IBM: IBM{
			CompletePLD: 1.0,
			StepsPerDay: 24.0,
			Migration:   true,
			AgeInactive: true,
			Timezone:    "UTC",
		},
		Field: Field{
			CoastlineAction: transport.CoastlinePrevious,
		},
		Seeding: Seeding{
			Particles: 100,
			Length:    0.5,
			RandSeed:  1,
		},
		Run: Run{
			Start: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			Step:  time.Hour,
			Steps: 48,
		},
	}
}

// Registry returns a default registry holding this configuration's values.
// It fails if any value is outside its option's bounds.
func (c Config) Registry() (*Registry, error) {
	r := NewDefaultRegistry()

	values := []struct {
		name  string
		value any
	}{
		{OptCompletePLD, c.IBM.CompletePLD},
		{OptStepsPerDay, c.IBM.StepsPerDay},
		{OptMigration, c.IBM.Migration},
		{OptAgeInactive, c.IBM.AgeInactive},
		{OptTimezone, c.IBM.Timezone},
		{OptCoastlineAction, c.Field.CoastlineAction},
		{OptWindDriftFactor, c.Field.WindDriftFactor},
	}

	for _, v := range values {
		if err := r.Set(v.name, v.value); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Validate checks every bounded option and the run settings.
func (c Config) Validate() error {
	if _, err := c.Registry(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	if _, err := c.Location(); err != nil {
		return err
	}

	if c.Run.Step <= 0 {
		return fmt.Errorf("config: run.step: %w: must be positive", ErrOutOfBounds)
	}

	if c.Seeding.Particles < 0 {
		return fmt.Errorf("config: seeding.particles: %w: must not be negative",
			ErrOutOfBounds)
	}

	if c.Seeding.Radius < 0 {
		return fmt.Errorf("config: seeding.radius: %w: must not be negative",
			ErrOutOfBounds)
	}

	return nil
}

// Location resolves the configured time zone.
func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.IBM.Timezone)
	if err != nil {
		return nil, fmt.Errorf("config: timezone %q: %w", c.IBM.Timezone, err)
	}

	return loc, nil
}
