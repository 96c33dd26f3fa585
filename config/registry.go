package config

import (
	"errors"
	"fmt"
	"math"
	"slices"
)

// Errors reported by the Registry.
var (
	ErrUnknownOption   = errors.New("unknown option")
	ErrOutOfBounds     = errors.New("value out of bounds")
	ErrType            = errors.New("wrong value type")
	ErrDuplicateOption = errors.New("option already registered")
)

// Kind is the value type of an option.
type Kind string

// Supported option kinds.
const (
	KindFloat  Kind = "float"
	KindBool   Kind = "bool"
	KindEnum   Kind = "enum"
	KindString Kind = "string"
)

// Level tells how prominent an option is in listings.
type Level int

// Option levels.
const (
	LevelBasic Level = iota
	LevelAdvanced
)

// Option declares one named, typed configuration value. Float options are
// bounded by [Min, Max]; enum options accept only the values in Enum.
type Option struct {
	Name        string
	Kind        Kind
	Default     any
	Min         float64
	Max         float64
	Enum        []string
	Units       string
	Description string
	Level       Level
}

func (o Option) check(value any) (any, error) {
	switch o.Kind {
	case KindFloat:
		v, ok := toFloat(value)
		if !ok {
			return nil, fmt.Errorf("%s: %w: want float, got %T", o.Name, ErrType, value)
		}

		if math.IsNaN(v) || v < o.Min || v > o.Max {
			return nil, fmt.Errorf("%s: %w: %g not in [%g, %g]",
				o.Name, ErrOutOfBounds, v, o.Min, o.Max)
		}

		return v, nil
	case KindBool:
		v, ok := value.(bool)
		if !ok {
			return nil, fmt.Errorf("%s: %w: want bool, got %T", o.Name, ErrType, value)
		}

		return v, nil
	case KindEnum:
		v, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("%s: %w: want string, got %T", o.Name, ErrType, value)
		}

		if !slices.Contains(o.Enum, v) {
			return nil, fmt.Errorf("%s: %w: %q not in %v",
				o.Name, ErrOutOfBounds, v, o.Enum)
		}

		return v, nil
	case KindString:
		v, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("%s: %w: want string, got %T", o.Name, ErrType, value)
		}

		return v, nil
	default:
		panic("config: unsupported option kind " + string(o.Kind))
	}
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

// Registry stores option declarations and their current values.
type Registry struct {
	order   []string
	options map[string]Option
	values  map[string]any
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		options: make(map[string]Option),
		values:  make(map[string]any),
	}
}

// Add declares an option. Its default must satisfy its own bounds.
func (r *Registry) Add(opt Option) error {
	if _, ok := r.options[opt.Name]; ok {
		return fmt.Errorf("%s: %w", opt.Name, ErrDuplicateOption)
	}

	v, err := opt.check(opt.Default)
	if err != nil {
		return fmt.Errorf("default of %w", err)
	}

	r.order = append(r.order, opt.Name)
	r.options[opt.Name] = opt
	r.values[opt.Name] = v

	return nil
}

// MustAdd is Add that panics on error.
func (r *Registry) MustAdd(opt Option) {
	if err := r.Add(opt); err != nil {
		panic(err)
	}
}

// Set assigns a value to an option. Out-of-bounds values are rejected, never
// clamped.
func (r *Registry) Set(name string, value any) error {
	opt, ok := r.options[name]
	if !ok {
		return fmt.Errorf("%s: %w", name, ErrUnknownOption)
	}

	v, err := opt.check(value)
	if err != nil {
		return err
	}

	r.values[name] = v

	return nil
}

// Get returns the current value of an option.
func (r *Registry) Get(name string) (any, error) {
	v, ok := r.values[name]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, ErrUnknownOption)
	}

	return v, nil
}

// Float returns the current value of a float option.
func (r *Registry) Float(name string) (float64, error) {
	v, err := r.Get(name)
	if err != nil {
		return 0, err
	}

	f, ok := v.(float64)
	if !ok {
		return 0, fmt.Errorf("%s: %w: not a float option", name, ErrType)
	}

	return f, nil
}

// Bool returns the current value of a bool option.
func (r *Registry) Bool(name string) (bool, error) {
	v, err := r.Get(name)
	if err != nil {
		return false, err
	}

	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("%s: %w: not a bool option", name, ErrType)
	}

	return b, nil
}

// String returns the current value of a string or enum option.
func (r *Registry) String(name string) (string, error) {
	v, err := r.Get(name)
	if err != nil {
		return "", err
	}

	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%s: %w: not a string option", name, ErrType)
	}

	return s, nil
}

// Options lists the declared options in registration order.
func (r *Registry) Options() []Option {
	out := make([]Option, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.options[name])
	}

	return out
}
