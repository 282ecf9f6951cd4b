// Package config holds the solver's Options struct (§6, "Options struct:
// { max_iter, kkt_tol, barrier_init, barrier_decay, fraction_to_boundary,
// line_search_enabled, nthreads }") plus the horizon/model setup a
// cmd/hocp invocation needs to build an OCPSolver, loaded from YAML.
// Grounded on the teacher's internal/config/config.go (yaml.v3 struct
// tags, Default*()/Load/Save triad).
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultMaxIter            = 30
	DefaultKKTTol             = 1e-6
	DefaultBarrierInit        = 1e-1
	DefaultBarrierDecay       = 0.2
	DefaultFractionToBoundary = 0.995
	DefaultNThreads           = 4
	DefaultTauB               = 1.0 / 0.01 // 1/0.01, a stiff Baumgarte time constant (the default step T/N is 0.05)
	DefaultN                  = 20
	DefaultT                  = 1.0
)

// Options is the solver-construction knob set of §6, extended with the
// horizon and model fields cmd/hocp needs to assemble a TimeDiscretization
// and Robot before calling solver.New.
type Options struct {
	Model string `yaml:"model"`

	N int     `yaml:"n"`
	T float64 `yaml:"t"`

	MaxIter            int     `yaml:"max_iter"`
	KKTTol             float64 `yaml:"kkt_tol"`
	BarrierInit        float64 `yaml:"barrier_init"`
	BarrierDecay       float64 `yaml:"barrier_decay"`
	FractionToBoundary float64 `yaml:"fraction_to_boundary"`
	LineSearchEnabled  bool    `yaml:"line_search_enabled"`
	NThreads           int     `yaml:"nthreads"`
	TauB               float64 `yaml:"tau_b"`

	InitState InitStateOptions `yaml:"init_state"`
}

// InitStateOptions seeds q(0)/v(0) for the reference robots §6's
// "solve(t, q, v)" entry point accepts; field names mirror the teacher's
// InitStateConfig but are reinterpreted as configuration/velocity
// manifold coordinates rather than a single scalar angle pair.
type InitStateOptions struct {
	Q []float64 `yaml:"q"`
	V []float64 `yaml:"v"`
}

// DefaultOptions returns the Options of a single free pendulum over a
// unit-length horizon, scenario S1's setup.
func DefaultOptions() *Options {
	return &Options{
		Model:              "pendulum",
		N:                  DefaultN,
		T:                  DefaultT,
		MaxIter:            DefaultMaxIter,
		KKTTol:             DefaultKKTTol,
		BarrierInit:        DefaultBarrierInit,
		BarrierDecay:       DefaultBarrierDecay,
		FractionToBoundary: DefaultFractionToBoundary,
		LineSearchEnabled:  true,
		NThreads:           DefaultNThreads,
		TauB:               DefaultTauB,
		InitState:          InitStateOptions{Q: []float64{2.0}, V: []float64{0.0}},
	}
}

// Validate checks the construction-time invariants of §7's
// InvalidArgument kind: non-positive horizon, non-positive thread count,
// non-positive max_iter, and a fraction_to_boundary outside (0,1). The
// barrier parameters are not checked.
func (o *Options) Validate() error {
	if o.N <= 0 || o.T <= 0 {
		return fmt.Errorf("config: invalid horizon N=%d T=%f", o.N, o.T)
	}
	if o.NThreads <= 0 {
		return fmt.Errorf("config: nthreads must be positive, got %d", o.NThreads)
	}
	if o.MaxIter <= 0 {
		return fmt.Errorf("config: max_iter must be positive, got %d", o.MaxIter)
	}
	if o.FractionToBoundary <= 0 || o.FractionToBoundary >= 1 {
		return fmt.Errorf("config: fraction_to_boundary must be in (0,1), got %f", o.FractionToBoundary)
	}
	return nil
}

// Load reads an Options struct from a YAML file, defaulting any field the
// file omits.
func Load(path string) (*Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	opts := DefaultOptions()
	if err := yaml.Unmarshal(data, opts); err != nil {
		return nil, err
	}
	return opts, nil
}

// Save writes opts to path as YAML.
func Save(path string, opts *Options) error {
	data, err := yaml.Marshal(opts)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
