package config

// Presets holds one Options value per named scenario, keyed by model
// family then scenario name — grounded on the teacher's
// internal/config/presets.go two-level map, repurposed from simulation
// initial conditions to the solver scenarios of §8.
var Presets = map[string]map[string]*Options{
	"pendulum": {
		"s1": {
			Model: "pendulum", N: 20, T: 1.0,
			MaxIter: 15, KKTTol: 1e-6, BarrierInit: 1e-1, BarrierDecay: 0.2,
			FractionToBoundary: 0.995, LineSearchEnabled: true, NThreads: 4,
			TauB:      20.0,
			InitState: InitStateOptions{Q: []float64{2.0}, V: []float64{0.0}},
		},
	},
	"quadruped": {
		"s2_standing": {
			Model: "quadruped", N: 20, T: 0.5,
			MaxIter: 30, KKTTol: 1e-6, BarrierInit: 1e-1, BarrierDecay: 0.2,
			FractionToBoundary: 0.995, LineSearchEnabled: true, NThreads: 4,
			TauB:      40.0,
			InitState: InitStateOptions{},
		},
	},
	"impulse": {
		"s3_single_impulse": {
			Model: "quadruped", N: 20, T: 0.5,
			MaxIter: 30, KKTTol: 1e-6, BarrierInit: 1e-1, BarrierDecay: 0.2,
			FractionToBoundary: 0.995, LineSearchEnabled: true, NThreads: 4,
			TauB: 40.0,
		},
		"s4_sto_refinement": {
			Model: "quadruped", N: 20, T: 0.5,
			MaxIter: 30, KKTTol: 1e-6, BarrierInit: 1e-1, BarrierDecay: 0.2,
			FractionToBoundary: 0.995, LineSearchEnabled: true, NThreads: 4,
			TauB: 40.0,
		},
	},
}

// GetPreset returns the named scenario's Options, or nil if the model or
// scenario name is unknown.
func GetPreset(model, scenario string) *Options {
	byModel, ok := Presets[model]
	if !ok {
		return nil
	}
	opts, ok := byModel[scenario]
	if !ok {
		return nil
	}
	return opts
}

// ListPresets returns every scenario name registered under model.
func ListPresets(model string) []string {
	byModel, ok := Presets[model]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(byModel))
	for name := range byModel {
		names = append(names, name)
	}
	return names
}
