package config

// Presets mirrors this package's two-level model/preset map, keyed here by
// scenario family ("lj-fluid") and preset name instead of by ODE model name.
var Presets = map[string]map[string]*Config{
	"lj-fluid": {
		"dense": {
			Box:           BoxConfig{Min: [3]float64{0, 0, 0}, Max: [3]float64{6, 6, 6}},
			Cutoff:        2.5,
			Skin:          0.3,
			RebuildEvery:  DefaultRebuildEvery,
			NumWorkers:    DefaultNumWorkers,
			BoundsPolicy:  "strict",
			Functor:       FunctorConfig{Epsilon: 1.0, Sigma: 1.0, Cutoff: 2.5},
			Boundaries:    BoundaryConfig{XMin: "periodic", XMax: "periodic", YMin: "periodic", YMax: "periodic", ZMin: "periodic", ZMax: "periodic"},
			Tuner:         TunerConfig{Strategy: "full-search", Reduce: "min", Samples: 3, Interval: 100},
			ParticleCount: 2000,
		},
		"sparse": {
			Box:           BoxConfig{Min: [3]float64{0, 0, 0}, Max: [3]float64{40, 40, 40}},
			Cutoff:        2.5,
			Skin:          0.5,
			RebuildEvery:  DefaultRebuildEvery,
			NumWorkers:    DefaultNumWorkers,
			BoundsPolicy:  "strict",
			Functor:       FunctorConfig{Epsilon: 1.0, Sigma: 1.0, Cutoff: 2.5},
			Boundaries:    BoundaryConfig{XMin: "periodic", XMax: "periodic", YMin: "periodic", YMax: "periodic", ZMin: "periodic", ZMax: "periodic"},
			Tuner:         TunerConfig{Strategy: "predictive", Reduce: "min", Samples: 3, Interval: 200},
			ParticleCount: 500,
		},
		"wall-bounded": {
			Box:           BoxConfig{Min: [3]float64{0, 0, 0}, Max: [3]float64{20, 20, 20}},
			Cutoff:        2.5,
			Skin:          0.3,
			RebuildEvery:  DefaultRebuildEvery,
			NumWorkers:    DefaultNumWorkers,
			BoundsPolicy:  "strict",
			Functor:       FunctorConfig{Epsilon: 1.0, Sigma: 1.0, Cutoff: 2.5},
			Boundaries:    BoundaryConfig{XMin: "reflective", XMax: "reflective", YMin: "reflective", YMax: "reflective", ZMin: "reflective", ZMax: "reflective"},
			Tuner:         TunerConfig{Strategy: "full-search", Reduce: "min", Samples: 3, Interval: 100},
			ParticleCount: 1000,
		},
	},
}

// GetPreset returns a copy of the named preset safe for the caller to
// mutate; the map holds the canonical values so repeated lookups never see
// another caller's overrides.
func GetPreset(scenario, preset string) *Config {
	scenarioPresets, ok := Presets[scenario]
	if !ok {
		return nil
	}
	cfg, ok := scenarioPresets[preset]
	if !ok {
		return nil
	}
	clone := *cfg
	return &clone
}

func ListPresets(scenario string) []string {
	scenarioPresets, ok := Presets[scenario]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(scenarioPresets))
	for name := range scenarioPresets {
		names = append(names, name)
	}
	return names
}
