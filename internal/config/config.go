// Package config loads and defaults the engine's YAML configuration: the
// subdomain box, cutoff/skin, functor parameters, per-face boundary
// treatment, tuner knobs, and seed/particle-count for scenario generation.
// Grounded on config.go's DefaultConfig/Load/Save shape, generalized from an
// ODE model's dt/duration/init-state fields to this engine's
// box/cutoff/skin/tuner fields.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cellgrid/autotune/internal/container"
	"github.com/cellgrid/autotune/internal/migration"
	"github.com/cellgrid/autotune/internal/particle"
)

const (
	DefaultCutoff        = 2.5
	DefaultSkin          = 0.3
	DefaultEpsilon       = 1.0
	DefaultSigma         = 1.0
	DefaultRebuildEvery  = 10
	DefaultNumWorkers    = 4
	DefaultSamples       = 3
	DefaultInterval      = 100
	DefaultParticleCount = 500
)

// BoxConfig is the YAML-friendly form of particle.Box.
type BoxConfig struct {
	Min [3]float64 `yaml:"min"`
	Max [3]float64 `yaml:"max"`
}

func (b BoxConfig) ToBox() particle.Box {
	return particle.Box{Min: particle.Vec3(b.Min), Max: particle.Vec3(b.Max)}
}

// FunctorConfig parameterizes the reference Lennard-Jones kernel.
type FunctorConfig struct {
	Epsilon float64 `yaml:"epsilon"`
	Sigma   float64 `yaml:"sigma"`
	Cutoff  float64 `yaml:"cutoff"`
}

// BoundaryConfig names each face's treatment as a string so YAML stays
// readable ("periodic", "reflective", "none"); ToMigrationConfig resolves it
// to migration.Config.
type BoundaryConfig struct {
	XMin string `yaml:"x_min"`
	XMax string `yaml:"x_max"`
	YMin string `yaml:"y_min"`
	YMax string `yaml:"y_max"`
	ZMin string `yaml:"z_min"`
	ZMax string `yaml:"z_max"`
}

func parseKind(s string) migration.Kind {
	switch s {
	case "reflective":
		return migration.Reflective
	case "none":
		return migration.None
	default:
		return migration.Periodic
	}
}

func (b BoundaryConfig) ToMigrationConfig() migration.Config {
	return migration.Config{Faces: [6]migration.Kind{
		parseKind(b.XMin), parseKind(b.XMax),
		parseKind(b.YMin), parseKind(b.YMax),
		parseKind(b.ZMin), parseKind(b.ZMax),
	}}
}

// TunerConfig selects the autotune.Strategy and its knobs by name; resolved
// by internal/experiment's registry rather than here, so this package never
// needs to import internal/autotune.
type TunerConfig struct {
	Strategy string `yaml:"strategy"` // full-search, predictive, bayesian, rule-based
	Reduce   string `yaml:"reduce"`   // min, mean, median
	Samples  int    `yaml:"samples"`
	Interval int    `yaml:"interval"`
}

// Config is the top-level engine configuration a scenario file loads.
type Config struct {
	Box           BoxConfig      `yaml:"box"`
	Cutoff        float64        `yaml:"cutoff"`
	Skin          float64        `yaml:"skin"`
	RebuildEvery  int            `yaml:"rebuild_every"`
	NumWorkers    int            `yaml:"num_workers"`
	BoundsPolicy  string         `yaml:"bounds_policy"` // strict, lenient
	Functor       FunctorConfig  `yaml:"functor"`
	Boundaries    BoundaryConfig `yaml:"boundaries"`
	Tuner         TunerConfig    `yaml:"tuner"`
	Containers    []string       `yaml:"containers"` // allow-list; empty means every container family
	Seed          int64          `yaml:"seed"`
	ParticleCount int            `yaml:"particle_count"`
}

func DefaultConfig() *Config {
	return &Config{
		Box:          BoxConfig{Min: [3]float64{0, 0, 0}, Max: [3]float64{10, 10, 10}},
		Cutoff:       DefaultCutoff,
		Skin:         DefaultSkin,
		RebuildEvery: DefaultRebuildEvery,
		NumWorkers:   DefaultNumWorkers,
		BoundsPolicy: "strict",
		Functor:      FunctorConfig{Epsilon: DefaultEpsilon, Sigma: DefaultSigma, Cutoff: DefaultCutoff},
		Boundaries: BoundaryConfig{
			XMin: "periodic", XMax: "periodic",
			YMin: "periodic", YMax: "periodic",
			ZMin: "periodic", ZMax: "periodic",
		},
		Tuner:         TunerConfig{Strategy: "full-search", Reduce: "min", Samples: DefaultSamples, Interval: DefaultInterval},
		ParticleCount: DefaultParticleCount,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Policy resolves the YAML bounds-policy name to container.BoundsPolicy.
func (c *Config) Policy() container.BoundsPolicy {
	if c.BoundsPolicy == "lenient" {
		return container.LenientBounds
	}
	return container.StrictBounds
}

func (c *Config) Validate() error {
	if c.Cutoff <= 0 {
		return fmt.Errorf("config: cutoff must be positive, got %f", c.Cutoff)
	}
	if c.Skin < 0 {
		return fmt.Errorf("config: skin must be non-negative, got %f", c.Skin)
	}
	for i := 0; i < 3; i++ {
		if c.Box.Max[i] <= c.Box.Min[i] {
			return fmt.Errorf("config: box max must exceed min on axis %d", i)
		}
	}
	return nil
}
