// Package config reads and validates benchmark configuration files.
package config

import (
	"encoding/json"

	"github.com/a8m/envsubst"
	"github.com/edaniels/golog"
	"github.com/pkg/errors"

	"go.viam.com/estimate/bench"
	"go.viam.com/estimate/fusion"
	"go.viam.com/estimate/sim"
)

// BenchConfig is the top-level configuration for a benchmark run. Zero
// sections fall back to their package defaults.
type BenchConfig struct {
	OutputRoot string                 `json:"output_root"`
	Observer   fusion.Params          `json:"observer"`
	Sim        sim.Config             `json:"sim"`
	MonteCarlo bench.MonteCarloConfig `json:"monte_carlo"`
}

// Default returns a BenchConfig populated with every package's
// defaults, writing under "out".
func Default() BenchConfig {
	return BenchConfig{
		OutputRoot: "out",
		Observer:   fusion.DefaultParams(),
		Sim:        sim.DefaultConfig(),
		MonteCarlo: bench.DefaultMonteCarloConfig(),
	}
}

// Read reads a JSON configuration from the given path, substituting
// ${ENV_VAR} references before parsing. Fields absent from the file
// keep their defaults.
func Read(path string, logger golog.Logger) (BenchConfig, error) {
	buf, err := envsubst.ReadFile(path)
	if err != nil {
		return BenchConfig{}, errors.Wrapf(err, "reading config %q", path)
	}

	cfg := Default()
	if err := json.Unmarshal(buf, &cfg); err != nil {
		return BenchConfig{}, errors.Wrapf(err, "parsing config %q", path)
	}
	if err := cfg.Ensure(); err != nil {
		return BenchConfig{}, err
	}
	logger.Debugw("loaded config", "path", path, "output_root", cfg.OutputRoot)
	return cfg, nil
}

// Ensure checks that every section of the configuration is valid.
func (cfg BenchConfig) Ensure() error {
	if cfg.OutputRoot == "" {
		return errors.New("output_root must not be empty")
	}
	if err := cfg.Observer.Validate(); err != nil {
		return errors.Wrap(err, "observer")
	}
	if err := cfg.Sim.Validate(); err != nil {
		return errors.Wrap(err, "sim")
	}
	if err := cfg.MonteCarlo.Validate(); err != nil {
		return errors.Wrap(err, "monte_carlo")
	}
	return nil
}
