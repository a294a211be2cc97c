// Package disturbance provides the deterministic per-channel disturbance
// generators used by the benchmark drivers. Generators are pure functions
// of the step index plus their own replayable state; all randomness stays
// with the caller.
package disturbance

import (
	"github.com/pkg/errors"

	"go.viam.com/estimate/utils"
)

// Kind names a disturbance family.
type Kind string

// The supported disturbance families.
const (
	KindPointwiseBounded   Kind = "pointwise_bounded"
	KindDrift              Kind = "drift"
	KindSlewRateBounded    Kind = "slew_rate_bounded"
	KindImpulsive          Kind = "impulsive"
	KindPersistentElevated Kind = "persistent_elevated"
)

// Regime labels used to bucket benchmark results.
const (
	RegimeBoundedNominal     = "bounded_nominal"
	RegimePersistentElevated = "persistent_elevated"
	RegimeUnbounded          = "unbounded"
	RegimeImpulsive          = "impulsive"
)

// nominalPointwiseLimit separates small always-on disturbances, which an
// envelope can fully absorb, from persistently elevated ones.
const nominalPointwiseLimit = 0.15

// Config describes one generator: a kind plus kind-specific attributes.
type Config struct {
	Kind       Kind               `json:"kind"`
	Attributes utils.AttributeMap `json:"attributes"`
}

// Generator produces a deterministic disturbance value per step index.
type Generator interface {
	// Kind returns the generator's family.
	Kind() Kind
	// Reset clears any replayable state so At(0) starts a fresh run.
	Reset()
	// At returns the disturbance at step n. Callers advance n
	// monotonically from zero; stateful generators depend on it.
	At(n int) float64
	// Regime buckets the generator for reporting.
	Regime() string
	// RecoveryTarget returns the envelope value that counts as recovered,
	// when recovery is defined for this family.
	RecoveryTarget(nominalBound float64) (float64, bool)
	// RecoverySearchStart returns the first step index at which recovery
	// may be declared, when recovery is defined for this family.
	RecoverySearchStart() (int, bool)
	// Channelized returns a copy with parameters scaled for the given
	// channel or group key, for correlated multi-channel scenarios.
	Channelized(key int) Generator
}

// New builds a generator from its config. Unknown kinds and missing
// required attributes are rejected.
func New(cfg Config) (Generator, error) {
	switch cfg.Kind {
	case KindPointwiseBounded:
		if !cfg.Attributes.Has("level") {
			return nil, errors.Errorf("%s disturbance missing a level attribute", cfg.Kind)
		}
		return NewPointwiseBounded(cfg.Attributes.Float64("level", 0)), nil
	case KindDrift:
		if !cfg.Attributes.Has("rate") || !cfg.Attributes.Has("max") {
			return nil, errors.Errorf("%s disturbance needs rate and max attributes", cfg.Kind)
		}
		return NewDrift(cfg.Attributes.Float64("rate", 0), cfg.Attributes.Float64("max", 0)), nil
	case KindSlewRateBounded:
		if !cfg.Attributes.Has("slew") {
			return nil, errors.Errorf("%s disturbance missing a slew attribute", cfg.Kind)
		}
		return NewSlewRateBounded(cfg.Attributes.Float64("slew", 0)), nil
	case KindImpulsive:
		if !cfg.Attributes.Has("amplitude") {
			return nil, errors.Errorf("%s disturbance missing an amplitude attribute", cfg.Kind)
		}
		return NewImpulsive(
			cfg.Attributes.Float64("amplitude", 0),
			cfg.Attributes.Int("start", 0),
			cfg.Attributes.Int("duration", 1),
		), nil
	case KindPersistentElevated:
		if !cfg.Attributes.Has("high") {
			return nil, errors.Errorf("%s disturbance missing a high attribute", cfg.Kind)
		}
		return NewPersistentElevated(
			cfg.Attributes.Float64("nominal", 0),
			cfg.Attributes.Float64("high", 0),
			cfg.Attributes.Int("step_time", 0),
		), nil
	}
	return nil, errors.Errorf("unsupported disturbance kind %q", cfg.Kind)
}
