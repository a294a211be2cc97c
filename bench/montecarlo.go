// Package bench runs randomized single-channel envelope benchmarks
// against the fusion kernel and summarizes the results. Disturbance
// parameters are sampled up front from one seeded source, so a batch is
// reproducible for a fixed configuration regardless of how trials are
// scheduled.
package bench

import (
	"context"
	"math"
	"math/rand/v2"

	"github.com/edaniels/golog"

	"go.viam.com/estimate/disturbance"
	"go.viam.com/estimate/fusion"
)

// DefaultTrials is the standard batch size.
const DefaultTrials = 360

// MonteCarloConfig describes one benchmark batch.
type MonteCarloConfig struct {
	Trials int    `json:"trials"`
	Steps  int    `json:"steps"`
	Seed   uint64 `json:"seed"`
	// Rho and Beta parameterize the single-channel envelope and trust
	// mapping under test.
	Rho  float64 `json:"rho"`
	Beta float64 `json:"beta"`
	// NominalBound is the residual magnitude treated as nominal when
	// judging recovery; RecoveryDelta is the envelope tolerance around
	// the recovery target.
	NominalBound  float64 `json:"nominal_bound"`
	RecoveryDelta float64 `json:"recovery_delta"`
}

// DefaultMonteCarloConfig returns the standard batch configuration.
func DefaultMonteCarloConfig() MonteCarloConfig {
	return MonteCarloConfig{
		Trials:        DefaultTrials,
		Steps:         180,
		Seed:          2026,
		Rho:           0.96,
		Beta:          3.0,
		NominalBound:  0.0,
		RecoveryDelta: 0.03,
	}
}

// Validate checks the batch configuration.
func (cfg MonteCarloConfig) Validate() error {
	if cfg.Trials <= 0 {
		return errInvalidf("trials must be > 0")
	}
	if cfg.Steps <= 0 {
		return errInvalidf("steps must be > 0")
	}
	if cfg.Rho <= 0 || cfg.Rho >= 1 {
		return errInvalidf("rho must be in (0, 1)")
	}
	if cfg.Beta <= 0 {
		return errInvalidf("beta must be > 0")
	}
	if cfg.NominalBound < 0 {
		return errInvalidf("nominal_bound must be >= 0")
	}
	if cfg.RecoveryDelta <= 0 {
		return errInvalidf("recovery_delta must be > 0")
	}
	return nil
}

// TrialRecord is the outcome of one trial. TimeToRecover is -1 when the
// trial's disturbance family defines no recovery or recovery was never
// reached.
type TrialRecord struct {
	Trial         int
	Kind          disturbance.Kind
	Regime        string
	MaxEnvelope   float64
	MinTrust      float64
	TimeToRecover int
}

// Batch is a completed benchmark batch, ordered by trial index.
type Batch struct {
	Records []TrialRecord
}

// RunMonteCarlo samples one disturbance per trial, drives a
// singleton-group hierarchical observer through it, and collects envelope
// and trust extrema per trial. Trials execute in parallel; results are
// ordered by trial index.
func RunMonteCarlo(ctx context.Context, cfg MonteCarloConfig, logger golog.Logger) (*Batch, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed))
	generators := make([]disturbance.Generator, cfg.Trials)
	for trial := range generators {
		generators[trial] = sampleDisturbance(rng, cfg.Steps)
	}

	records := make([]TrialRecord, cfg.Trials)
	if err := trialWorkParallel(ctx, cfg.Trials, func(trial int) {
		records[trial] = runTrial(cfg, trial, generators[trial])
	}); err != nil {
		return nil, err
	}

	if logger != nil {
		logger.Debugf("monte carlo batch finished: %d trials, %d steps each", cfg.Trials, cfg.Steps)
	}
	return &Batch{Records: records}, nil
}

func runTrial(cfg MonteCarloConfig, trial int, gen disturbance.Generator) TrialRecord {
	obs, err := fusion.NewHierarchicalObserver(fusion.HierarchicalConfig{
		Channels:    1,
		Groups:      1,
		GroupOf:     []int{0},
		Rho:         cfg.Rho,
		GroupRho:    []float64{cfg.Rho},
		ChannelBeta: []float64{cfg.Beta},
		// Group trust pinned at 1 so the singleton reduction matches the
		// plain single-level trust mapping.
		GroupBeta: []float64{0},
		Gain:      [][]float64{{1}},
	})
	if err != nil {
		// Unreachable for a validated MonteCarloConfig.
		panic(err)
	}

	gen.Reset()
	envelopes := make([]float64, cfg.Steps)
	maxEnvelope := 0.0
	minTrust := 1.0
	for n := 0; n < cfg.Steps; n++ {
		out, err := obs.Update([]float64{gen.At(n)})
		if err != nil {
			panic(err)
		}
		s := out.ChannelEnvelopes[0]
		envelopes[n] = s
		maxEnvelope = math.Max(maxEnvelope, s)
		minTrust = math.Min(minTrust, 1/(1+cfg.Beta*s))
	}

	return TrialRecord{
		Trial:         trial,
		Kind:          gen.Kind(),
		Regime:        gen.Regime(),
		MaxEnvelope:   maxEnvelope,
		MinTrust:      minTrust,
		TimeToRecover: timeToRecover(gen, envelopes, cfg.NominalBound, cfg.RecoveryDelta),
	}
}

func timeToRecover(gen disturbance.Generator, envelopes []float64, nominalBound, delta float64) int {
	target, ok := gen.RecoveryTarget(nominalBound)
	if !ok {
		return -1
	}
	start, ok := gen.RecoverySearchStart()
	if !ok {
		return -1
	}
	for n := start; n < len(envelopes); n++ {
		if math.Abs(envelopes[n]-target) <= delta {
			return n
		}
	}
	return -1
}

func sampleDisturbance(rng *rand.Rand, steps int) disturbance.Generator {
	switch rng.IntN(5) {
	case 0:
		return disturbance.NewPointwiseBounded(sampleSigned(rng, 0.02, 0.35))
	case 1:
		return disturbance.NewDrift(sampleSigned(rng, 0.002, 0.03), sampleRange(rng, 0.15, 0.85))
	case 2:
		return disturbance.NewSlewRateBounded(sampleRange(rng, 0.01, 0.09))
	case 3:
		maxStart := max(steps/2, 8)
		maxLen := max(steps/6, 4)
		return disturbance.NewImpulsive(
			sampleSigned(rng, 0.4, 2.0),
			6+rng.IntN(maxStart-6),
			2+rng.IntN(maxLen-2),
		)
	default:
		return disturbance.NewPersistentElevated(
			sampleRange(rng, 0.01, 0.12),
			sampleRange(rng, 0.2, 1.0),
			10+rng.IntN(max(steps/2, 11)-10),
		)
	}
}

func sampleRange(rng *rand.Rand, low, high float64) float64 {
	return low + (high-low)*rng.Float64()
}

func sampleSigned(rng *rand.Rand, low, high float64) float64 {
	amplitude := sampleRange(rng, low, high)
	if rng.IntN(2) == 0 {
		return amplitude
	}
	return -amplitude
}
