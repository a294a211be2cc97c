package bench

import (
	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
)

// Summary aggregates a completed batch.
type Summary struct {
	Trials            int            `json:"trials"`
	Steps             int            `json:"steps"`
	Seed              uint64         `json:"seed"`
	Rho               float64        `json:"rho"`
	Beta              float64        `json:"beta"`
	MeanMaxEnvelope   float64        `json:"mean_max_envelope"`
	MedianMaxEnvelope float64        `json:"median_max_envelope"`
	P95MaxEnvelope    float64        `json:"p95_max_envelope"`
	MinObservedTrust  float64        `json:"min_observed_trust"`
	RegimeCounts      map[string]int `json:"regime_counts"`
}

// Summarize reduces a batch to its summary statistics.
func Summarize(cfg MonteCarloConfig, batch *Batch) (Summary, error) {
	if batch == nil || len(batch.Records) == 0 {
		return Summary{}, errors.New("cannot summarize an empty batch")
	}

	maxEnvelopes := make([]float64, len(batch.Records))
	minTrusts := make([]float64, len(batch.Records))
	regimeCounts := make(map[string]int)
	for i, rec := range batch.Records {
		maxEnvelopes[i] = rec.MaxEnvelope
		minTrusts[i] = rec.MinTrust
		regimeCounts[rec.Regime]++
	}

	mean, err := stats.Mean(maxEnvelopes)
	if err != nil {
		return Summary{}, errors.Wrap(err, "mean max envelope")
	}
	median, err := stats.Median(maxEnvelopes)
	if err != nil {
		return Summary{}, errors.Wrap(err, "median max envelope")
	}
	p95, err := stats.Percentile(maxEnvelopes, 95)
	if err != nil {
		return Summary{}, errors.Wrap(err, "p95 max envelope")
	}
	minTrust, err := stats.Min(minTrusts)
	if err != nil {
		return Summary{}, errors.Wrap(err, "min trust")
	}

	return Summary{
		Trials:            len(batch.Records),
		Steps:             cfg.Steps,
		Seed:              cfg.Seed,
		Rho:               cfg.Rho,
		Beta:              cfg.Beta,
		MeanMaxEnvelope:   mean,
		MedianMaxEnvelope: median,
		P95MaxEnvelope:    p95,
		MinObservedTrust:  minTrust,
		RegimeCounts:      regimeCounts,
	}, nil
}

func errInvalidf(format string, args ...interface{}) error {
	return errors.Wrap(errors.Errorf(format, args...), "invalid monte carlo config")
}
