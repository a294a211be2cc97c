package bench

import (
	"time"

	"github.com/benbjohnson/clock"

	"go.viam.com/estimate/fusion"
)

// TimingAccumulator measures how long timed sections take on average.
// Passing a mock clock makes it deterministic in tests.
type TimingAccumulator struct {
	clk   clock.Clock
	total time.Duration
	steps int
}

// NewTimingAccumulator returns an accumulator over the given clock, or
// the wall clock when clk is nil.
func NewTimingAccumulator(clk clock.Clock) *TimingAccumulator {
	if clk == nil {
		clk = clock.New()
	}
	return &TimingAccumulator{clk: clk}
}

// Time runs fn and adds its duration to the accumulator.
func (a *TimingAccumulator) Time(fn func()) {
	start := a.clk.Now()
	fn()
	a.total += a.clk.Since(start)
	a.steps++
}

// Steps returns how many sections have been timed.
func (a *TimingAccumulator) Steps() int {
	return a.steps
}

// AverageMicros returns the mean timed duration in microseconds.
func (a *TimingAccumulator) AverageMicros() float64 {
	if a.steps == 0 {
		return 0
	}
	return a.total.Seconds() * 1e6 / float64(a.steps)
}

// ProfileUpdates times cfg.Steps updates of a singleton-group observer
// under a worst-case impulsive disturbance and returns the mean update
// latency in microseconds.
func ProfileUpdates(cfg MonteCarloConfig, clk clock.Clock) (float64, error) {
	if err := cfg.Validate(); err != nil {
		return 0, err
	}
	obs, err := fusion.NewHierarchicalObserver(fusion.HierarchicalConfig{
		Channels:    1,
		Groups:      1,
		GroupOf:     []int{0},
		Rho:         cfg.Rho,
		GroupRho:    []float64{cfg.Rho},
		ChannelBeta: []float64{cfg.Beta},
		GroupBeta:   []float64{0},
		Gain:        [][]float64{{1}},
	})
	if err != nil {
		return 0, err
	}

	acc := NewTimingAccumulator(clk)
	for n := 0; n < cfg.Steps; n++ {
		residual := []float64{1.0}
		acc.Time(func() {
			if _, err := obs.Update(residual); err != nil {
				panic(err)
			}
		})
	}
	return acc.AverageMicros(), nil
}
