package bench

import (
	"context"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"go.viam.com/test"

	"go.viam.com/estimate/disturbance"
)

func smallConfig() MonteCarloConfig {
	cfg := DefaultMonteCarloConfig()
	cfg.Trials = 16
	cfg.Steps = 64
	return cfg
}

func TestMonteCarloIsReproducible(t *testing.T) {
	ctx := context.Background()
	cfg := smallConfig()

	a, err := RunMonteCarlo(ctx, cfg, nil)
	test.That(t, err, test.ShouldBeNil)
	b, err := RunMonteCarlo(ctx, cfg, nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, a.Records, test.ShouldResemble, b.Records)
	test.That(t, a.Records, test.ShouldHaveLength, cfg.Trials)

	// Records stay ordered by trial index no matter how workers ran.
	for i, rec := range a.Records {
		test.That(t, rec.Trial, test.ShouldEqual, i)
	}
}

func TestMonteCarloRespectsInvariants(t *testing.T) {
	batch, err := RunMonteCarlo(context.Background(), smallConfig(), nil)
	test.That(t, err, test.ShouldBeNil)
	for _, rec := range batch.Records {
		test.That(t, rec.MaxEnvelope, test.ShouldBeGreaterThanOrEqualTo, 0.0)
		test.That(t, rec.MinTrust, test.ShouldBeGreaterThan, 0.0)
		test.That(t, rec.MinTrust, test.ShouldBeLessThanOrEqualTo, 1.0)
		test.That(t, rec.TimeToRecover, test.ShouldBeGreaterThanOrEqualTo, -1)
	}
}

func TestMonteCarloConfigValidation(t *testing.T) {
	cfg := DefaultMonteCarloConfig()
	cfg.Trials = 0
	_, err := RunMonteCarlo(context.Background(), cfg, nil)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldEqual, "invalid monte carlo config: trials must be > 0")

	cfg = DefaultMonteCarloConfig()
	cfg.Rho = 1.5
	_, err = RunMonteCarlo(context.Background(), cfg, nil)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldEqual, "invalid monte carlo config: rho must be in (0, 1)")
}

func TestPersistentElevatedNeverRecovers(t *testing.T) {
	cfg := smallConfig()
	gen := disturbance.NewPersistentElevated(0.05, 0.65, 24)
	rec := runTrial(cfg, 0, gen)
	test.That(t, rec.TimeToRecover, test.ShouldEqual, -1)
	test.That(t, rec.Regime, test.ShouldEqual, disturbance.RegimePersistentElevated)
	test.That(t, rec.MaxEnvelope, test.ShouldBeGreaterThan, 0.0)
}

func TestImpulsiveTrialRecovers(t *testing.T) {
	cfg := smallConfig()
	cfg.Steps = 120
	gen := disturbance.NewImpulsive(1.4, 10, 5)
	rec := runTrial(cfg, 0, gen)
	// The envelope spikes during the pulse and decays back within the
	// recovery tolerance of the nominal bound afterwards.
	test.That(t, rec.TimeToRecover, test.ShouldBeGreaterThanOrEqualTo, 15)
	test.That(t, rec.MinTrust, test.ShouldBeLessThan, 1.0)
}

func TestSummarizeCountsAllTrials(t *testing.T) {
	cfg := smallConfig()
	batch, err := RunMonteCarlo(context.Background(), cfg, nil)
	test.That(t, err, test.ShouldBeNil)

	summary, err := Summarize(cfg, batch)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, summary.Trials, test.ShouldEqual, cfg.Trials)

	var counted int
	for _, n := range summary.RegimeCounts {
		counted += n
	}
	test.That(t, counted, test.ShouldEqual, cfg.Trials)
	test.That(t, summary.MedianMaxEnvelope, test.ShouldBeLessThanOrEqualTo, summary.P95MaxEnvelope)
	test.That(t, summary.MinObservedTrust, test.ShouldBeGreaterThan, 0.0)

	_, err = Summarize(cfg, &Batch{})
	test.That(t, err, test.ShouldNotBeNil)
}

func TestTimingAccumulatorWithMockClock(t *testing.T) {
	mock := clock.NewMock()
	acc := NewTimingAccumulator(mock)

	acc.Time(func() { mock.Add(2 * time.Millisecond) })
	acc.Time(func() { mock.Add(4 * time.Millisecond) })

	test.That(t, acc.Steps(), test.ShouldEqual, 2)
	test.That(t, acc.AverageMicros(), test.ShouldAlmostEqual, 3000.0, 1e-9)
}

func TestProfileUpdatesRuns(t *testing.T) {
	cfg := smallConfig()
	avg, err := ProfileUpdates(cfg, nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, avg, test.ShouldBeGreaterThanOrEqualTo, 0.0)
}
