// Package main provides the estbench CLI for running estimator
// scenario simulations and Monte-Carlo robustness batches.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/edaniels/golog"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"go.viam.com/estimate/artifact"
	"go.viam.com/estimate/bench"
	"go.viam.com/estimate/config"
	"go.viam.com/estimate/sim"
)

const (
	configFlag = "config"
	outputFlag = "output"
	trialsFlag = "trials"
	debugFlag  = "debug"
)

func main() {
	app := &cli.App{
		Name:  "estbench",
		Usage: "run residual-fusion estimator benchmarks",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  configFlag,
				Usage: "path to a JSON benchmark config",
			},
			&cli.StringFlag{
				Name:  outputFlag,
				Usage: "output root directory (overrides config)",
			},
			&cli.IntFlag{
				Name:  trialsFlag,
				Usage: "Monte-Carlo trial count (overrides config)",
			},
			&cli.BoolFlag{
				Name:  debugFlag,
				Usage: "enable debug logging",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "sim",
				Usage:  "run the drift-and-impulse scenario simulation",
				Action: runSim,
			},
			{
				Name:   "montecarlo",
				Usage:  "run the disturbance Monte-Carlo batch",
				Action: runMonteCarlo,
			},
			{
				Name:   "all",
				Usage:  "run the scenario simulation and Monte-Carlo batch concurrently",
				Action: runAll,
			},
		},
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setup(c *cli.Context) (config.BenchConfig, golog.Logger, error) {
	logger := golog.NewDevelopmentLogger("estbench")
	if c.Bool(debugFlag) {
		logger = golog.NewDebugLogger("estbench")
	}

	cfg := config.Default()
	if path := c.String(configFlag); path != "" {
		var err error
		if cfg, err = config.Read(path, logger); err != nil {
			return config.BenchConfig{}, nil, err
		}
	}
	if out := c.String(outputFlag); out != "" {
		cfg.OutputRoot = out
	}
	if trials := c.Int(trialsFlag); trials > 0 {
		cfg.MonteCarlo.Trials = trials
	}
	if err := cfg.Ensure(); err != nil {
		return config.BenchConfig{}, nil, err
	}
	return cfg, logger, nil
}

func simToDir(ctx context.Context, cfg config.BenchConfig, dir string, logger golog.Logger) error {
	records, err := sim.Run(cfg.Sim, cfg.Observer, logger)
	if err != nil {
		return err
	}
	path := filepath.Join(dir, "scenario.csv")
	if err := artifact.WriteStepCSV(path, records); err != nil {
		return err
	}
	fusedErrs := make([]float64, len(records))
	for i, rec := range records {
		fusedErrs[i] = rec.FusedErr
	}
	logger.Infow("scenario simulation complete",
		"steps", len(records),
		"fused_rms", sim.RMSError(fusedErrs),
		"path", path,
	)
	return ctx.Err()
}

func monteCarloToDir(ctx context.Context, cfg config.BenchConfig, dir string, logger golog.Logger) error {
	batch, err := bench.RunMonteCarlo(ctx, cfg.MonteCarlo, logger)
	if err != nil {
		return err
	}
	summary, err := bench.Summarize(cfg.MonteCarlo, batch)
	if err != nil {
		return err
	}
	if err := artifact.WriteTrialCSV(filepath.Join(dir, "trials.csv"), batch.Records); err != nil {
		return err
	}
	if err := artifact.WriteSummaryJSON(filepath.Join(dir, "summary.json"), summary); err != nil {
		return err
	}
	logger.Infow("monte carlo batch complete",
		"trials", summary.Trials,
		"mean_max_envelope", summary.MeanMaxEnvelope,
		"min_observed_trust", summary.MinObservedTrust,
		"dir", dir,
	)
	return nil
}

func runSim(c *cli.Context) error {
	cfg, logger, err := setup(c)
	if err != nil {
		return err
	}
	dir, err := artifact.NewRunDir(cfg.OutputRoot)
	if err != nil {
		return err
	}
	return simToDir(c.Context, cfg, dir, logger)
}

func runMonteCarlo(c *cli.Context) error {
	cfg, logger, err := setup(c)
	if err != nil {
		return err
	}
	dir, err := artifact.NewRunDir(cfg.OutputRoot)
	if err != nil {
		return err
	}
	return monteCarloToDir(c.Context, cfg, dir, logger)
}

func runAll(c *cli.Context) error {
	cfg, logger, err := setup(c)
	if err != nil {
		return err
	}
	dir, err := artifact.NewRunDir(cfg.OutputRoot)
	if err != nil {
		return err
	}

	group, ctx := errgroup.WithContext(c.Context)
	group.Go(func() error {
		return simToDir(ctx, cfg, dir, logger)
	})
	group.Go(func() error {
		return monteCarloToDir(ctx, cfg, dir, logger)
	})
	return group.Wait()
}
