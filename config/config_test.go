package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/edaniels/golog"
	"go.viam.com/test"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bench.json")
	test.That(t, os.WriteFile(path, []byte(contents), 0o644), test.ShouldBeNil)
	return path
}

func TestReadAppliesDefaults(t *testing.T) {
	logger := golog.NewTestLogger(t)
	path := writeConfig(t, `{"observer": {"rho": 0.9}}`)

	cfg, err := Read(path, logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.Observer.Rho, test.ShouldEqual, 0.9)
	// Everything else keeps its defaults.
	test.That(t, cfg.Observer.Sigma0, test.ShouldEqual, Default().Observer.Sigma0)
	test.That(t, cfg.OutputRoot, test.ShouldEqual, "out")
	test.That(t, cfg.Sim.Steps, test.ShouldEqual, Default().Sim.Steps)
	test.That(t, cfg.MonteCarlo.Trials, test.ShouldEqual, Default().MonteCarlo.Trials)
}

func TestReadSubstitutesEnvVars(t *testing.T) {
	logger := golog.NewTestLogger(t)
	t.Setenv("ESTBENCH_OUT", "/tmp/est-results")
	path := writeConfig(t, `{"output_root": "${ESTBENCH_OUT}"}`)

	cfg, err := Read(path, logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.OutputRoot, test.ShouldEqual, "/tmp/est-results")
}

func TestReadRejectsInvalidSections(t *testing.T) {
	logger := golog.NewTestLogger(t)

	path := writeConfig(t, `{"observer": {"rho": 2.0}}`)
	_, err := Read(path, logger)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "observer: rho must be in (0, 1)")

	path = writeConfig(t, `{"sim": {"steps": -1}}`)
	_, err = Read(path, logger)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "sim: invalid sim config: steps must be > 0")

	path = writeConfig(t, `{"output_root": ""}`)
	_, err = Read(path, logger)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldEqual, "output_root must not be empty")
}

func TestReadMissingFile(t *testing.T) {
	logger := golog.NewTestLogger(t)
	_, err := Read(filepath.Join(t.TempDir(), "nope.json"), logger)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestDefaultEnsures(t *testing.T) {
	test.That(t, Default().Ensure(), test.ShouldBeNil)
}
