// Package artifact writes benchmark outputs (CSV tables and JSON
// summaries) into per-run directories.
package artifact

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/estimate/bench"
	"go.viam.com/estimate/sim"
)

// NewRunDir creates and returns a fresh run directory under root, named
// by UTC timestamp plus a short unique suffix so concurrent runs never
// collide.
func NewRunDir(root string) (string, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return "", errors.Wrap(err, "creating output root")
	}
	name := fmt.Sprintf("%s-%s",
		time.Now().UTC().Format("2006-01-02T15-04-05Z"),
		uuid.New().String()[:8],
	)
	dir := filepath.Join(root, name)
	if err := os.Mkdir(dir, 0o755); err != nil {
		return "", errors.Wrap(err, "creating run dir")
	}
	return dir, nil
}

func fmtF(v float64) string {
	return strconv.FormatFloat(v, 'f', 10, 64)
}

// WriteTrialCSV writes one Monte-Carlo batch as a CSV table.
func WriteTrialCSV(path string, records []bench.TrialRecord) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "creating trial csv")
	}
	defer func() {
		err = multierr.Combine(err, f.Close())
	}()

	w := csv.NewWriter(f)
	if err := w.Write([]string{
		"trial", "kind", "regime", "max_envelope", "min_trust", "time_to_recover",
	}); err != nil {
		return err
	}
	for _, rec := range records {
		if err := w.Write([]string{
			strconv.Itoa(rec.Trial),
			string(rec.Kind),
			rec.Regime,
			fmtF(rec.MaxEnvelope),
			fmtF(rec.MinTrust),
			strconv.Itoa(rec.TimeToRecover),
		}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// WriteStepCSV writes one scenario run as a CSV table.
func WriteStepCSV(path string, records []sim.StepRecord) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "creating step csv")
	}
	defer func() {
		err = multierr.Combine(err, f.Close())
	}()

	w := csv.NewWriter(f)
	if err := w.Write([]string{
		"t", "position_true", "y1", "y2",
		"position_mean", "position_rate_only", "position_fused",
		"err_mean", "err_rate_only", "err_fused",
		"w2", "s2",
	}); err != nil {
		return err
	}
	for _, rec := range records {
		if err := w.Write([]string{
			fmtF(rec.T),
			fmtF(rec.TruePosition),
			fmtF(rec.Y1),
			fmtF(rec.Y2),
			fmtF(rec.MeanEstimate),
			fmtF(rec.RateOnly),
			fmtF(rec.Fused),
			fmtF(rec.MeanErr),
			fmtF(rec.RateOnlyErr),
			fmtF(rec.FusedErr),
			fmtF(rec.Weight2),
			fmtF(rec.Envelope2),
		}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// WriteSummaryJSON writes a batch summary as indented JSON.
func WriteSummaryJSON(path string, summary bench.Summary) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "creating summary json")
	}
	defer func() {
		err = multierr.Combine(err, f.Close())
	}()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(summary)
}
