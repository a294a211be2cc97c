package sim

import (
	"math"

	"github.com/pkg/errors"
)

// RateOnlyObserver is a two-state baseline: it predicts with a constant
// rate, fuses channels by their plain mean, and applies no trust
// weighting. It exists to show what the adaptive observer buys.
type RateOnlyObserver struct {
	position  float64
	rate      float64
	kPosition float64
	kRate     float64
}

// NewRateOnlyObserver returns a zero-initialized baseline observer.
func NewRateOnlyObserver(kPosition, kRate float64) *RateOnlyObserver {
	return &RateOnlyObserver{kPosition: kPosition, kRate: kRate}
}

// Step fuses the mean measurement into the two-state estimate and returns
// the corrected position.
func (o *RateOnlyObserver) Step(measurements []float64, dt float64) float64 {
	posPred := o.position + o.rate*dt

	var mean float64
	for _, y := range measurements {
		mean += y
	}
	mean /= float64(len(measurements))

	residual := mean - posPred
	o.position = posPred + o.kPosition*residual
	o.rate += o.kRate * residual
	return o.position
}

func absF(v float64) float64 {
	return math.Abs(v)
}

func errInvalid(msg string) error {
	return errors.Wrap(errors.New(msg), "invalid sim config")
}

// RMSError returns the root-mean-square of the given error series.
func RMSError(errs []float64) float64 {
	if len(errs) == 0 {
		return 0
	}
	var sumSq float64
	for _, e := range errs {
		sumSq += e * e
	}
	return math.Sqrt(sumSq / float64(len(errs)))
}

// PeakErrorDuring returns the maximum of sel over records in [start,
// start+duration).
func PeakErrorDuring(records []StepRecord, start, duration int, sel func(StepRecord) float64) float64 {
	peak := 0.0
	for _, rec := range records[start : start+duration] {
		peak = math.Max(peak, sel(rec))
	}
	return peak
}

// RecoverySteps returns how many steps after impulseEnd sel first drops
// below threshold, or the remaining record count if it never does.
func RecoverySteps(records []StepRecord, impulseEnd int, threshold float64, sel func(StepRecord) float64) int {
	for i, rec := range records[impulseEnd:] {
		if sel(rec) < threshold {
			return i
		}
	}
	return len(records) - impulseEnd
}
