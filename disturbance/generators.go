package disturbance

import "math"

func channelScale(key int) float64 {
	return 1 + 0.03*float64(key)
}

// PointwiseBounded is a constant disturbance of fixed level.
type PointwiseBounded struct {
	level float64
}

// NewPointwiseBounded returns a constant disturbance.
func NewPointwiseBounded(level float64) *PointwiseBounded {
	return &PointwiseBounded{level: level}
}

// Kind implements Generator.
func (d *PointwiseBounded) Kind() Kind { return KindPointwiseBounded }

// Reset implements Generator.
func (d *PointwiseBounded) Reset() {}

// At implements Generator.
func (d *PointwiseBounded) At(int) float64 { return d.level }

// Regime implements Generator.
func (d *PointwiseBounded) Regime() string {
	if math.Abs(d.level) <= nominalPointwiseLimit {
		return RegimeBoundedNominal
	}
	return RegimePersistentElevated
}

// RecoveryTarget implements Generator. A small constant disturbance
// recovers once the envelope settles at the disturbance magnitude.
func (d *PointwiseBounded) RecoveryTarget(float64) (float64, bool) {
	if math.Abs(d.level) <= nominalPointwiseLimit {
		return math.Abs(d.level), true
	}
	return 0, false
}

// RecoverySearchStart implements Generator.
func (d *PointwiseBounded) RecoverySearchStart() (int, bool) {
	if math.Abs(d.level) <= nominalPointwiseLimit {
		return 0, true
	}
	return 0, false
}

// Channelized implements Generator.
func (d *PointwiseBounded) Channelized(key int) Generator {
	return NewPointwiseBounded(d.level * channelScale(key))
}

// Drift ramps linearly with the step index, clamped to a maximum
// magnitude.
type Drift struct {
	rate float64
	max  float64
}

// NewDrift returns a clamped linear ramp disturbance.
func NewDrift(rate, max float64) *Drift {
	return &Drift{rate: rate, max: max}
}

// Kind implements Generator.
func (d *Drift) Kind() Kind { return KindDrift }

// Reset implements Generator.
func (d *Drift) Reset() {}

// At implements Generator.
func (d *Drift) At(n int) float64 {
	v := d.rate * float64(n)
	return math.Max(-d.max, math.Min(d.max, v))
}

// Regime implements Generator.
func (d *Drift) Regime() string { return RegimePersistentElevated }

// RecoveryTarget implements Generator.
func (d *Drift) RecoveryTarget(float64) (float64, bool) { return 0, false }

// RecoverySearchStart implements Generator.
func (d *Drift) RecoverySearchStart() (int, bool) { return 0, false }

// Channelized implements Generator.
func (d *Drift) Channelized(key int) Generator {
	s := channelScale(key)
	return NewDrift(d.rate*s, d.max*s)
}

// SlewRateBounded accumulates a fixed increment per step with no
// magnitude bound.
type SlewRateBounded struct {
	slew  float64
	value float64
}

// NewSlewRateBounded returns an unbounded accumulating disturbance.
func NewSlewRateBounded(slew float64) *SlewRateBounded {
	return &SlewRateBounded{slew: slew}
}

// Kind implements Generator.
func (d *SlewRateBounded) Kind() Kind { return KindSlewRateBounded }

// Reset implements Generator.
func (d *SlewRateBounded) Reset() { d.value = 0 }

// At implements Generator.
func (d *SlewRateBounded) At(n int) float64 {
	if n == 0 {
		return d.value
	}
	d.value += d.slew
	return d.value
}

// Regime implements Generator.
func (d *SlewRateBounded) Regime() string { return RegimeUnbounded }

// RecoveryTarget implements Generator.
func (d *SlewRateBounded) RecoveryTarget(float64) (float64, bool) { return 0, false }

// RecoverySearchStart implements Generator.
func (d *SlewRateBounded) RecoverySearchStart() (int, bool) { return 0, false }

// Channelized implements Generator.
func (d *SlewRateBounded) Channelized(key int) Generator {
	return NewSlewRateBounded(d.slew * channelScale(key))
}

// Impulsive is a rectangular pulse over [start, start+duration).
type Impulsive struct {
	amplitude float64
	start     int
	duration  int
}

// NewImpulsive returns a rectangular pulse disturbance.
func NewImpulsive(amplitude float64, start, duration int) *Impulsive {
	return &Impulsive{amplitude: amplitude, start: start, duration: duration}
}

// Kind implements Generator.
func (d *Impulsive) Kind() Kind { return KindImpulsive }

// Reset implements Generator.
func (d *Impulsive) Reset() {}

// At implements Generator.
func (d *Impulsive) At(n int) float64 {
	if n >= d.start && n < d.start+d.duration {
		return d.amplitude
	}
	return 0
}

// Regime implements Generator.
func (d *Impulsive) Regime() string { return RegimeImpulsive }

// RecoveryTarget implements Generator. After the pulse ends, the envelope
// should fall back to the nominal residual bound.
func (d *Impulsive) RecoveryTarget(nominalBound float64) (float64, bool) {
	return math.Abs(nominalBound), true
}

// RecoverySearchStart implements Generator.
func (d *Impulsive) RecoverySearchStart() (int, bool) {
	return d.start + d.duration, true
}

// Channelized implements Generator.
func (d *Impulsive) Channelized(key int) Generator {
	return NewImpulsive(d.amplitude*channelScale(key), d.start+key%3, d.duration)
}

// PersistentElevated steps from a nominal level to a high level at a
// fixed time and stays there.
type PersistentElevated struct {
	nominal  float64
	high     float64
	stepTime int
}

// NewPersistentElevated returns a step disturbance.
func NewPersistentElevated(nominal, high float64, stepTime int) *PersistentElevated {
	return &PersistentElevated{nominal: nominal, high: high, stepTime: stepTime}
}

// Kind implements Generator.
func (d *PersistentElevated) Kind() Kind { return KindPersistentElevated }

// Reset implements Generator.
func (d *PersistentElevated) Reset() {}

// At implements Generator.
func (d *PersistentElevated) At(n int) float64 {
	if n < d.stepTime {
		return d.nominal
	}
	return d.high
}

// Regime implements Generator.
func (d *PersistentElevated) Regime() string { return RegimePersistentElevated }

// RecoveryTarget implements Generator.
func (d *PersistentElevated) RecoveryTarget(float64) (float64, bool) { return 0, false }

// RecoverySearchStart implements Generator.
func (d *PersistentElevated) RecoverySearchStart() (int, bool) { return 0, false }

// Channelized implements Generator.
func (d *PersistentElevated) Channelized(key int) Generator {
	s := channelScale(key)
	return NewPersistentElevated(d.nominal*s, d.high*s, d.stepTime+key%4)
}
