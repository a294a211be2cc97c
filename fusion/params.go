package fusion

// Params holds the fixed configuration of a flat Observer. Params are set
// once at construction and never mutated afterwards.
type Params struct {
	// Correction gains applied to the aggregate residual.
	KPosition float64 `json:"k_position"`
	KRate     float64 `json:"k_rate"`
	KJerk     float64 `json:"k_jerk"`
	// Rho is the envelope forgetting factor, in (0, 1).
	Rho float64 `json:"rho"`
	// Sigma0 is the trust softness; must be > 0 so every raw trust weight
	// is strictly positive.
	Sigma0 float64 `json:"sigma0"`
}

// DefaultParams returns gains suitable for basic two-channel tracking.
func DefaultParams() Params {
	return Params{
		KPosition: 0.5,
		KRate:     0.1,
		KJerk:     0.01,
		Rho:       0.95,
		Sigma0:    0.1,
	}
}

// Validate checks that all parameters are finite and within range.
func (p Params) Validate() error {
	for _, gain := range []struct {
		name  string
		value float64
	}{
		{"k_position", p.KPosition},
		{"k_rate", p.KRate},
		{"k_jerk", p.KJerk},
	} {
		if !isFinite(gain.value) {
			return newConfigErrorf("%s must be finite; got %v", gain.name, gain.value)
		}
	}
	if !isFinite(p.Rho) || p.Rho <= 0 || p.Rho >= 1 {
		return newConfigErrorf("rho must be in (0, 1); got %v", p.Rho)
	}
	if !isFinite(p.Sigma0) || p.Sigma0 <= 0 {
		return newConfigErrorf("sigma0 must be finite and > 0; got %v", p.Sigma0)
	}
	return nil
}
