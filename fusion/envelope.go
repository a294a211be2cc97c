package fusion

import "math"

// decayEnvelope advances an exponential moving average of residual
// magnitude: s' = rho*s + (1-rho)*|x|. This recursion is the only code
// shared between the flat and hierarchical observers.
func decayEnvelope(prev, x, rho float64) float64 {
	return rho*prev + (1-rho)*math.Abs(x)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
