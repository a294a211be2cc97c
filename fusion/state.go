package fusion

// State is the kinematic state tracked by an Observer: a position-like
// quantity, its rate of change, and the rate's rate of change.
type State struct {
	Position float64 `json:"position"`
	Rate     float64 `json:"rate"`
	Jerk     float64 `json:"jerk"`
}
