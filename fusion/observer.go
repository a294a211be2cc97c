// Package fusion implements deterministic trust-adaptive residual fusion
// over redundant scalar measurement channels.
//
// Two observers are provided. Observer fuses M direct position
// measurements into a three-component kinematic state using per-channel
// residual envelopes and normalized trust weights. HierarchicalObserver
// generalizes the envelope machinery with a second, group-level envelope
// layer and an arbitrary linear gain matrix.
//
// Both observers are pure state machines: for a fixed configuration and a
// fixed sequence of finite inputs, outputs are bit-for-bit reproducible.
// Neither performs any I/O, locking, or hidden randomization; concurrent
// use of a single instance requires external synchronization.
package fusion

// Observer fuses M redundant position measurements into a kinematic state
// estimate. Channels whose residuals have recently been large accumulate a
// larger envelope and receive a smaller share of the correction.
type Observer struct {
	params   Params
	channels int
	state    State

	envelopes []float64
	weights   []float64
	residuals []float64
}

// NewObserver returns an observer over the given number of channels with
// zeroed envelope memory and a zero state.
func NewObserver(params Params, channels int) (*Observer, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if channels <= 0 {
		return nil, newConfigErrorf("channels must be > 0 (got %d)", channels)
	}
	return &Observer{
		params:    params,
		channels:  channels,
		envelopes: make([]float64, channels),
		weights:   make([]float64, channels),
		residuals: make([]float64, channels),
	}, nil
}

// Init sets the kinematic state. Until Init is called the observer
// propagates from the zero state.
func (o *Observer) Init(state State) {
	o.state = state
}

// Step advances the observer by one time step: constant-jerk prediction,
// per-channel residuals against the predicted position, envelope and trust
// updates, and a convexly weighted correction back into the state.
//
// Non-finite measurements are not rejected; they propagate arithmetically.
// A measurement vector of the wrong length returns a ShapeError and leaves
// all memory untouched.
func (o *Observer) Step(measurements []float64, dt float64) (State, error) {
	if len(measurements) != o.channels {
		return o.state, &ShapeError{Expected: o.channels, Got: len(measurements)}
	}

	posPred := o.state.Position + o.state.Rate*dt
	ratePred := o.state.Rate + o.state.Jerk*dt
	jerkPred := o.state.Jerk

	// Raw trust per channel: 1/(sigma0 + envelope). Sigma0 > 0 keeps every
	// raw weight strictly positive, so the normalization below cannot
	// divide by zero for finite inputs.
	var rawSum float64
	for k := 0; k < o.channels; k++ {
		r := measurements[k] - posPred
		o.residuals[k] = r
		o.envelopes[k] = decayEnvelope(o.envelopes[k], r, o.params.Rho)
		o.weights[k] = 1 / (o.params.Sigma0 + o.envelopes[k])
		rawSum += o.weights[k]
	}

	var aggregate float64
	for k := 0; k < o.channels; k++ {
		o.weights[k] /= rawSum
		aggregate += o.weights[k] * o.residuals[k]
	}

	o.state = State{
		Position: posPred + o.params.KPosition*aggregate,
		Rate:     ratePred + o.params.KRate*aggregate,
		Jerk:     jerkPred + o.params.KJerk*aggregate,
	}
	return o.state, nil
}

// State returns the current kinematic state estimate.
func (o *Observer) State() State {
	return o.state
}

// Channels returns the channel count fixed at construction.
func (o *Observer) Channels() int {
	return o.channels
}

// TrustWeight returns the normalized trust weight of channel k from the
// most recent step.
func (o *Observer) TrustWeight(k int) float64 {
	return o.weights[k]
}

// ResidualEnvelope returns channel k's envelope, the exponential moving
// average of its absolute residuals.
func (o *Observer) ResidualEnvelope(k int) float64 {
	return o.envelopes[k]
}

// Weights returns a copy of all normalized trust weights.
func (o *Observer) Weights() []float64 {
	out := make([]float64, len(o.weights))
	copy(out, o.weights)
	return out
}
