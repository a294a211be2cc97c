package fusion

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// HierarchicalConfig is the immutable configuration of a
// HierarchicalObserver. Channels are partitioned into groups via GroupOf;
// a channel's effective trust is the product of its own trust and its
// group's trust, and corrections are produced by an arbitrary linear gain
// matrix with one column per channel.
type HierarchicalConfig struct {
	Channels int   `json:"channels"`
	Groups   int   `json:"groups"`
	GroupOf  []int `json:"group_of"`
	// Rho is the channel-envelope forgetting factor; GroupRho holds one
	// forgetting factor per group.
	Rho      float64   `json:"rho"`
	GroupRho []float64 `json:"group_rho"`
	// ChannelBeta and GroupBeta are trust sensitivities: trust is
	// 1/(1 + beta*envelope), so beta = 0 pins trust at 1.
	ChannelBeta []float64 `json:"channel_beta"`
	GroupBeta   []float64 `json:"group_beta"`
	// Gain is the p-by-Channels correction gain matrix.
	Gain [][]float64 `json:"gain"`
}

// Validate checks the configuration atomically. The first failing check
// determines the reported error.
func (cfg HierarchicalConfig) Validate() error {
	if cfg.Channels <= 0 {
		return newConfigErrorf("channels must be > 0 (got %d)", cfg.Channels)
	}
	if cfg.Groups <= 0 {
		return newConfigErrorf("groups must be > 0 (got %d)", cfg.Groups)
	}
	if len(cfg.GroupOf) != cfg.Channels {
		return newConfigErrorf("group_of length mismatch: expected %d, got %d", cfg.Channels, len(cfg.GroupOf))
	}
	if len(cfg.GroupRho) != cfg.Groups {
		return newConfigErrorf("group_rho length mismatch: expected %d, got %d", cfg.Groups, len(cfg.GroupRho))
	}
	if len(cfg.ChannelBeta) != cfg.Channels {
		return newConfigErrorf("channel_beta length mismatch: expected %d, got %d", cfg.Channels, len(cfg.ChannelBeta))
	}
	if len(cfg.GroupBeta) != cfg.Groups {
		return newConfigErrorf("group_beta length mismatch: expected %d, got %d", cfg.Groups, len(cfg.GroupBeta))
	}
	if len(cfg.Gain) == 0 {
		return newConfigErrorf("gain must contain at least one row")
	}
	for rowIdx, row := range cfg.Gain {
		if len(row) != cfg.Channels {
			return newConfigErrorf("gain row %d length mismatch: expected %d, got %d", rowIdx, cfg.Channels, len(row))
		}
	}
	for i, g := range cfg.GroupOf {
		if g < 0 || g >= cfg.Groups {
			return newConfigErrorf("group_of[%d] = %d out of range [0, %d)", i, g, cfg.Groups)
		}
	}
	if !isFinite(cfg.Rho) || cfg.Rho <= 0 || cfg.Rho >= 1 {
		return newConfigErrorf("rho must be in (0, 1); got %v", cfg.Rho)
	}
	for j, r := range cfg.GroupRho {
		if !isFinite(r) || r <= 0 || r >= 1 {
			return newConfigErrorf("group_rho[%d] must be in (0, 1); got %v", j, r)
		}
	}
	for i, b := range cfg.ChannelBeta {
		if !isFinite(b) || b < 0 {
			return newConfigErrorf("channel_beta[%d] must be finite and >= 0; got %v", i, b)
		}
	}
	for j, b := range cfg.GroupBeta {
		if !isFinite(b) || b < 0 {
			return newConfigErrorf("group_beta[%d] must be finite and >= 0; got %v", j, b)
		}
	}
	for rowIdx, row := range cfg.Gain {
		for colIdx, v := range row {
			if !isFinite(v) {
				return newConfigErrorf("gain[%d][%d] must be finite; got %v", rowIdx, colIdx, v)
			}
		}
	}
	return nil
}

// Update is the result of one HierarchicalObserver update: the state
// correction, the normalized trust weights, and snapshots of both
// envelope levels. All slices are owned by the caller.
type Update struct {
	Correction       []float64
	Weights          []float64
	ChannelEnvelopes []float64
	GroupEnvelopes   []float64
}

// HierarchicalObserver maintains channel-level and group-level residual
// envelopes and produces gain-matrix corrections from hierarchically
// composed, convexly normalized trust weights.
type HierarchicalObserver struct {
	cfg          HierarchicalConfig
	groupMembers [][]int
	stateDim     int
	gain         *mat.Dense

	sK []float64
	sG []float64

	weights      []float64
	groupWeights []float64
	weighted     *mat.VecDense
	correction   *mat.VecDense
}

// NewHierarchicalObserver validates cfg and, on success, allocates zeroed
// envelope memory. The configuration slices are copied so later caller
// mutation cannot reach into the observer.
func NewHierarchicalObserver(cfg HierarchicalConfig) (*HierarchicalObserver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	m := cfg.Channels
	g := cfg.Groups
	p := len(cfg.Gain)

	owned := HierarchicalConfig{
		Channels:    m,
		Groups:      g,
		GroupOf:     append([]int(nil), cfg.GroupOf...),
		Rho:         cfg.Rho,
		GroupRho:    append([]float64(nil), cfg.GroupRho...),
		ChannelBeta: append([]float64(nil), cfg.ChannelBeta...),
		GroupBeta:   append([]float64(nil), cfg.GroupBeta...),
	}

	gainData := make([]float64, 0, p*m)
	for _, row := range cfg.Gain {
		gainData = append(gainData, row...)
	}

	members := make([][]int, g)
	for i, grp := range owned.GroupOf {
		members[grp] = append(members[grp], i)
	}

	return &HierarchicalObserver{
		cfg:          owned,
		groupMembers: members,
		stateDim:     p,
		gain:         mat.NewDense(p, m, gainData),
		sK:           make([]float64, m),
		sG:           make([]float64, g),
		weights:      make([]float64, m),
		groupWeights: make([]float64, g),
		weighted:     mat.NewVecDense(m, nil),
		correction:   mat.NewVecDense(p, nil),
	}, nil
}

// Update advances both envelope levels with one residual vector and
// returns the resulting correction and trust weights.
//
// Group envelopes are driven by the mean absolute residual over the
// group's member channels, so a group's envelope tracks disturbance shared
// by all channels mapped to it. Groups with no member channels keep their
// envelope unchanged.
//
// Non-finite residuals propagate arithmetically. A residual vector of the
// wrong length returns a ShapeError and leaves both envelope levels
// untouched.
func (h *HierarchicalObserver) Update(residuals []float64) (Update, error) {
	m := h.cfg.Channels
	if len(residuals) != m {
		return Update{}, &ShapeError{Expected: m, Got: len(residuals)}
	}

	for i := 0; i < m; i++ {
		h.sK[i] = decayEnvelope(h.sK[i], residuals[i], h.cfg.Rho)
	}

	for j, members := range h.groupMembers {
		if len(members) == 0 {
			continue
		}
		var sumAbs float64
		for _, i := range members {
			sumAbs += math.Abs(residuals[i])
		}
		h.sG[j] = decayEnvelope(h.sG[j], sumAbs/float64(len(members)), h.cfg.GroupRho[j])
	}

	for j := range h.groupWeights {
		h.groupWeights[j] = 1 / (1 + h.cfg.GroupBeta[j]*h.sG[j])
	}

	// Hierarchical composition then convex normalization. Every factor is
	// strictly positive for finite envelopes, so the sum is as well.
	var sum float64
	for i := 0; i < m; i++ {
		w := 1 / (1 + h.cfg.ChannelBeta[i]*h.sK[i])
		w *= h.groupWeights[h.cfg.GroupOf[i]]
		h.weights[i] = w
		sum += w
	}
	for i := 0; i < m; i++ {
		h.weights[i] /= sum
		h.weighted.SetVec(i, h.weights[i]*residuals[i])
	}

	h.correction.MulVec(h.gain, h.weighted)

	out := Update{
		Correction:       make([]float64, h.stateDim),
		Weights:          make([]float64, m),
		ChannelEnvelopes: make([]float64, m),
		GroupEnvelopes:   make([]float64, h.cfg.Groups),
	}
	copy(out.Correction, h.correction.RawVector().Data)
	copy(out.Weights, h.weights)
	copy(out.ChannelEnvelopes, h.sK)
	copy(out.GroupEnvelopes, h.sG)
	return out, nil
}

// ResetEnvelopes zeroes both envelope levels in place without touching the
// immutable configuration. Useful after fault recovery or mode switches.
func (h *HierarchicalObserver) ResetEnvelopes() {
	for i := range h.sK {
		h.sK[i] = 0
	}
	for j := range h.sG {
		h.sG[j] = 0
	}
}

// Channels returns the channel count m.
func (h *HierarchicalObserver) Channels() int {
	return h.cfg.Channels
}

// Groups returns the group count g.
func (h *HierarchicalObserver) Groups() int {
	return h.cfg.Groups
}

// StateDim returns the row count p of the gain matrix.
func (h *HierarchicalObserver) StateDim() int {
	return h.stateDim
}

// GroupOf returns a copy of the channel-to-group mapping.
func (h *HierarchicalObserver) GroupOf() []int {
	out := make([]int, len(h.cfg.GroupOf))
	copy(out, h.cfg.GroupOf)
	return out
}

// ChannelEnvelopes returns a copy of the current channel envelopes.
func (h *HierarchicalObserver) ChannelEnvelopes() []float64 {
	out := make([]float64, len(h.sK))
	copy(out, h.sK)
	return out
}

// GroupEnvelopes returns a copy of the current group envelopes.
func (h *HierarchicalObserver) GroupEnvelopes() []float64 {
	out := make([]float64, len(h.sG))
	copy(out, h.sG)
	return out
}
