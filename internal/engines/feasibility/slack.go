package feasibility

import (
	"github.com/velvetlabs/doorman/pkg/core"
)

// Calculator produces per-constraint slacks for the current state, with
// no hypothetical candidate. Its output is the training signal for the
// dual-price tracker: a negative slack means the constraint is behind its
// statistical pace.
type Calculator struct {
	cfg   SafetyConfig
	baseZ float64
}

// NewCalculator creates a slack calculator with the given safety
// configuration.
func NewCalculator(cfg SafetyConfig) *Calculator {
	return &Calculator{cfg: cfg, baseZ: cfg.baseZ()}
}

// Slacks computes expectation-minus-safety-minus-need per constraint at
// the current seats remaining and current deficits. It never requires a
// candidate and is computable on every call.
func (c *Calculator) Slacks(state *core.GameState) (map[string]float64, []ConstraintSlack) {
	seats := state.SeatsRemaining()
	z := c.cfg.zFor(c.baseZ, seats)

	out := make(map[string]float64, len(state.Constraints))
	details := make([]ConstraintSlack, 0, len(state.Constraints))
	for _, cons := range state.Constraints {
		need := cons.MinCount - state.AdmittedAttributes[cons.Attribute]
		if need < 0 {
			need = 0
		}
		cs := constraintSlack(cons.Attribute, need, state.Statistics.Frequency(cons.Attribute), seats, z)
		out[cs.Attribute] = cs.Slack
		details = append(details, cs)
	}
	return out, details
}
