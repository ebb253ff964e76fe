package feasibility

import (
	"math"

	"github.com/velvetlabs/doorman/pkg/core"
)

// ConstraintSlack is the statistical margin of one constraint under a
// hypothetical decision: expected future supply minus the safety buffer
// minus the remaining need.
type ConstraintSlack struct {
	Attribute   string
	Need        int
	Probability float64
	Expected    float64
	Buffer      float64
	Slack       float64
	Feasible    bool
}

// Result is the verdict of one hypothetical evaluation. The bottleneck is
// the constraint with the minimum slack among those with remaining need;
// ties are broken by constraint declaration order. When no need remains
// anywhere, Bottleneck is empty and BottleneckSlack is +Inf.
type Result struct {
	Feasible        bool
	Bottleneck      string
	BottleneckSlack float64
	Slacks          []ConstraintSlack
}

// SlackOf returns the slack of a specific constraint in this result, or
// +Inf if the attribute is not tracked. Used by the end-game pacing rule,
// which watches the original bottleneck rather than the running minimum.
func (r Result) SlackOf(attribute string) float64 {
	for _, s := range r.Slacks {
		if s.Attribute == attribute {
			return s.Slack
		}
	}
	return math.Inf(1)
}

// Evaluator computes the statistical feasibility of meeting every
// remaining minimum, under the hypothesis that the current candidate is
// accepted or rejected. It is a pure function of its inputs: the model
// treats attributes as independent Bernoulli draws at their marginal
// frequencies.
type Evaluator struct {
	cfg   SafetyConfig
	baseZ float64
}

// NewEvaluator creates an evaluator with the given safety configuration.
func NewEvaluator(cfg SafetyConfig) *Evaluator {
	return &Evaluator{cfg: cfg, baseZ: cfg.baseZ()}
}

// Evaluate projects the state one hypothetical decision forward and
// reports the per-constraint slacks. With accept=false the candidate is
// ignored entirely; with accept=true one seat is consumed and the deficit
// of every attribute the candidate possesses is reduced by one, floored
// at zero, before the statistical projection.
func (e *Evaluator) Evaluate(state *core.GameState, candidate *core.Person, accept bool) Result {
	// One safety multiplier per decision, keyed to the state both
	// hypotheses share. Keying it to the hypothetical seat count would
	// price the two hypotheses with different multipliers at every
	// schedule boundary, making their slacks incomparable.
	z := e.cfg.zFor(e.baseZ, state.SeatsRemaining())

	seats := state.SeatsRemaining()
	if accept {
		seats--
		if seats < 0 {
			seats = 0
		}
	}

	res := Result{
		Feasible:        true,
		BottleneckSlack: math.Inf(1),
		Slacks:          make([]ConstraintSlack, 0, len(state.Constraints)),
	}
	for _, c := range state.Constraints {
		need := c.MinCount - state.AdmittedAttributes[c.Attribute]
		if need < 0 {
			need = 0
		}
		if accept && candidate != nil && candidate.Has(c.Attribute) && need > 0 {
			need--
		}
		cs := constraintSlack(c.Attribute, need, state.Statistics.Frequency(c.Attribute), seats, z)
		if need == 0 {
			// A met constraint cannot be missed: it neither gates
			// feasibility nor competes for the bottleneck. Its raw slack
			// only shrinks as seats run out, so leaving it in the scan
			// would let a satisfied minimum veto every later admission.
			cs.Feasible = true
			res.Slacks = append(res.Slacks, cs)
			continue
		}
		res.Slacks = append(res.Slacks, cs)
		if !cs.Feasible {
			res.Feasible = false
		}
		if cs.Slack < res.BottleneckSlack {
			res.BottleneckSlack = cs.Slack
			res.Bottleneck = cs.Attribute
		}
	}
	return res
}

func constraintSlack(attribute string, need int, p float64, seats int, z float64) ConstraintSlack {
	expected := p * float64(seats)
	variance := p * (1 - p) * float64(seats)
	if variance < 0 {
		variance = 0
	}
	buffer := z * math.Sqrt(variance)
	slack := expected - buffer - float64(need)
	return ConstraintSlack{
		Attribute:   attribute,
		Need:        need,
		Probability: p,
		Expected:    expected,
		Buffer:      buffer,
		Slack:       slack,
		Feasible:    slack >= 0,
	}
}
