package policy

import (
	"github.com/velvetlabs/doorman/internal/engines/feasibility"
	"github.com/velvetlabs/doorman/pkg/core"
)

// paced compares the statistical feasibility of the reject and accept
// hypotheses and only admits candidates that do not worsen the tightest
// constraint's margin.
type paced struct {
	cfg       Config
	evaluator *feasibility.Evaluator
}

func newPaced(cfg Config) *paced {
	return &paced{
		cfg:       cfg,
		evaluator: feasibility.NewEvaluator(cfg.Safety),
	}
}

func (p *paced) Name() string { return string(KindPaced) }

func (p *paced) Decide(state *core.GameState, person core.Person) Decision {
	helped := state.Helps(person)
	met := state.AllMinimaMet()

	reject := p.evaluator.Evaluate(state, &person, false)
	accept := p.evaluator.Evaluate(state, &person, true)

	scoring := &Scoring{
		Policy:           p.Name(),
		Helper:           len(helped) > 0,
		HelpedAttributes: helped,
		AllMinimaMet:     met,
		RejectFeasible:   reject.Feasible,
		AcceptFeasible:   accept.Feasible,
		RejectSlack:      reject.BottleneckSlack,
		AcceptSlack:      accept.BottleneckSlack,
		Bottleneck:       reject.Bottleneck,
	}

	// Minima all met: fill the remaining seats.
	if met {
		return Decision{Accept: true, Scoring: scoring}
	}

	// Accepting would break a feasible plan.
	if reject.Feasible && !accept.Feasible {
		return Decision{Accept: false, Scoring: scoring}
	}

	// Accepting restores feasibility.
	if !reject.Feasible && accept.Feasible {
		return Decision{Accept: true, Scoring: scoring}
	}

	if len(helped) > 0 {
		return Decision{Accept: p.admitHelper(state, reject, accept), Scoring: scoring}
	}
	return Decision{Accept: p.admitFiller(reject, accept), Scoring: scoring}
}

// admitHelper accepts a helping candidate iff it does not worsen the
// bottleneck. With a single unmet constraint the comparison pins the
// original bottleneck: accepting can shift which constraint is tightest,
// and the running minimum would then compare two different constraints.
func (p *paced) admitHelper(state *core.GameState, reject, accept feasibility.Result) bool {
	if unmetCount(state) == 1 {
		return accept.SlackOf(reject.Bottleneck)-reject.BottleneckSlack >= 0
	}
	return accept.BottleneckSlack-reject.BottleneckSlack >= 0
}

// admitFiller admits a non-helping candidate only while the accept
// hypothesis stays feasible with room to spare over both the configured
// floor and the margin above the reject slack.
func (p *paced) admitFiller(reject, accept feasibility.Result) bool {
	if !accept.Feasible {
		return false
	}
	required := p.cfg.Paced.FillerMinSlack
	if withMargin := reject.BottleneckSlack + p.cfg.Paced.FillerMargin; withMargin > required {
		required = withMargin
	}
	return accept.BottleneckSlack > required
}

func unmetCount(state *core.GameState) int {
	n := 0
	for _, d := range state.Deficits() {
		if d > 0 {
			n++
		}
	}
	return n
}
