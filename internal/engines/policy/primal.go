package policy

import (
	"github.com/velvetlabs/doorman/pkg/core"
	"github.com/velvetlabs/doorman/pkg/solver"
)

// primal formulates the scaled linear relaxation each tick and admits by
// randomized rounding of the analytical optimum.
type primal struct {
	cfg       Config
	randFloat func() float64
}

func newPrimal(cfg Config, randFloat func() float64) *primal {
	return &primal{cfg: cfg, randFloat: randFloat}
}

func (p *primal) Name() string { return string(KindPrimal) }

func (p *primal) Decide(state *core.GameState, person core.Person) Decision {
	helped := state.Helps(person)
	met := state.AllMinimaMet()

	problem := solver.Formulate(state, person, p.cfg.Formulator)
	sol := solver.Solve(problem)

	scoring := &Scoring{
		Policy:               p.Name(),
		Helper:               len(helped) > 0,
		HelpedAttributes:     helped,
		AllMinimaMet:         met,
		AdmissionProbability: sol.AdmissionProbability,
		ActiveConstraints:    sol.ActiveConstraints,
	}

	if met {
		return Decision{Accept: true, Scoring: scoring}
	}

	x := sol.AdmissionProbability
	if !sol.Feasible || x < p.cfg.Primal.MinProbability {
		return Decision{Accept: false, Scoring: scoring}
	}
	return Decision{Accept: p.randFloat() < x, Scoring: scoring}
}
