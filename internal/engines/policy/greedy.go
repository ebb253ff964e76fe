package policy

import (
	"github.com/velvetlabs/doorman/pkg/core"
)

// greedy is the deficit-greedy baseline: accept whoever helps an unmet
// constraint, fill remaining seats unconditionally once every minimum is
// met, reject everyone else.
type greedy struct{}

func newGreedy() *greedy {
	return &greedy{}
}

func (g *greedy) Name() string { return string(KindGreedy) }

func (g *greedy) Decide(state *core.GameState, person core.Person) Decision {
	helped := state.Helps(person)
	met := state.AllMinimaMet()

	return Decision{
		Accept: met || len(helped) > 0,
		Scoring: &Scoring{
			Policy:           g.Name(),
			Helper:           len(helped) > 0,
			HelpedAttributes: helped,
			AllMinimaMet:     met,
		},
	}
}
