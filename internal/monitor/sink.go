// Package monitor carries per-decision diagnostics out of the decision
// loop. The sink is injected into the runner rather than being a
// process-wide broadcaster; the engine produces the data and has no
// opinion on how it is displayed or transmitted.
package monitor

import (
	"github.com/velvetlabs/doorman/internal/engines/policy"
	"github.com/velvetlabs/doorman/pkg/core"
)

// Sink consumes decision-loop diagnostics.
type Sink interface {
	// OnDecision is invoked once per arrival with the scoring breakdown.
	OnDecision(state *core.GameState, person core.Person, decision policy.Decision)

	// OnStateUpdate is invoked after the server-confirmed counts have
	// been folded into the state.
	OnStateUpdate(state *core.GameState)

	// OnGameEnd is invoked once with the final tallies.
	OnGameEnd(status string, admitted, rejected int, constraintsMet bool)
}

// Noop discards everything.
type Noop struct{}

func (Noop) OnDecision(*core.GameState, core.Person, policy.Decision) {}
func (Noop) OnStateUpdate(*core.GameState)                            {}
func (Noop) OnGameEnd(string, int, int, bool)                         {}

// Multi fans diagnostics out to several sinks in order.
type Multi []Sink

func (m Multi) OnDecision(state *core.GameState, person core.Person, decision policy.Decision) {
	for _, s := range m {
		s.OnDecision(state, person, decision)
	}
}

func (m Multi) OnStateUpdate(state *core.GameState) {
	for _, s := range m {
		s.OnStateUpdate(state)
	}
}

func (m Multi) OnGameEnd(status string, admitted, rejected int, constraintsMet bool) {
	for _, s := range m {
		s.OnGameEnd(status, admitted, rejected, constraintsMet)
	}
}
