/*
Copyright 2026 The doorman Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package runner drives the decision loop: it owns the terminal
// conditions of a game and the once-per-tick state mutation, and invokes
// exactly one strategy decision per arrival.
package runner

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"

	"github.com/velvetlabs/doorman/internal/engines/policy"
	"github.com/velvetlabs/doorman/internal/logging"
	"github.com/velvetlabs/doorman/internal/monitor"
	"github.com/velvetlabs/doorman/pkg/core"
)

// Outcome is the final tally of one game.
type Outcome struct {
	GameID         string
	Status         Status
	Reason         string
	Admitted       int
	Rejected       int
	ConstraintsMet bool
	Deficits       map[string]int
}

// Runner plays one game to completion. A runner, like its strategy, is
// single-use: one instance per game session.
type Runner struct {
	source   Source
	strategy policy.Strategy
	sink     monitor.Sink
	logger   logr.Logger
}

// New assembles a runner. A nil sink is replaced by monitor.Noop.
func New(source Source, strategy policy.Strategy, sink monitor.Sink, logger logr.Logger) *Runner {
	if sink == nil {
		sink = monitor.Noop{}
	}
	return &Runner{source: source, strategy: strategy, sink: sink, logger: logger}
}

// Run opens a game and processes arrivals until the upstream reports a
// terminal status, the venue fills, or the rejection ceiling is hit.
func (r *Runner) Run(ctx context.Context) (*Outcome, error) {
	game, err := r.source.NewGame(ctx)
	if err != nil {
		return nil, fmt.Errorf("opening game: %w", err)
	}
	state := core.NewGameState(game.Constraints, game.Statistics)
	r.logger.Info("game opened",
		"gameId", game.ID,
		"constraints", len(game.Constraints),
		"policy", r.strategy.Name())

	arrival, err := r.source.DecideAndNext(ctx, 0, nil)
	if err != nil {
		return nil, fmt.Errorf("fetching first arrival: %w", err)
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if done, outcome := r.terminal(game, state, arrival); done {
			r.sink.OnGameEnd(string(outcome.Status), outcome.Admitted, outcome.Rejected, outcome.ConstraintsMet)
			r.logger.Info("game over",
				"gameId", game.ID,
				"status", outcome.Status,
				"admitted", outcome.Admitted,
				"rejected", outcome.Rejected,
				"constraintsMet", outcome.ConstraintsMet)
			return outcome, nil
		}

		person := *arrival.Next
		decision := r.strategy.Decide(state, person)
		r.logger.V(logging.TRACE).Info("decision",
			"personIndex", person.Index,
			"accept", decision.Accept)

		next, err := r.source.DecideAndNext(ctx, person.Index, &decision.Accept)
		if err != nil {
			return nil, fmt.Errorf("submitting decision for person %d: %w", person.Index, err)
		}

		// Local bookkeeping first (attribute tallies), then the server's
		// authoritative aggregate counts on top.
		state.Apply(person, decision.Accept)
		state.SyncCounts(next.AdmittedCount, next.RejectedCount)

		r.sink.OnDecision(state, person, decision)
		r.sink.OnStateUpdate(state)

		arrival = next
	}
}

// terminal checks the end conditions: upstream terminal status, venue at
// capacity, or the rejection ceiling.
func (r *Runner) terminal(game *Game, state *core.GameState, arrival *Arrival) (bool, *Outcome) {
	status := arrival.Status
	switch {
	case status == StatusCompleted || status == StatusFailed:
	case arrival.Next == nil:
		// Upstream exhausted without a terminal flag; treat as failed.
		status = StatusFailed
	case state.SeatsRemaining() == 0:
		status = StatusCompleted
	case state.RejectedCount >= core.RejectionLimit:
		status = StatusFailed
	default:
		return false, nil
	}

	return true, &Outcome{
		GameID:         game.ID,
		Status:         status,
		Reason:         arrival.Reason,
		Admitted:       state.AdmittedCount,
		Rejected:       state.RejectedCount,
		ConstraintsMet: state.AllMinimaMet(),
		Deficits:       state.Deficits(),
	}
}
