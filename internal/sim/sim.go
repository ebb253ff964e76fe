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

// Package sim is an offline game server: it generates arrivals from a
// scenario's statistics and applies decisions with the same terminal
// rules as the live server, so strategies can be evaluated without
// network access.
package sim

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/velvetlabs/doorman/internal/runner"
	"github.com/velvetlabs/doorman/pkg/core"
)

// Scenario defines one offline game.
type Scenario struct {
	Name        string                   `yaml:"name"`
	Constraints []core.Constraint        `yaml:"constraints"`
	Statistics  core.AttributeStatistics `yaml:"statistics"`
}

// DefaultScenario is the canonical two-attribute night: both minima at
// 600 with marginal frequencies well below them, so the door has to
// work for every seat.
func DefaultScenario() *Scenario {
	return &Scenario{
		Name: "opening-night",
		Constraints: []core.Constraint{
			{Attribute: "young", MinCount: 600},
			{Attribute: "well_dressed", MinCount: 600},
		},
		Statistics: core.AttributeStatistics{
			RelativeFrequencies: map[string]float64{
				"young":        0.32,
				"well_dressed": 0.32,
			},
			Correlations: map[string]map[string]float64{
				"young":        {"well_dressed": 0.18},
				"well_dressed": {"young": 0.18},
			},
		},
	}
}

// LoadScenario reads a scenario definition from a YAML file.
func LoadScenario(path string) (*Scenario, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario %s: %w", path, err)
	}
	var s Scenario
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("parsing scenario %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	return &s, nil
}

// Validate checks that every constraint has a frequency and a reachable
// minimum.
func (s *Scenario) Validate() error {
	if len(s.Constraints) == 0 {
		return fmt.Errorf("no constraints defined")
	}
	for _, c := range s.Constraints {
		if c.MinCount < 0 {
			return fmt.Errorf("constraint %s: minCount must be >= 0, got %d", c.Attribute, c.MinCount)
		}
		if c.MinCount > core.VenueCapacity {
			return fmt.Errorf("constraint %s: minCount %d exceeds venue capacity", c.Attribute, c.MinCount)
		}
		if _, ok := s.Statistics.RelativeFrequencies[c.Attribute]; !ok {
			return fmt.Errorf("constraint %s: no relative frequency in statistics", c.Attribute)
		}
	}
	return nil
}

// Simulator implements runner.Source against an in-memory game.
type Simulator struct {
	scenario *Scenario
	gen      *Generator

	gameID    string
	admitted  int
	rejected  int
	tallies   map[string]int
	nextIndex int
	pending   *core.Person
}

// New creates a simulator for the scenario with a deterministic arrival
// stream under the given seed.
func New(scenario *Scenario, seed int64) *Simulator {
	return &Simulator{
		scenario: scenario,
		gen:      NewGenerator(scenario.Statistics, seed),
		tallies:  make(map[string]int),
	}
}

// NewGame resets the simulated venue.
func (s *Simulator) NewGame(ctx context.Context) (*runner.Game, error) {
	s.gameID = uuid.NewString()
	s.admitted = 0
	s.rejected = 0
	s.tallies = make(map[string]int)
	s.nextIndex = 0
	s.pending = nil

	return &runner.Game{
		ID:          s.gameID,
		Constraints: s.scenario.Constraints,
		Statistics:  s.scenario.Statistics,
	}, nil
}

// DecideAndNext applies the decision for the pending person and issues
// the next arrival, with the live server's terminal rules: completed at
// full capacity, failed at the rejection ceiling.
func (s *Simulator) DecideAndNext(ctx context.Context, personIndex int, accept *bool) (*runner.Arrival, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if accept != nil {
		if s.pending == nil || s.pending.Index != personIndex {
			return nil, fmt.Errorf("decision for person %d does not match pending arrival", personIndex)
		}
		s.apply(*s.pending, *accept)
		s.pending = nil
	}

	arrival := &runner.Arrival{
		Status:        runner.StatusRunning,
		AdmittedCount: s.admitted,
		RejectedCount: s.rejected,
	}
	switch {
	case s.admitted >= core.VenueCapacity:
		arrival.Status = runner.StatusCompleted
		return arrival, nil
	case s.rejected >= core.RejectionLimit:
		arrival.Status = runner.StatusFailed
		arrival.Reason = "rejection limit reached"
		return arrival, nil
	}

	p := s.gen.Next(s.nextIndex)
	s.nextIndex++
	s.pending = &p
	arrival.Next = &p
	return arrival, nil
}

// apply folds one decision into the authoritative tallies.
func (s *Simulator) apply(p core.Person, accept bool) {
	if !accept {
		s.rejected++
		return
	}
	s.admitted++
	for _, c := range s.scenario.Constraints {
		if p.Has(c.Attribute) {
			s.tallies[c.Attribute]++
		}
	}
}

// ConstraintsMet reports whether the simulated venue satisfied every
// minimum.
func (s *Simulator) ConstraintsMet() bool {
	for _, c := range s.scenario.Constraints {
		if s.tallies[c.Attribute] < c.MinCount {
			return false
		}
	}
	return true
}
