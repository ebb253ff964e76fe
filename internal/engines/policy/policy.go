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

package policy

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/velvetlabs/doorman/internal/engines/feasibility"
	"github.com/velvetlabs/doorman/internal/engines/pricing"
	"github.com/velvetlabs/doorman/pkg/core"
	"github.com/velvetlabs/doorman/pkg/solver"
)

// Strategy is the single operational boundary of the decision engine: one
// admit/reject decision per arrival, with a diagnostic scoring breakdown.
//
// A strategy instance is owned by exactly one game session. It may carry
// internal counters and prices across ticks within that game but is
// stateless across games and not safe for concurrent use.
type Strategy interface {
	// Name returns the policy kind implemented by this strategy.
	Name() string

	// Decide evaluates one candidate against the live state.
	Decide(state *core.GameState, person core.Person) Decision
}

// Decision is the outcome of one tick.
type Decision struct {
	Accept  bool
	Scoring *Scoring
}

// Scoring carries per-decision diagnostics for the observability sink.
// Fields not produced by the deciding policy hold their zero values.
type Scoring struct {
	Policy           string
	Helper           bool
	HelpedAttributes []string
	AllMinimaMet     bool

	// Feasibility pacing diagnostics.
	RejectFeasible bool
	AcceptFeasible bool
	RejectSlack    float64
	AcceptSlack    float64
	Bottleneck     string

	// Dual pricing diagnostics.
	ShadowPrices   map[string]float64
	ShadowPriceSum float64
	SeatCost       float64
	TotalValue     float64
	Threshold      float64

	// Primal relaxation diagnostics.
	AdmissionProbability float64
	ActiveConstraints    []string
}

// Kind is an enumeration of the built-in policies.
type Kind string

const (
	// KindGreedy accepts anyone helping an unmet constraint. The
	// baseline: no statistics used.
	KindGreedy Kind = "greedy"

	// KindPaced paces admissions by comparing the statistical
	// feasibility of the accept and reject hypotheses.
	KindPaced Kind = "paced"

	// KindDual scores candidates with learned shadow prices.
	KindDual Kind = "dual"

	// KindPrimal solves the scaled linear relaxation and admits by
	// randomized rounding.
	KindPrimal Kind = "primal"
)

// Config parameterizes the whole policy family. The variants differ only
// in these constants, not in structure.
type Config struct {
	Kind Kind `yaml:"kind" json:"kind"`

	Safety     feasibility.SafetyConfig `yaml:"safety" json:"safety"`
	Tracker    pricing.TrackerConfig    `yaml:"tracker" json:"tracker"`
	Scorer     pricing.ScorerConfig     `yaml:"scorer" json:"scorer"`
	Formulator solver.FormulatorConfig  `yaml:"formulator" json:"formulator"`

	Paced  PacedConfig  `yaml:"paced" json:"paced"`
	Dual   DualConfig   `yaml:"dual" json:"dual"`
	Primal PrimalConfig `yaml:"primal" json:"primal"`
}

// PacedConfig holds the feasibility-paced policy constants.
type PacedConfig struct {
	// FillerMinSlack is the minimum accept-hypothesis slack a filler must
	// leave behind; filler must not erode the buffer built for scarce
	// attributes.
	FillerMinSlack float64 `yaml:"fillerMinSlack" json:"fillerMinSlack"`

	// FillerMargin is the extra slack a filler must add on top of the
	// reject-hypothesis slack.
	FillerMargin float64 `yaml:"fillerMargin" json:"fillerMargin"`
}

// DualConfig holds the dual-pricing policy constants.
type DualConfig struct {
	// UpdateEvery throttles price refreshes to one per this many
	// processed arrivals. The tracker itself never throttles.
	UpdateEvery int `yaml:"updateEvery" json:"updateEvery"`

	// HelperThreshold and FillerThreshold are the minimum total values a
	// helper and a filler must score to be admitted.
	HelperThreshold float64 `yaml:"helperThreshold" json:"helperThreshold"`
	FillerThreshold float64 `yaml:"fillerThreshold" json:"fillerThreshold"`
}

// PrimalConfig holds the primal relaxation policy constants.
type PrimalConfig struct {
	// MinProbability treats optima below this value as rejects to avoid
	// admitting on numerical noise.
	MinProbability float64 `yaml:"minProbability" json:"minProbability"`
}

// DefaultConfig returns the tuned constants for one policy kind.
func DefaultConfig(kind Kind) Config {
	return Config{
		Kind:       kind,
		Safety:     feasibility.DefaultSafetyConfig(),
		Tracker:    pricing.DefaultTrackerConfig(),
		Scorer:     pricing.DefaultScorerConfig(),
		Formulator: solver.DefaultFormulatorConfig(),
		Paced: PacedConfig{
			FillerMinSlack: 30,
			FillerMargin:   5,
		},
		Dual: DualConfig{
			UpdateEvery:     10,
			HelperThreshold: 0.5,
			FillerThreshold: 2.0,
		},
		Primal: PrimalConfig{
			MinProbability: 0.001,
		},
	}
}

// Validate checks the policy configuration.
func (c Config) Validate() error {
	switch c.Kind {
	case KindGreedy, KindPaced, KindDual, KindPrimal:
	default:
		return fmt.Errorf("unsupported policy kind: %q", c.Kind)
	}
	if err := c.Safety.Validate(); err != nil {
		return fmt.Errorf("safety: %w", err)
	}
	if err := c.Tracker.Validate(); err != nil {
		return fmt.Errorf("tracker: %w", err)
	}
	if err := c.Scorer.Validate(); err != nil {
		return fmt.Errorf("scorer: %w", err)
	}
	if err := c.Formulator.Validate(); err != nil {
		return fmt.Errorf("formulator: %w", err)
	}
	if c.Dual.UpdateEvery <= 0 {
		return fmt.Errorf("dual: updateEvery must be > 0, got %d", c.Dual.UpdateEvery)
	}
	if c.Primal.MinProbability < 0 || c.Primal.MinProbability >= 1 {
		return fmt.Errorf("primal: minProbability must be in [0, 1), got %v", c.Primal.MinProbability)
	}
	return nil
}

// Option customizes strategy construction.
type Option func(*options)

type options struct {
	randFloat func() float64
}

// WithRandFloat overrides the uniform draw used by randomized rounding.
// Tests inject a deterministic source here.
func WithRandFloat(f func() float64) Option {
	return func(o *options) { o.randFloat = f }
}

// New is a factory that creates a fresh per-game Strategy for the
// configured policy kind.
func New(cfg Config, opts ...Option) (Strategy, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid policy config: %w", err)
	}
	o := &options{
		randFloat: rand.New(rand.NewSource(time.Now().UnixNano())).Float64,
	}
	for _, opt := range opts {
		opt(o)
	}

	switch cfg.Kind {
	case KindGreedy:
		return newGreedy(), nil
	case KindPaced:
		return newPaced(cfg), nil
	case KindDual:
		return newDual(cfg), nil
	case KindPrimal:
		return newPrimal(cfg, o.randFloat), nil
	default:
		return nil, fmt.Errorf("unsupported policy kind: %q", cfg.Kind)
	}
}
