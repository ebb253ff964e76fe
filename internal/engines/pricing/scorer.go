package pricing

import (
	"fmt"
	"math"

	"github.com/velvetlabs/doorman/pkg/core"
)

// ScorerConfig holds the seat-cost constants of the desirability score.
type ScorerConfig struct {
	// SeatCostAlpha scales the convex occupancy penalty.
	SeatCostAlpha float64 `yaml:"seatCostAlpha" json:"seatCostAlpha"`

	// SeatCostBeta is the penalty exponent; values above 1 make the cost
	// grow sharply as the venue fills.
	SeatCostBeta float64 `yaml:"seatCostBeta" json:"seatCostBeta"`
}

// DefaultScorerConfig returns the scorer constants used by the dual
// pricing policy.
func DefaultScorerConfig() ScorerConfig {
	return ScorerConfig{SeatCostAlpha: 3.0, SeatCostBeta: 4.0}
}

// Validate checks the scorer configuration.
func (c ScorerConfig) Validate() error {
	if c.SeatCostAlpha < 0 {
		return fmt.Errorf("seatCostAlpha must be >= 0, got %v", c.SeatCostAlpha)
	}
	if c.SeatCostBeta < 1 {
		return fmt.Errorf("seatCostBeta must be >= 1, got %v", c.SeatCostBeta)
	}
	return nil
}

// Score is the desirability breakdown of one candidate.
type Score struct {
	// TotalValue is ShadowPriceSum minus SeatCost.
	TotalValue float64

	// ShadowPriceSum sums the prices of the candidate's attributes whose
	// deficit is still positive. A satisfied constraint contributes
	// nothing even at a nonzero price.
	ShadowPriceSum float64

	// SeatCost is the convex occupancy penalty at the current fill level.
	SeatCost float64

	// HelpedAttributes lists the unmet constrained attributes the
	// candidate possesses, in constraint declaration order.
	HelpedAttributes []string
}

// Scorer converts a candidate's attributes, the current shadow prices,
// and seat scarcity into a scalar desirability score. Pure function; the
// breakdown is returned for diagnostics.
type Scorer struct {
	cfg ScorerConfig
}

// NewScorer creates a scorer with the given constants.
func NewScorer(cfg ScorerConfig) *Scorer {
	return &Scorer{cfg: cfg}
}

// Score evaluates one candidate against the current state and prices.
func (s *Scorer) Score(p core.Person, prices map[string]float64, state *core.GameState) Score {
	helped := state.Helps(p)

	sum := 0.0
	for _, attribute := range helped {
		sum += prices[attribute]
	}

	utilization := 1 - float64(state.SeatsRemaining())/float64(core.VenueCapacity)
	cost := s.cfg.SeatCostAlpha * math.Pow(utilization, s.cfg.SeatCostBeta)

	return Score{
		TotalValue:       sum - cost,
		ShadowPriceSum:   sum,
		SeatCost:         cost,
		HelpedAttributes: helped,
	}
}
