package pricing

import (
	"fmt"

	"github.com/velvetlabs/doorman/pkg/core"
)

// TrackerConfig holds the dual-price learning constants.
type TrackerConfig struct {
	// LearningRate is the sub-gradient step size.
	LearningRate float64 `yaml:"learningRate" json:"learningRate"`

	// MinPrice and MaxPrice bound every shadow price.
	MinPrice float64 `yaml:"minPrice" json:"minPrice"`
	MaxPrice float64 `yaml:"maxPrice" json:"maxPrice"`

	// RaritySeeding seeds each price from the inverse frequency of its
	// attribute so rare attributes start valuable instead of waiting many
	// ticks to acquire a nonzero price. When false, prices seed to zero.
	RaritySeeding bool `yaml:"raritySeeding" json:"raritySeeding"`

	// SeedMin and SeedMax are the target range rarity seeding maps onto.
	SeedMin float64 `yaml:"seedMin" json:"seedMin"`
	SeedMax float64 `yaml:"seedMax" json:"seedMax"`
}

// DefaultTrackerConfig returns the tracker constants used by the dual
// pricing policy.
func DefaultTrackerConfig() TrackerConfig {
	return TrackerConfig{
		LearningRate:  8.0,
		MinPrice:      0,
		MaxPrice:      15,
		RaritySeeding: true,
		SeedMin:       0.5,
		SeedMax:       5.0,
	}
}

// Validate checks the tracker configuration.
func (c TrackerConfig) Validate() error {
	if c.LearningRate <= 0 {
		return fmt.Errorf("learningRate must be > 0, got %v", c.LearningRate)
	}
	if c.MinPrice < 0 {
		return fmt.Errorf("minPrice must be >= 0, got %v", c.MinPrice)
	}
	if c.MaxPrice <= c.MinPrice {
		return fmt.Errorf("maxPrice (%v) must exceed minPrice (%v)", c.MaxPrice, c.MinPrice)
	}
	if c.RaritySeeding && c.SeedMax < c.SeedMin {
		return fmt.Errorf("seedMax (%v) must be >= seedMin (%v)", c.SeedMax, c.SeedMin)
	}
	return nil
}

// Tracker maintains one non-negative shadow price per constraint,
// seeded once per game and updated by sub-gradient steps from slack
// signals. A tracker belongs to one game session; callers own the update
// cadence. Not safe for concurrent use.
type Tracker struct {
	cfg    TrackerConfig
	prices map[string]float64
}

// NewTracker seeds a price for every declared constraint.
func NewTracker(cfg TrackerConfig, constraints []core.Constraint, stats core.AttributeStatistics) *Tracker {
	t := &Tracker{cfg: cfg, prices: make(map[string]float64, len(constraints))}
	if !cfg.RaritySeeding {
		for _, c := range constraints {
			t.prices[c.Attribute] = clamp(0, cfg.MinPrice, cfg.MaxPrice)
		}
		return t
	}
	t.seedByRarity(constraints, stats)
	return t
}

// seedByRarity maps the normalized inverse frequency of each constrained
// attribute onto [SeedMin, SeedMax].
func (t *Tracker) seedByRarity(constraints []core.Constraint, stats core.AttributeStatistics) {
	const floor = 1e-6

	inv := make(map[string]float64, len(constraints))
	lo, hi := 0.0, 0.0
	for i, c := range constraints {
		f := stats.Frequency(c.Attribute)
		if f < floor {
			f = floor
		}
		v := 1 / f
		inv[c.Attribute] = v
		if i == 0 || v < lo {
			lo = v
		}
		if i == 0 || v > hi {
			hi = v
		}
	}

	span := hi - lo
	for _, c := range constraints {
		norm := 0.5 // all attributes equally rare
		if span > 0 {
			norm = (inv[c.Attribute] - lo) / span
		}
		seed := t.cfg.SeedMin + (t.cfg.SeedMax-t.cfg.SeedMin)*norm
		t.prices[c.Attribute] = clamp(seed, t.cfg.MinPrice, t.cfg.MaxPrice)
	}
}

// Update applies one sub-gradient step per known constraint. The slack
// carries its sign: a constraint behind schedule has negative slack, so
// subtracting the scaled slack raises its price; a constraint ahead of
// schedule decays toward the floor.
func (t *Tracker) Update(slacks map[string]float64) {
	for attribute, slack := range slacks {
		price, ok := t.prices[attribute]
		if !ok {
			continue
		}
		price -= t.cfg.LearningRate * slack / float64(core.VenueCapacity)
		t.prices[attribute] = clamp(price, t.cfg.MinPrice, t.cfg.MaxPrice)
	}
}

// Price returns the shadow price of an attribute, 0 if untracked.
func (t *Tracker) Price(attribute string) float64 {
	return t.prices[attribute]
}

// Prices returns a copy of the full price map.
func (t *Tracker) Prices() map[string]float64 {
	out := make(map[string]float64, len(t.prices))
	for k, v := range t.prices {
		out[k] = v
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
