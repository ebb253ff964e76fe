package feasibility

import (
	"fmt"

	"gonum.org/v1/gonum/stat/distuv"
)

// SafetyConfig controls the safety buffer subtracted from the expected
// future supply of an attribute.
type SafetyConfig struct {
	// Confidence is the one-sided confidence level the buffer targets.
	// The base multiplier Z is the standard normal quantile at this level.
	Confidence float64 `yaml:"confidence" json:"confidence"`

	// Schedule optionally scales Z by seats remaining. Steps are checked
	// in order and the first match wins; an empty schedule means a fixed Z.
	// A multiplier below 1 is more aggressive, above 1 more conservative.
	Schedule []SafetyStep `yaml:"schedule" json:"schedule"`
}

// SafetyStep scales the safety multiplier while fewer than SeatsBelow
// seats remain.
type SafetyStep struct {
	SeatsBelow int     `yaml:"seatsBelow" json:"seatsBelow"`
	Multiplier float64 `yaml:"multiplier" json:"multiplier"`
}

// DefaultSafetyConfig targets ~Z=2 with a relaxed buffer while the venue
// is mostly empty and a tightened one as seats run out.
func DefaultSafetyConfig() SafetyConfig {
	return SafetyConfig{
		Confidence: 0.977,
		Schedule: []SafetyStep{
			{SeatsBelow: 100, Multiplier: 1.5},
			{SeatsBelow: 300, Multiplier: 1.2},
			{SeatsBelow: 750, Multiplier: 1.0},
			{SeatsBelow: 1001, Multiplier: 0.8},
		},
	}
}

// Validate checks the safety configuration.
func (c SafetyConfig) Validate() error {
	if c.Confidence <= 0.5 || c.Confidence >= 1 {
		return fmt.Errorf("confidence must be in (0.5, 1), got %v", c.Confidence)
	}
	for i, s := range c.Schedule {
		if s.Multiplier < 0 {
			return fmt.Errorf("schedule[%d]: multiplier must be >= 0, got %v", i, s.Multiplier)
		}
		if s.SeatsBelow <= 0 {
			return fmt.Errorf("schedule[%d]: seatsBelow must be > 0, got %d", i, s.SeatsBelow)
		}
	}
	return nil
}

// baseZ converts the configured confidence into a standard normal quantile.
func (c SafetyConfig) baseZ() float64 {
	conf := c.Confidence
	if conf <= 0.5 || conf >= 1 {
		conf = 0.977
	}
	n := distuv.Normal{Mu: 0, Sigma: 1}
	return n.Quantile(conf)
}

// zFor returns the effective safety multiplier for the given number of
// seats remaining.
func (c SafetyConfig) zFor(base float64, seatsRemaining int) float64 {
	for _, step := range c.Schedule {
		if seatsRemaining < step.SeatsBelow {
			return base * step.Multiplier
		}
	}
	return base
}
