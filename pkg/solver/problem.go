package solver

import (
	"fmt"

	"github.com/velvetlabs/doorman/pkg/core"
)

// FormulatorConfig holds the schedule parameters of the relaxation.
type FormulatorConfig struct {
	// ExpectedTotalArrivals estimates how many people will be seen over a
	// whole game. It is an injectable modeling parameter, not derived
	// from live data; callers needing adaptivity must override it.
	ExpectedTotalArrivals int `yaml:"expectedTotalArrivals" json:"expectedTotalArrivals"`

	// ScheduleTolerance lets each constraint run ahead of its
	// progress-proportional schedule by this share of its minimum.
	ScheduleTolerance float64 `yaml:"scheduleTolerance" json:"scheduleTolerance"`
}

// DefaultFormulatorConfig assumes 8000 arrivals and a 10% schedule
// tolerance.
func DefaultFormulatorConfig() FormulatorConfig {
	return FormulatorConfig{ExpectedTotalArrivals: 8000, ScheduleTolerance: 0.10}
}

// Validate checks the formulation parameters.
func (c FormulatorConfig) Validate() error {
	if c.ExpectedTotalArrivals <= 0 {
		return fmt.Errorf("expectedTotalArrivals must be > 0, got %d", c.ExpectedTotalArrivals)
	}
	if c.ScheduleTolerance < 0 {
		return fmt.Errorf("scheduleTolerance must be >= 0, got %v", c.ScheduleTolerance)
	}
	return nil
}

// ProblemConstraint is one row of the relaxation.
type ProblemConstraint struct {
	Attribute string

	// Coefficient is 1 when the candidate possesses the attribute,
	// otherwise 0.
	Coefficient float64

	// Current is the number already admitted with the attribute.
	Current float64

	// Bound is the progress-scaled capacity of the constraint:
	// progress*minCount plus the schedule tolerance, never exceeding the
	// minimum itself.
	Bound float64
}

// Problem is the single-variable relaxation for one decision tick.
type Problem struct {
	ProgressRatio float64
	Constraints   []ProblemConstraint
}

// Formulate builds the relaxation for the given candidate. Progress is
// the share of expected arrivals already processed, capped at 1.
func Formulate(state *core.GameState, person core.Person, cfg FormulatorConfig) Problem {
	processed := state.AdmittedCount + state.RejectedCount
	progress := float64(processed) / float64(cfg.ExpectedTotalArrivals)
	if progress > 1 {
		progress = 1
	}

	p := Problem{
		ProgressRatio: progress,
		Constraints:   make([]ProblemConstraint, 0, len(state.Constraints)),
	}
	for _, c := range state.Constraints {
		coeff := 0.0
		if person.Has(c.Attribute) {
			coeff = 1.0
		}
		minCount := float64(c.MinCount)
		bound := progress*minCount + cfg.ScheduleTolerance*minCount
		if bound > minCount {
			// The tolerance lets the schedule run ahead mid-game but the
			// scaled capacity never exceeds the minimum itself.
			bound = minCount
		}
		p.Constraints = append(p.Constraints, ProblemConstraint{
			Attribute:   c.Attribute,
			Coefficient: coeff,
			Current:     float64(state.AdmittedAttributes[c.Attribute]),
			Bound:       bound,
		})
	}
	return p
}
