package policy

import (
	"github.com/velvetlabs/doorman/internal/engines/feasibility"
	"github.com/velvetlabs/doorman/internal/engines/pricing"
	"github.com/velvetlabs/doorman/pkg/core"
)

// dual scores candidates with learned shadow prices. Prices are seeded
// from attribute rarity on the first tick of a game and refreshed every
// few arrivals from the slack calculator; the refresh cadence is owned
// here, not by the tracker.
type dual struct {
	cfg        Config
	calculator *feasibility.Calculator
	scorer     *pricing.Scorer

	tracker *pricing.Tracker
	ticks   int
}

func newDual(cfg Config) *dual {
	return &dual{
		cfg:        cfg,
		calculator: feasibility.NewCalculator(cfg.Safety),
		scorer:     pricing.NewScorer(cfg.Scorer),
	}
}

func (d *dual) Name() string { return string(KindDual) }

func (d *dual) Decide(state *core.GameState, person core.Person) Decision {
	if d.tracker == nil {
		d.tracker = pricing.NewTracker(d.cfg.Tracker, state.Constraints, state.Statistics)
	}
	d.ticks++
	if d.ticks%d.cfg.Dual.UpdateEvery == 0 {
		slacks, _ := d.calculator.Slacks(state)
		d.tracker.Update(slacks)
	}

	met := state.AllMinimaMet()
	prices := d.tracker.Prices()
	score := d.scorer.Score(person, prices, state)

	scoring := &Scoring{
		Policy:           d.Name(),
		Helper:           len(score.HelpedAttributes) > 0,
		HelpedAttributes: score.HelpedAttributes,
		AllMinimaMet:     met,
		ShadowPrices:     prices,
		ShadowPriceSum:   score.ShadowPriceSum,
		SeatCost:         score.SeatCost,
		TotalValue:       score.TotalValue,
	}

	// Every minimum met: remaining seats are pure upside.
	if met {
		return Decision{Accept: true, Scoring: scoring}
	}

	threshold := d.cfg.Dual.FillerThreshold
	if len(score.HelpedAttributes) > 0 {
		threshold = d.cfg.Dual.HelperThreshold
	}
	scoring.Threshold = threshold

	return Decision{Accept: score.TotalValue >= threshold, Scoring: scoring}
}
