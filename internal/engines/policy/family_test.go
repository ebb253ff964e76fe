package policy

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/velvetlabs/doorman/pkg/core"
)

func makeState(constraints []core.Constraint, freqs map[string]float64) *core.GameState {
	return core.NewGameState(constraints, core.AttributeStatistics{RelativeFrequencies: freqs})
}

func mustStrategy(kind Kind, opts ...Option) Strategy {
	s, err := New(DefaultConfig(kind), opts...)
	Expect(err).NotTo(HaveOccurred())
	return s
}

var _ = Describe("strategy family", func() {
	var filler core.Person

	BeforeEach(func() {
		filler = core.Person{Index: 7, Attributes: map[string]bool{}}
	})

	Context("when every minimum is already met", func() {
		var state *core.GameState

		BeforeEach(func() {
			state = makeState(
				[]core.Constraint{{Attribute: "local", MinCount: 300}},
				map[string]float64{"local": 0.4},
			)
			state.AdmittedAttributes["local"] = 300
			state.AdmittedCount = 999
		})

		It("accepts unconditionally under every policy", func() {
			for _, kind := range []Kind{KindGreedy, KindPaced, KindDual, KindPrimal} {
				dec := mustStrategy(kind).Decide(state, filler)
				Expect(dec.Accept).To(BeTrue(), "policy %s should fill remaining seats", kind)
				Expect(dec.Scoring.AllMinimaMet).To(BeTrue())
			}
		})
	})

	Context("when a minimum is still unmet at the last seat", func() {
		var state *core.GameState

		BeforeEach(func() {
			state = makeState(
				[]core.Constraint{
					{Attribute: "met", MinCount: 100},
					{Attribute: "unmet", MinCount: 500},
				},
				map[string]float64{"met": 0.8, "unmet": 0.05},
			)
			state.AdmittedAttributes["met"] = 100
			state.AdmittedAttributes["unmet"] = 480
			state.AdmittedCount = 999
		})

		It("rejects the filler under greedy, paced, and dual", func() {
			for _, kind := range []Kind{KindGreedy, KindPaced, KindDual} {
				dec := mustStrategy(kind).Decide(state, filler)
				Expect(dec.Accept).To(BeFalse(), "policy %s should not waste the last seat on a filler", kind)
				Expect(dec.Scoring.Helper).To(BeFalse())
				Expect(dec.Scoring.AllMinimaMet).To(BeFalse())
			}
		})
	})

	Describe("feasibility pacing", func() {
		It("rejects a filler that would erode the scarce-attribute buffer", func() {
			state := makeState(
				[]core.Constraint{{Attribute: "rare", MinCount: 150}},
				map[string]float64{"rare": 0.2},
			)
			// Feasible either way, but the accept hypothesis cannot clear
			// the filler margin over the reject slack.

			dec := mustStrategy(KindPaced).Decide(state, filler)
			Expect(dec.Accept).To(BeFalse())
			Expect(dec.Scoring.Bottleneck).To(Equal("rare"))
		})

		It("accepts a helper that improves the bottleneck", func() {
			state := makeState(
				[]core.Constraint{{Attribute: "rare", MinCount: 200}},
				map[string]float64{"rare": 0.2},
			)
			helper := core.Person{Attributes: map[string]bool{"rare": true}}

			dec := mustStrategy(KindPaced).Decide(state, helper)
			Expect(dec.Accept).To(BeTrue())
			Expect(dec.Scoring.AcceptSlack).To(BeNumerically(">=", dec.Scoring.RejectSlack))
		})

		It("keeps admitting helpers after another minimum is met", func() {
			// A satisfied constraint's raw slack only shrinks as seats are
			// consumed; it must not masquerade as the bottleneck and veto
			// the helpers the remaining deficit still needs.
			state := makeState(
				[]core.Constraint{
					{Attribute: "a", MinCount: 300},
					{Attribute: "b", MinCount: 200},
				},
				map[string]float64{"a": 0.5, "b": 0.4},
			)
			state.AdmittedAttributes["a"] = 223
			state.AdmittedAttributes["b"] = 200 // met
			state.AdmittedCount = 225

			helper := core.Person{Attributes: map[string]bool{"a": true}}
			dec := mustStrategy(KindPaced).Decide(state, helper)

			Expect(dec.Scoring.Bottleneck).To(Equal("a"))
			Expect(dec.Accept).To(BeTrue(), "the met constraint must not starve the unmet one")
		})

		It("compares both hypotheses under one safety multiplier at a schedule boundary", func() {
			// Exactly 750 seats left: the accept hypothesis would cross
			// into the tighter multiplier if it were keyed to its own seat
			// count, making its slack incomparable to the reject slack.
			state := makeState(
				[]core.Constraint{{Attribute: "rare", MinCount: 300}},
				map[string]float64{"rare": 0.4},
			)
			state.AdmittedAttributes["rare"] = 100
			state.AdmittedCount = 250

			helper := core.Person{Attributes: map[string]bool{"rare": true}}
			dec := mustStrategy(KindPaced).Decide(state, helper)

			Expect(dec.Scoring.AcceptSlack).To(BeNumerically(">=", dec.Scoring.RejectSlack))
			Expect(dec.Accept).To(BeTrue())
		})

		It("pins the original bottleneck in the end game", func() {
			state := makeState(
				[]core.Constraint{
					{Attribute: "tight", MinCount: 500},
					{Attribute: "easy", MinCount: 100},
				},
				map[string]float64{"tight": 0.1, "easy": 0.9},
			)
			state.AdmittedAttributes["tight"] = 499
			state.AdmittedAttributes["easy"] = 100 // met; "tight" is the only unmet constraint
			state.AdmittedCount = 600

			helper := core.Person{Attributes: map[string]bool{"tight": true}}
			dec := mustStrategy(KindPaced).Decide(state, helper)

			Expect(dec.Scoring.Bottleneck).To(Equal("tight"))
			Expect(dec.Accept).To(BeTrue(), "relieving the last unmet constraint must be accepted")
		})
	})

	Describe("dual pricing", func() {
		It("admits helpers of under-supplied constraints and turns fillers away", func() {
			state := makeState(
				[]core.Constraint{{Attribute: "rare", MinCount: 400}},
				map[string]float64{"rare": 0.1},
			)
			s := mustStrategy(KindDual)

			helper := core.Person{Attributes: map[string]bool{"rare": true}}
			helperDec := s.Decide(state, helper)
			Expect(helperDec.Accept).To(BeTrue())
			Expect(helperDec.Scoring.ShadowPriceSum).To(BeNumerically(">", 0))

			fillerDec := s.Decide(state, filler)
			Expect(fillerDec.Accept).To(BeFalse())
			Expect(fillerDec.Scoring.ShadowPriceSum).To(BeZero())
		})

		It("raises the price of a constraint that falls behind schedule", func() {
			state := makeState(
				[]core.Constraint{{Attribute: "rare", MinCount: 600}},
				map[string]float64{"rare": 0.05},
			)
			s := mustStrategy(KindDual)

			first := s.Decide(state, filler)
			seed := first.Scoring.ShadowPrices["rare"]

			// Enough ticks for several price refreshes against the badly
			// negative slack of an unreachable minimum.
			var last Decision
			for i := 0; i < 50; i++ {
				last = s.Decide(state, filler)
			}
			Expect(last.Scoring.ShadowPrices["rare"]).To(BeNumerically(">", seed))
		})
	})

	Describe("primal relaxation", func() {
		It("rounds the optimum against the injected uniform draw", func() {
			state := makeState(
				[]core.Constraint{{Attribute: "a", MinCount: 500}},
				map[string]float64{"a": 0.5},
			)
			// Mid-game with the constraint almost at its scaled bound, so
			// x* is a fractional ceiling.
			state.AdmittedCount = 200
			state.RejectedCount = 1900
			state.AdmittedAttributes["a"] = 181

			helper := core.Person{Attributes: map[string]bool{"a": true}}

			low := mustStrategy(KindPrimal, WithRandFloat(func() float64 { return 0.0 }))
			high := mustStrategy(KindPrimal, WithRandFloat(func() float64 { return 0.999999 }))

			lowDec := low.Decide(state, helper)
			Expect(lowDec.Scoring.AdmissionProbability).To(BeNumerically(">", 0))
			Expect(lowDec.Scoring.AdmissionProbability).To(BeNumerically("<=", 1))
			Expect(lowDec.Accept).To(BeTrue())

			highDec := high.Decide(state, helper)
			Expect(highDec.Accept).To(Equal(highDec.Scoring.AdmissionProbability > 0.999999))
		})

		It("treats a saturated schedule as a hard reject", func() {
			// "a" sits exactly at its schedule bound while "b" keeps the
			// game unfinished, so the zero ceiling is the only gate.
			state := makeState(
				[]core.Constraint{
					{Attribute: "a", MinCount: 300},
					{Attribute: "b", MinCount: 400},
				},
				map[string]float64{"a": 0.5, "b": 0.4},
			)
			state.AdmittedAttributes["a"] = 300
			state.AdmittedAttributes["b"] = 200
			state.AdmittedCount = 500
			state.RejectedCount = 7600

			helper := core.Person{Attributes: map[string]bool{"a": true}}
			s := mustStrategy(KindPrimal, WithRandFloat(func() float64 { return 0.0 }))

			dec := s.Decide(state, helper)
			Expect(dec.Accept).To(BeFalse())
			Expect(dec.Scoring.AdmissionProbability).To(BeZero())
			Expect(dec.Scoring.ActiveConstraints).To(ContainElement("a"))
		})
	})
})
