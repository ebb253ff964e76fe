package solver

// activeTolerance is the numerical margin within which a constraint's
// slack at the optimum counts as binding.
const activeTolerance = 1e-9

// SolutionType classifies how the optimum was reached.
type SolutionType string

const (
	// SolutionOptimal means the closed form produced a feasible optimum.
	SolutionOptimal SolutionType = "optimal"

	// SolutionInfeasible means some constraint is violated even at x=0.
	SolutionInfeasible SolutionType = "infeasible"
)

// Solution is the result of solving one relaxation.
type Solution struct {
	Feasible             bool
	OptimalValue         float64
	AdmissionProbability float64
	ActiveConstraints    []string
	ConstraintSlacks     map[string]float64
	Type                 SolutionType
}

// Solve computes the exact optimum of the single-variable relaxation.
//
// Basic feasibility is checked first: if any constraint is violated at
// x=0 the problem is infeasible and the admission probability is 0.
// Otherwise the optimum is the minimum of 1 and every per-constraint
// ceiling (Bound-Current)/Coefficient over constraints the candidate
// contributes to, clamped to [0, 1].
func Solve(p Problem) Solution {
	slacks := make(map[string]float64, len(p.Constraints))

	for _, c := range p.Constraints {
		if c.Current > c.Bound+activeTolerance {
			for _, cc := range p.Constraints {
				slacks[cc.Attribute] = cc.Bound - cc.Current
			}
			return Solution{
				Feasible:         false,
				ConstraintSlacks: slacks,
				Type:             SolutionInfeasible,
			}
		}
	}

	x := 1.0
	for _, c := range p.Constraints {
		if c.Coefficient <= 0 {
			continue
		}
		ceiling := (c.Bound - c.Current) / c.Coefficient
		if ceiling < x {
			x = ceiling
		}
	}
	if x < 0 {
		x = 0
	}
	if x > 1 {
		x = 1
	}

	var active []string
	for _, c := range p.Constraints {
		slack := c.Bound - (c.Current + x*c.Coefficient)
		slacks[c.Attribute] = slack
		if slack <= activeTolerance {
			active = append(active, c.Attribute)
		}
	}

	return Solution{
		Feasible:             true,
		OptimalValue:         x,
		AdmissionProbability: x,
		ActiveConstraints:    active,
		ConstraintSlacks:     slacks,
		Type:                 SolutionOptimal,
	}
}
