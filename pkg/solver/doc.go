// Package solver implements the scaled linear relaxation used by the
// primal admission policy.
//
// Each decision tick is modeled as a linear program with a single
// variable: the current candidate's admission probability x in [0, 1].
// The objective maximizes x subject to, for every constraint c,
//
//	currentAdmitted[c] + x*hasAttribute[c] <= progress*minCount[c] + tolerance[c]
//
// where progress is the fraction of expected arrivals already processed
// and tolerance allows the schedule to run ahead by a fixed share of the
// minimum.
//
// Because there is exactly one variable the optimum has a closed form:
// if any constraint is already violated at x=0 the problem is infeasible
// and the admission probability is 0; otherwise x* is the minimum of 1
// and the per-constraint ceilings, clamped to [0, 1]. No iterative
// solver is required.
//
// Example usage:
//
//	problem := solver.Formulate(state, person, solver.DefaultFormulatorConfig())
//	solution := solver.Solve(problem)
//	if solution.Feasible && rng.Float64() < solution.AdmissionProbability {
//	    // admit
//	}
//
// The solver is designed to be:
//   - Exact: the closed form is the analytical optimum of the relaxation
//   - Deterministic: same problem, same solution
//   - Diagnostic: binding constraints and per-constraint slacks are reported
package solver
