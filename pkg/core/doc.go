// Package core provides fundamental data structures for the doorman admission engine.
//
// This package contains the domain models that represent the entities in one
// game of capacity-constrained admission control:
//
//   - Constraint: a required minimum count of admitted people with an attribute
//   - AttributeStatistics: marginal frequencies and pairwise correlations of attributes
//   - Person: a single arrival with a boolean attribute vector
//   - GameState: the live record of admissions, rejections, and per-attribute tallies
//
// These types form the foundation for the feasibility, pricing, and solver
// packages and are used throughout the decision loop.
//
// Example usage:
//
//	constraints := []core.Constraint{{Attribute: "local", MinCount: 600}}
//	stats := core.AttributeStatistics{
//		RelativeFrequencies: map[string]float64{"local": 0.4},
//	}
//	state := core.NewGameState(constraints, stats)
//
//	person := core.Person{Index: 0, Attributes: map[string]bool{"local": true}}
//	state.Apply(person, true)
//
// The core package is designed to be:
//   - Pure data with no policy: decisions live in the engines packages
//   - Deterministic: constraint iteration follows declaration order
//   - Independent of any transport or wire format
package core
