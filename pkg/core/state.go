package core

import (
	"errors"
	"fmt"
)

// ErrUnknownConstraint is returned when a constraint lookup names an
// attribute absent from the declared constraint list. This indicates a
// mismatch between the statistics payload and the constraints and must
// not be silently defaulted.
var ErrUnknownConstraint = errors.New("unknown constraint attribute")

// GameState is the live record of one game: admitted and rejected counts,
// per-attribute admitted tallies, the declared constraints, and the
// attribute statistics.
//
// The decision engine only reads GameState; mutation happens once per tick
// in the decision loop, after the server has confirmed a decision. A
// GameState is owned by exactly one game session and is not safe for
// concurrent mutation.
type GameState struct {
	AdmittedCount      int
	RejectedCount      int
	AdmittedAttributes map[string]int
	Constraints        []Constraint
	Statistics         AttributeStatistics
}

// NewGameState creates the state for a fresh game with all counts at zero.
func NewGameState(constraints []Constraint, stats AttributeStatistics) *GameState {
	tallies := make(map[string]int, len(constraints))
	for _, c := range constraints {
		tallies[c.Attribute] = 0
	}
	return &GameState{
		AdmittedAttributes: tallies,
		Constraints:        constraints,
		Statistics:         stats,
	}
}

// SeatsRemaining returns the number of unfilled seats, floored at zero.
func (s *GameState) SeatsRemaining() int {
	left := VenueCapacity - s.AdmittedCount
	if left < 0 {
		return 0
	}
	return left
}

// Deficit returns the remaining shortfall against the constraint tracking
// the given attribute, floored at zero. Returns ErrUnknownConstraint if no
// constraint tracks the attribute.
func (s *GameState) Deficit(attribute string) (int, error) {
	for _, c := range s.Constraints {
		if c.Attribute == attribute {
			return deficit(c, s.AdmittedAttributes[attribute]), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownConstraint, attribute)
}

// Deficits returns the current shortfall per constraint attribute.
// Derived on demand, never stored.
func (s *GameState) Deficits() map[string]int {
	out := make(map[string]int, len(s.Constraints))
	for _, c := range s.Constraints {
		out[c.Attribute] = deficit(c, s.AdmittedAttributes[c.Attribute])
	}
	return out
}

// AllMinimaMet reports whether every constraint's minimum is satisfied.
func (s *GameState) AllMinimaMet() bool {
	for _, c := range s.Constraints {
		if deficit(c, s.AdmittedAttributes[c.Attribute]) > 0 {
			return false
		}
	}
	return true
}

// Helps returns the attributes of the person that reduce a currently
// positive deficit, in constraint declaration order.
func (s *GameState) Helps(p Person) []string {
	var helped []string
	for _, c := range s.Constraints {
		if p.Has(c.Attribute) && deficit(c, s.AdmittedAttributes[c.Attribute]) > 0 {
			helped = append(helped, c.Attribute)
		}
	}
	return helped
}

// Apply records one confirmed decision for the given person. Accepting
// increments the admitted count and the tally of every tracked attribute
// the person possesses; rejecting increments the rejected count.
func (s *GameState) Apply(p Person, accepted bool) {
	if !accepted {
		s.RejectedCount++
		return
	}
	s.AdmittedCount++
	for _, c := range s.Constraints {
		if p.Has(c.Attribute) {
			s.AdmittedAttributes[c.Attribute]++
		}
	}
}

// SyncCounts overwrites the aggregate counters with the server's
// authoritative values. Per-attribute tallies are kept locally since the
// server does not echo them back.
func (s *GameState) SyncCounts(admitted, rejected int) {
	if admitted >= 0 {
		s.AdmittedCount = admitted
	}
	if rejected >= 0 {
		s.RejectedCount = rejected
	}
}

func deficit(c Constraint, admitted int) int {
	d := c.MinCount - admitted
	if d < 0 {
		return 0
	}
	return d
}
