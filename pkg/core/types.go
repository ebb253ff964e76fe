package core

// Venue-wide limits. The rejection ceiling is enforced by the decision loop,
// not by any individual strategy.
const (
	// VenueCapacity is the number of seats available in one game.
	VenueCapacity = 1000

	// RejectionLimit is the hard ceiling on rejections before a game is lost.
	RejectionLimit = 20000
)

// Constraint is a required minimum count of admitted people possessing a
// given attribute. Constraints are immutable for the life of a game.
type Constraint struct {
	Attribute string `json:"attribute" yaml:"attribute"`
	MinCount  int    `json:"minCount" yaml:"minCount"`
}

// AttributeStatistics holds the marginal frequencies and pairwise
// correlations supplied once at game start. They are treated as ground
// truth for the whole run.
//
// The statistical feasibility model treats attributes as independent
// Bernoulli draws; correlations are consumed only by the simulator's
// person generator.
type AttributeStatistics struct {
	RelativeFrequencies map[string]float64            `json:"relativeFrequencies" yaml:"relativeFrequencies"`
	Correlations        map[string]map[string]float64 `json:"correlations" yaml:"correlations"`
}

// Frequency returns the marginal frequency of an attribute, clamped to
// [0, 1]. Unknown attributes have frequency 0.
func (s AttributeStatistics) Frequency(attribute string) float64 {
	f, ok := s.RelativeFrequencies[attribute]
	if !ok {
		return 0
	}
	if f < 0 || f != f { // NaN guards to 0
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

// Correlation returns the pairwise correlation between two attributes,
// clamped to [-1, 1]. Unknown pairs correlate at 0.
func (s AttributeStatistics) Correlation(a, b string) float64 {
	if a == b {
		return 1
	}
	row, ok := s.Correlations[a]
	if !ok {
		return 0
	}
	r, ok := row[b]
	if !ok || r != r {
		return 0
	}
	if r < -1 {
		return -1
	}
	if r > 1 {
		return 1
	}
	return r
}

// Person is a single arrival. Immutable once issued.
type Person struct {
	Index      int             `json:"personIndex"`
	Attributes map[string]bool `json:"attributes"`
}

// Has reports whether the person possesses the attribute.
func (p Person) Has(attribute string) bool {
	return p.Attributes[attribute]
}
