package sim

import (
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/velvetlabs/doorman/pkg/core"
)

// Generator draws people whose attribute vector honors both the marginal
// frequencies and the pairwise correlations of the scenario, via a
// Gaussian copula: a correlated standard-normal vector is thresholded at
// each attribute's normal quantile.
type Generator struct {
	attributes []string
	thresholds []float64
	chol       *mat.Cholesky // nil when the correlation matrix is unusable
	rng        *rand.Rand
}

// NewGenerator builds a generator over every attribute present in the
// statistics, in sorted order for determinism under a fixed seed.
func NewGenerator(stats core.AttributeStatistics, seed int64) *Generator {
	attributes := make([]string, 0, len(stats.RelativeFrequencies))
	for a := range stats.RelativeFrequencies {
		attributes = append(attributes, a)
	}
	sort.Strings(attributes)

	normal := distuv.Normal{Mu: 0, Sigma: 1}
	thresholds := make([]float64, len(attributes))
	for i, a := range attributes {
		f := stats.Frequency(a)
		switch {
		case f <= 0:
			thresholds[i] = normal.Quantile(1e-12)
		case f >= 1:
			thresholds[i] = normal.Quantile(1 - 1e-12)
		default:
			thresholds[i] = normal.Quantile(f)
		}
	}

	g := &Generator{
		attributes: attributes,
		thresholds: thresholds,
		rng:        rand.New(rand.NewSource(seed)),
	}
	g.chol = factorCorrelations(attributes, stats)
	return g
}

// factorCorrelations builds and factorizes the correlation matrix.
// Returns nil when the matrix is not positive definite; sampling then
// falls back to independent draws, matching the engine's own
// independence assumption.
func factorCorrelations(attributes []string, stats core.AttributeStatistics) *mat.Cholesky {
	n := len(attributes)
	if n == 0 {
		return nil
	}
	sym := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		sym.SetSym(i, i, 1)
		for j := i + 1; j < n; j++ {
			sym.SetSym(i, j, stats.Correlation(attributes[i], attributes[j]))
		}
	}
	var chol mat.Cholesky
	if ok := chol.Factorize(sym); !ok {
		return nil
	}
	return &chol
}

// Next draws one person with the given index.
func (g *Generator) Next(index int) core.Person {
	z := g.sampleNormals()

	attrs := make(map[string]bool, len(g.attributes))
	for i, a := range g.attributes {
		attrs[a] = z[i] < g.thresholds[i]
	}
	return core.Person{Index: index, Attributes: attrs}
}

// sampleNormals draws a standard-normal vector with the scenario's
// correlation structure.
func (g *Generator) sampleNormals() []float64 {
	n := len(g.attributes)
	eps := make([]float64, n)
	for i := range eps {
		eps[i] = g.rng.NormFloat64()
	}
	if g.chol == nil {
		return eps
	}

	var lower mat.TriDense
	g.chol.LTo(&lower)

	z := make([]float64, n)
	for i := 0; i < n; i++ {
		sum := 0.0
		for j := 0; j <= i; j++ {
			sum += lower.At(i, j) * eps[j]
		}
		z[i] = sum
	}
	return z
}
