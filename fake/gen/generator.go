// Package gen provides seeded value generators for building synthetic data.
package gen

import (
	"math"
	"math/rand"
	"time"
)

// Generator produces reproducible pseudo-random values. It is not safe for
// concurrent use.
type Generator struct {
	r  *rand.Rand
	zs map[int]*rand.Zipf
	t  time.Time
}

// NewGenerator returns a Generator whose output is determined by seed.
func NewGenerator(seed int64) *Generator {
	return &Generator{
		r:  rand.New(rand.NewSource(seed)),
		zs: make(map[int]*rand.Zipf),
	}
}

// Uint64 returns a value in [0, cardinality) with a Zipfian distribution, so
// that small values are much more common than large ones.
func (g *Generator) Uint64(cardinality int) uint64 {
	z, ok := g.zs[cardinality]
	if !ok {
		// rand.Zipf generates values in [0, imax], so subtract one to get
		// [0, cardinality).
		imax := uint64(cardinality) - 1
		v := 0.05 * float64(imax)
		if v < 1.0 {
			v = 1.0
		}
		z = rand.NewZipf(g.r, 1.1, v, imax)
		g.zs[cardinality] = z
	}
	return z.Uint64()
}

// Intn returns a uniform value in [0, n).
func (g *Generator) Intn(n int) int {
	return g.r.Intn(n)
}

// Chance returns true with probability p.
func (g *Generator) Chance(p float64) bool {
	return g.r.Float64() < p
}

// Amount returns a positive monetary amount, log-normally distributed around
// median and rounded to cents.
func (g *Generator) Amount(median float64) float64 {
	v := median * math.Exp(g.r.NormFloat64())
	return math.Round(v*100) / 100
}

// Pick returns a uniformly chosen element of choices.
func (g *Generator) Pick(choices []string) string {
	return choices[g.r.Intn(len(choices))]
}

// Time returns successive times starting at from, each at most maxDelta
// after the previous one. Calling it with a different from restarts the
// sequence.
func (g *Generator) Time(from time.Time, maxDelta time.Duration) time.Time {
	if g.t.IsZero() || g.t.Before(from) {
		g.t = from
	}
	g.t = g.t.Add(time.Duration(g.r.Int63n(int64(maxDelta))))
	return g.t
}
