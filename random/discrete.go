package random

import (
	"log"

	"golang.org/x/exp/rand"
)

// Empirical samples from a caller-supplied discrete distribution described
// by values and their cumulative probabilities.
type Empirical struct {
	values []float64
	cum    []float64
	rng    *rand.Rand
}

// NewEmpirical creates an empirical variate. cumProbs must be
// non-decreasing, within [0, 1], end at 1, and pair up with values
// one-to-one.
func NewEmpirical(values, cumProbs []float64, opts ...Option) *Empirical {
	if len(values) == 0 || len(values) != len(cumProbs) {
		log.Panic("empirical values and cumulative probabilities must pair up")
	}

	prev := 0.0
	for _, p := range cumProbs {
		if p < prev || p > 1 {
			log.Panic("empirical cumulative probabilities must be " +
				"non-decreasing within [0, 1]")
		}

		prev = p
	}

	if cumProbs[len(cumProbs)-1] != 1 {
		log.Panic("empirical cumulative probabilities must end at 1")
	}

	e := &Empirical{
		values: append([]float64(nil), values...),
		cum:    append([]float64(nil), cumProbs...),
		rng:    rand.New(newSource(opts)),
	}

	return e
}

// Sample returns one draw: the first value whose cumulative probability
// covers a uniform draw.
func (v *Empirical) Sample() float64 {
	u := v.rng.Float64()
	for i, p := range v.cum {
		if u < p {
			return v.values[i]
		}
	}

	return v.values[len(v.values)-1]
}

// Intn samples uniformly distributed integers in [0, maxExclusive).
type Intn struct {
	n   int
	rng *rand.Rand
}

// NewIntn creates a random integer variate over [0, maxExclusive).
func NewIntn(maxExclusive int, opts ...Option) *Intn {
	if maxExclusive <= 0 {
		log.Panic("random integer bound must be positive")
	}

	return &Intn{
		n:   maxExclusive,
		rng: rand.New(newSource(opts)),
	}
}

// Sample returns one draw as a float64.
func (v *Intn) Sample() float64 {
	return float64(v.rng.Intn(v.n))
}

// SampleInt returns one draw as an int.
func (v *Intn) SampleInt() int {
	return v.rng.Intn(v.n)
}
