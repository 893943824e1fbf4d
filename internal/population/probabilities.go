package population

import "math/rand/v2"

// Probabilities is a discrete distribution over indices. Entries sum to 1.
type Probabilities []float64

// Choose draws an index from p using r.
func (p Probabilities) Choose(r *rand.Rand) int {
	sample := r.Float64()
	for i := range p {
		if sample < p[i] {
			return i
		}
		sample -= p[i]
	}
	return len(p) - 1
}

func normalise(xs []float64) Probabilities {
	s := 0.0
	for _, x := range xs {
		s += x
	}
	p := make(Probabilities, len(xs))
	for i, x := range xs {
		p[i] = x / s
	}
	return p
}

// householdSizes is the share of households with 1..6 residents.
var householdSizes = normalise([]float64{30, 35, 15, 13, 5, 2})

// ageBands is the share of residents per decade of age, 0-9 through 90-99.
var ageBands = normalise([]float64{11.6, 11.7, 12.1, 13.3, 12.6, 13.6, 12.0, 8.9, 5.7, 2.5})

// femaleShare is the probability a synthesized person is female.
const femaleShare = 0.507
