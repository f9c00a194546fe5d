// Package genotype implements the per-bubble statistical level-genotyper:
// haploid/homozygous/heterozygous log-likelihoods over grouped allele
// counts, genotype calling with a confidence score, and index rescaling.
package genotype

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/stat/distuv"
)

// PoissonLogPmf memoises Poisson(lambda) log-pmf evaluations. Queries are
// coverage counts, which can be fractional after diploid coverage dispatch,
// so the cache is keyed by float64 and non-integer queries are served by the
// continuous extension of the pmf (lgamma in place of the factorial) —
// distuv.Poisson.LogProb only accepts integer counts.
type PoissonLogPmf struct {
	lambda float64
	mu     sync.Mutex
	cache  map[float64]float64
}

// NewPoissonLogPmf builds a memoised Poisson(lambda) log-pmf, pre-seeding
// the zero-coverage entry since every genotyping model evaluates it at
// least once.
func NewPoissonLogPmf(lambda float64) *PoissonLogPmf {
	p := &PoissonLogPmf{lambda: lambda, cache: make(map[float64]float64)}
	p.Prob(0)
	return p
}

// Prob returns log(Poisson(lambda).pmf(x)), from cache if already computed.
func (p *PoissonLogPmf) Prob(x float64) float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	if v, ok := p.cache[x]; ok {
		return v
	}
	var v float64
	if x == math.Floor(x) {
		v = distuv.Poisson{Lambda: p.lambda}.LogProb(x)
	} else {
		lg, _ := math.Lgamma(x + 1)
		v = x*math.Log(p.lambda) - p.lambda - lg
	}
	p.cache[x] = v
	return v
}
