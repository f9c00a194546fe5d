package genotype

import "math"

// LikelihoodStats is the read-only, shared-across-sites parameterisation of
// the level-genotyper's likelihood formulas.
type LikelihoodStats struct {
	MeanCovDepth       float64
	MeanPBError        float64
	LogMeanPBError     float64
	LogNoZero          float64
	LogNoZeroHalfDepth float64
	CredibleCovT       uint32

	PoissonFullDepth *PoissonLogPmf
	PoissonHalfDepth *PoissonLogPmf
}

// NewLikelihoodStats derives the log-space constants from mean coverage
// depth and mean per-base error rate, and builds the two memoised Poisson
// pmfs the haploid/homozygous (full depth) and heterozygous (half depth,
// one unit of depth per allele copy) likelihoods use.
//
// LogNoZeroHalfDepth halves LogNoZero rather than introducing a second
// independent error-rate parameter: the heterozygous credible-position term
// applies to each allele of the pair separately, and each allele only
// accounts for half the read depth, so its "correct coverage" log-weight is
// halved too.
func NewLikelihoodStats(meanCovDepth, meanPBError float64, credibleCovT uint32) *LikelihoodStats {
	logNoZero := math.Log(1 - meanPBError)
	return &LikelihoodStats{
		MeanCovDepth:       meanCovDepth,
		MeanPBError:        meanPBError,
		LogMeanPBError:     math.Log(meanPBError),
		LogNoZero:          logNoZero,
		LogNoZeroHalfDepth: logNoZero / 2,
		CredibleCovT:       credibleCovT,
		PoissonFullDepth:   NewPoissonLogPmf(meanCovDepth),
		PoissonHalfDepth:   NewPoissonLogPmf(meanCovDepth / 2),
	}
}
