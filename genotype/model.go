package genotype

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/biographs/quasimap/covgraph"
)

// PerAlleleCoverage is a flat, per-allele-index coverage vector.
type PerAlleleCoverage []float64

// Ploidy selects which genotype hypotheses CallGenotype considers.
type Ploidy int

const (
	Haploid Ploidy = iota
	Diploid
)

// Call is the result of genotyping one bubble: the called allele indices
// (both raw, into the site's allele slice, and rescaled to 0..k-1 of the
// called set), every evaluated genotype's log-likelihood, and the
// confidence (top minus second-best likelihood). A nil RawGenotype means
// the site was null-genotyped.
type Call struct {
	RawGenotype []int
	Genotype    []int
	Likelihoods map[string]float64
	Confidence  float64
}

// Model is one bubble's LevelGenotyperModel: the allele list, the grouped
// allele counts observed there, ploidy, and the shared likelihood stats.
type Model struct {
	Alleles     []covgraph.AllelePath
	GPCounts    map[string]int
	Ploidy      Ploidy
	Stats       *LikelihoodStats
	Haplogroups []int // per-allele-index haplogroup id; defaults to the allele's own index

	Haploid       PerAlleleCoverage
	Singleton     PerAlleleCoverage
	TotalCoverage float64
}

// NewModel constructs a Model for one site, running the empty-allele
// coverage assignment and per-allele haploid/singleton coverage computation
// eagerly so every likelihood evaluation reads precomputed fields.
func NewModel(alleles []covgraph.AllelePath, gpCounts map[string]int, ploidy Ploidy, stats *LikelihoodStats, haplogroups []int) (*Model, error) {
	if haplogroups == nil {
		haplogroups = make([]int, len(alleles))
		for i := range haplogroups {
			haplogroups[i] = i
		}
	}
	haploid, singleton, err := SetHaploidCoverages(gpCounts, len(alleles))
	if err != nil {
		return nil, err
	}
	m := &Model{
		Alleles:       alleles,
		GPCounts:      gpCounts,
		Ploidy:        ploidy,
		Stats:         stats,
		Haplogroups:   haplogroups,
		Haploid:       haploid,
		Singleton:     singleton,
		TotalCoverage: float64(CountTotalCoverage(gpCounts)),
	}
	AssignCoverageToEmptyAlleles(m.Alleles, m.Haploid)
	return m, nil
}

func (m *Model) sameHaplogroup(a, b int) bool { return m.Haplogroups[a] == m.Haplogroups[b] }

// haploidLogLikelihood scores explaining the site's whole read depth with a
// single allele: Poisson(depth) on the allele's coverage, plus per-position
// terms rewarding credibly covered positions and penalising uncovered ones.
func (m *Model) haploidLogLikelihood(a int) float64 {
	allele := m.Alleles[a]
	credible := CountCrediblePositions(m.Stats.CredibleCovT, allele)
	length := alleleLength(allele)
	return m.Stats.PoissonFullDepth.Prob(m.Haploid[a]) +
		float64(credible)*m.Stats.LogNoZero +
		float64(length-credible)*m.Stats.LogMeanPBError
}

// homozygousLogLikelihood is the same formula as haploid, since a
// homozygous diploid call explains the read depth with one allele exactly
// as a haploid call does.
func (m *Model) homozygousLogLikelihood(a int) float64 {
	return m.haploidLogLikelihood(a)
}

// heterozygousLogLikelihood scores a two-allele hypothesis at half depth
// per allele. It reports ok = false when either allele lacks singleton
// coverage: only pairs where each allele has at least one read uniquely its
// own are considered, so a site whose coverage is entirely multi-allelic
// yields no heterozygous hypotheses at all, which CallGenotype accepts.
func (m *Model) heterozygousLogLikelihood(a, b int) (float64, bool) {
	if m.Singleton[a] < 1 || m.Singleton[b] < 1 {
		return 0, false
	}
	covA, covB, err := ComputeDiploidCoverage(m.GPCounts, [2]int{a, b}, m.sameHaplogroup(a, b))
	if err != nil {
		return 0, false
	}
	credA := CountCrediblePositions(m.Stats.CredibleCovT, m.Alleles[a])
	credB := CountCrediblePositions(m.Stats.CredibleCovT, m.Alleles[b])
	lenA, lenB := alleleLength(m.Alleles[a]), alleleLength(m.Alleles[b])

	ll := m.Stats.PoissonHalfDepth.Prob(covA) + m.Stats.PoissonHalfDepth.Prob(covB) +
		float64(credA)*m.Stats.LogNoZeroHalfDepth + float64(lenA-credA)*m.Stats.LogMeanPBError +
		float64(credB)*m.Stats.LogNoZeroHalfDepth + float64(lenB-credB)*m.Stats.LogMeanPBError
	return ll, true
}

type candidate struct {
	genotype []int
	ll       float64
}

func genotypeKey(genotype []int) string {
	parts := make([]string, len(genotype))
	for i, g := range genotype {
		parts[i] = strconv.Itoa(g)
	}
	return strings.Join(parts, "/")
}

// ParseGenotypeKey decodes a "/"-joined Likelihoods key (e.g. "0/2") back
// into its allele-index slice, for callers (e.g. ioformats) that render the
// likelihoods map as structured output rather than a string key.
func ParseGenotypeKey(key string) ([]int, error) {
	parts := strings.Split(key, "/")
	out := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("genotype: malformed genotype key %q: %w", key, err)
		}
		out[i] = n
	}
	return out, nil
}

// CallGenotype builds every haploid (and, for diploid ploidy, homozygous/
// heterozygous) candidate, picks the maximum likelihood, nulls the call if
// total coverage is zero or the maximum isn't a strict winner, and rescales
// the winning indices.
func (m *Model) CallGenotype() Call {
	likelihoods := make(map[string]float64)
	if m.TotalCoverage == 0 {
		return Call{Likelihoods: likelihoods}
	}

	var candidates []candidate
	for a := range m.Alleles {
		candidates = append(candidates, candidate{genotype: []int{a}, ll: m.haploidLogLikelihood(a)})
	}
	if m.Ploidy == Diploid {
		for a := range m.Alleles {
			candidates = append(candidates, candidate{genotype: []int{a, a}, ll: m.homozygousLogLikelihood(a)})
		}
		for a := 0; a < len(m.Alleles); a++ {
			for b := a + 1; b < len(m.Alleles); b++ {
				if ll, ok := m.heterozygousLogLikelihood(a, b); ok {
					candidates = append(candidates, candidate{genotype: []int{a, b}, ll: ll})
				}
			}
		}
	}

	sort.Slice(candidates, func(i, j int) bool { return candidates[i].ll > candidates[j].ll })
	for _, c := range candidates {
		likelihoods[genotypeKey(c.genotype)] = c.ll
	}

	if len(candidates) == 0 {
		return Call{Likelihoods: likelihoods}
	}
	top := candidates[0]
	if len(candidates) > 1 && candidates[1].ll >= top.ll {
		return Call{Likelihoods: likelihoods} // no strict maximum: null call
	}

	return Call{
		RawGenotype: top.genotype,
		Genotype:    RescaleGenotypes(top.genotype),
		Likelihoods: likelihoods,
		Confidence:  confidenceOf(candidates),
	}
}

func confidenceOf(candidates []candidate) float64 {
	if len(candidates) < 2 {
		return 0
	}
	return candidates[0].ll - candidates[1].ll
}

// RescaleGenotypes expresses genotype indices relative to the set of
// distinct alleles actually called, e.g. {0,2,4} -> {0,1,2}.
func RescaleGenotypes(genotype []int) []int {
	seen := make(map[int]bool, len(genotype))
	uniq := make([]int, 0, len(genotype))
	for _, g := range genotype {
		if !seen[g] {
			seen[g] = true
			uniq = append(uniq, g)
		}
	}
	sort.Ints(uniq)
	rank := make(map[int]int, len(uniq))
	for i, id := range uniq {
		rank[id] = i
	}
	out := make([]int, len(genotype))
	for i, g := range genotype {
		out[i] = rank[g]
	}
	return out
}
