package genotype_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/biographs/quasimap/covgraph"
	"github.com/biographs/quasimap/genotype"
)

func TestSetHaploidCoveragesGivenSingletonCountsOnly(t *testing.T) {
	gpCounts := map[string]int{"0": 5, "1": 10, "3": 1}

	haploid, singleton, err := genotype.SetHaploidCoverages(gpCounts, 4)
	assert.NoError(t, err)

	expected := genotype.PerAlleleCoverage{5, 10, 0, 1}
	assert.Equal(t, expected, haploid)
	assert.Equal(t, expected, singleton)
}

func TestSetHaploidCoveragesGivenMultiAllelicClasses(t *testing.T) {
	gpCounts := map[string]int{"0": 5, "0,1": 4, "1": 10, "2,3": 1}

	haploid, singleton, err := genotype.SetHaploidCoverages(gpCounts, 4)
	assert.NoError(t, err)

	assert.Equal(t, genotype.PerAlleleCoverage{9, 14, 1, 1}, haploid)
	assert.Equal(t, genotype.PerAlleleCoverage{5, 10, 0, 0}, singleton)
}

func TestComputeDiploidCoverageDispatchesSharedCountsByUniqueRatio(t *testing.T) {
	gpCounts := map[string]int{"0": 7, "0,1": 4, "1": 20, "0,3": 3, "2,3": 1}

	cov0, cov1, err := genotype.ComputeDiploidCoverage(gpCounts, [2]int{0, 1}, false)
	assert.NoError(t, err)

	assert.InDelta(t, 10+4/3., cov0, 1e-9)
	assert.InDelta(t, 20+8/3., cov1, 1e-9)
}

func TestComputeDiploidCoverageSplitsEquallyWhenBothSingletonsZero(t *testing.T) {
	gpCounts := map[string]int{"0,1": 3, "2,3": 1}

	cov0, cov1, err := genotype.ComputeDiploidCoverage(gpCounts, [2]int{0, 1}, false)
	assert.NoError(t, err)

	assert.InDelta(t, 1.5, cov0, 1e-9)
	assert.InDelta(t, 1.5, cov1, 1e-9)
}

func TestCountCrediblePositions(t *testing.T) {
	allele := covgraph.AllelePath{
		Sequence: []byte("ATCGCCG"),
		Coverage: []uint32{0, 0, 2, 3, 3, 5, 4},
	}

	n := genotype.CountCrediblePositions(3, allele)
	assert.Equal(t, 4, n)
}

func TestRescaleGenotypesMapsToCalledSetRank(t *testing.T) {
	assert.Equal(t, []int{0, 1, 2}, genotype.RescaleGenotypes([]int{0, 2, 4}))
	assert.Equal(t, []int{0, 0}, genotype.RescaleGenotypes([]int{3, 3}))
}

func TestCallGenotypeNullsWhenTotalCoverageIsZero(t *testing.T) {
	alleles := []covgraph.AllelePath{
		{Sequence: []byte("A"), Coverage: []uint32{0}},
		{Sequence: []byte("C"), Coverage: []uint32{0}},
	}
	stats := genotype.NewLikelihoodStats(10, 0.01, 3)

	m, err := genotype.NewModel(alleles, map[string]int{}, genotype.Haploid, stats, nil)
	assert.NoError(t, err)

	call := m.CallGenotype()
	assert.Nil(t, call.RawGenotype)
}

func TestCallGenotypeHaploidPicksHighestCoverageAllele(t *testing.T) {
	alleles := []covgraph.AllelePath{
		{Sequence: []byte("AAAAAAAAAA"), Coverage: []uint32{10, 10, 10, 10, 10, 10, 10, 10, 10, 10}},
		{Sequence: []byte("CCCCCCCCCC"), Coverage: []uint32{0, 0, 0, 0, 0, 0, 0, 0, 0, 0}},
	}
	stats := genotype.NewLikelihoodStats(10, 0.01, 3)

	m, err := genotype.NewModel(alleles, map[string]int{"0": 10}, genotype.Haploid, stats, nil)
	assert.NoError(t, err)

	call := m.CallGenotype()
	assert.Equal(t, []int{0}, call.RawGenotype)
	assert.Equal(t, []int{0}, call.Genotype)
	assert.Greater(t, call.Confidence, 0.0)
}

func TestCallGenotypeHeterozygousRequiresSingletonCoverageOnBothAlleles(t *testing.T) {
	alleles := []covgraph.AllelePath{
		{Sequence: []byte("A"), Coverage: []uint32{5}},
		{Sequence: []byte("C"), Coverage: []uint32{5}},
	}
	stats := genotype.NewLikelihoodStats(10, 0.01, 3)

	// All coverage is multi-allelic: no pair qualifies for a heterozygous
	// hypothesis; homozygous/haploid candidates still compete normally.
	m, err := genotype.NewModel(alleles, map[string]int{"0,1": 10}, genotype.Diploid, stats, nil)
	assert.NoError(t, err)

	call := m.CallGenotype()
	_, hasHeterozygousPair := call.Likelihoods["0/1"]
	assert.False(t, hasHeterozygousPair)
}

// TestRezeroGroupCountsConvertsBuilderAllelesAndDropsOutsideSentinel
// exercises the hand-off between the builder's 1-indexed allele ids (what
// search.SiteCrossing.Alleles and quasimap.SiteGroups carry) and the
// 0-indexed ids NewModel/SetHaploidCoverages key their allele slice by.
func TestRezeroGroupCountsConvertsBuilderAllelesAndDropsOutsideSentinel(t *testing.T) {
	gpCounts := map[string]int{
		"1":   7, // singleton crossing of allele 1 -> allele index 0
		"2,3": 2, // shared crossing of alleles 2 and 3 -> indices 1 and 2
		"0":   4, // outside-site sentinel only: dropped
		"0,2": 3, // one real allele (2 -> index 1) plus the sentinel
	}

	got, err := genotype.RezeroGroupCounts(gpCounts)
	assert.NoError(t, err)

	assert.Equal(t, map[string]int{
		"0":   7,
		"1,2": 2,
		"1":   3,
	}, got)
}
