package genotype

import (
	"github.com/biographs/quasimap/covgraph"
	"github.com/biographs/quasimap/quasimap"
)

// CountTotalCoverage sums every grouped-allele-count entry at a site.
func CountTotalCoverage(gpCounts map[string]int) int {
	total := 0
	for _, n := range gpCounts {
		total += n
	}
	return total
}

// SetHaploidCoverages computes per-allele haploid and singleton coverage
// from a site's grouped allele counts (keyed by allele-set, produced by
// quasimap.SiteGroups): haploid[a] sums every group containing a;
// singleton[a] is the count of the group {a} alone.
func SetHaploidCoverages(gpCounts map[string]int, numAlleles int) (haploid, singleton PerAlleleCoverage, err error) {
	haploid = make(PerAlleleCoverage, numAlleles)
	singleton = make(PerAlleleCoverage, numAlleles)
	for key, count := range gpCounts {
		ids, perr := quasimap.FormatGroupKey(key)
		if perr != nil {
			return nil, nil, perr
		}
		for _, id := range ids {
			haploid[id] += float64(count)
		}
		if len(ids) == 1 {
			singleton[ids[0]] += float64(count)
		}
	}
	return haploid, singleton, nil
}

// AssignCoverageToEmptyAlleles gives every empty-sequence allele (a direct
// deletion) one synthetic position of coverage, equal to its already-
// computed haploid coverage, so CountCrediblePositions has something to
// threshold against for alleles with no real bases.
func AssignCoverageToEmptyAlleles(alleles []covgraph.AllelePath, haploid PerAlleleCoverage) {
	for i := range alleles {
		if len(alleles[i].Sequence) == 0 && len(alleles[i].Coverage) == 0 {
			alleles[i].Coverage = []uint32{uint32(haploid[i])}
		}
	}
}

// CountCrediblePositions counts positions in allele whose coverage is at
// least credibleCovT: the coverage level above which true (non-error)
// coverage is more likely than sequencing-error coverage.
func CountCrediblePositions(credibleCovT uint32, allele covgraph.AllelePath) int {
	n := 0
	for _, c := range allele.Coverage {
		if c >= credibleCovT {
			n++
		}
	}
	return n
}

func alleleLength(allele covgraph.AllelePath) int {
	if len(allele.Sequence) > 0 {
		return len(allele.Sequence)
	}
	return len(allele.Coverage)
}

func containsID(ids []int, id int) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// ComputeDiploidCoverage dispatches a site's grouped allele counts onto a
// pair of allele ids. When the pair shares a haplogroup (two nested
// representations of the same underlying copy), that haplogroup's total
// coverage is split evenly. Otherwise, coverage unique to one allele (any
// group containing it but not the other id, regardless of other members)
// counts fully toward it; coverage in any group containing both ids
// (regardless of other members) is dispatched in proportion to each allele's
// unique coverage, or split 1:1 when both are zero.
func ComputeDiploidCoverage(gpCounts map[string]int, ids [2]int, sameHaplogroup bool) (float64, float64, error) {
	if sameHaplogroup {
		var total float64
		for key, count := range gpCounts {
			parsed, err := quasimap.FormatGroupKey(key)
			if err != nil {
				return 0, 0, err
			}
			if containsID(parsed, ids[0]) || containsID(parsed, ids[1]) {
				total += float64(count)
			}
		}
		half := total / 2
		return half, half, nil
	}

	var unique0, unique1, shared float64
	for key, count := range gpCounts {
		parsed, err := quasimap.FormatGroupKey(key)
		if err != nil {
			return 0, 0, err
		}
		has0, has1 := containsID(parsed, ids[0]), containsID(parsed, ids[1])
		switch {
		case has0 && has1:
			shared += float64(count)
		case has0:
			unique0 += float64(count)
		case has1:
			unique1 += float64(count)
		}
	}

	if unique0 == 0 && unique1 == 0 {
		half := shared / 2
		return half, half, nil
	}
	ratio0 := unique0 / (unique0 + unique1)
	return unique0 + shared*ratio0, unique1 + shared*(1-ratio0), nil
}
