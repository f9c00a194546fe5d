package ioformats

import (
	"encoding/json"
	"io"
	"sort"

	"github.com/biographs/quasimap/covgraph"
	"github.com/biographs/quasimap/genotype"
	"github.com/biographs/quasimap/prg"
	"github.com/biographs/quasimap/quasimap"
)

// likelihoodEntry is one ([genotype indices], log-likelihood) pair of a
// record's likelihoods field.
type likelihoodEntry struct {
	Genotype []int   `json:"genotype"`
	LogLik   float64 `json:"ll"`
}

// GenotypeRecord is the per-site JSON output record: GT (null if the
// site was null-genotyped), the full evaluated-likelihood table, calling
// confidence, the allele coverage the call was computed from, and each
// allele's sequence and haplogroup id.
type GenotypeRecord struct {
	GT          []int             `json:"GT"`
	Likelihoods []likelihoodEntry `json:"likelihoods"`
	Confidence  float64           `json:"confidence"`
	Covs        []float64         `json:"covs"`
	Alleles     []string          `json:"alleles"`
	Haplogroups []int             `json:"haplogroups"`
}

// BuildRecord assembles one site's GenotypeRecord from its Call, the allele
// paths the genotyper evaluated, and the grouped allele counts it was
// called from (used to recompute Covs, since Call doesn't carry it
// directly).
func BuildRecord(call genotype.Call, alleles []covgraph.AllelePath, gpCounts map[string]int) (GenotypeRecord, error) {
	rezeroed, err := genotype.RezeroGroupCounts(gpCounts)
	if err != nil {
		return GenotypeRecord{}, err
	}
	haploid, _, err := genotype.SetHaploidCoverages(rezeroed, len(alleles))
	if err != nil {
		return GenotypeRecord{}, err
	}

	seqs := make([]string, len(alleles))
	haplogroups := make([]int, len(alleles))
	for i, a := range alleles {
		seqs[i] = string(a.Sequence)
		haplogroups[i] = i
	}

	keys := make([]string, 0, len(call.Likelihoods))
	for k := range call.Likelihoods {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return call.Likelihoods[keys[i]] > call.Likelihoods[keys[j]] })

	entries := make([]likelihoodEntry, 0, len(keys))
	for _, k := range keys {
		genotypeIdx, err := genotype.ParseGenotypeKey(k)
		if err != nil {
			return GenotypeRecord{}, err
		}
		entries = append(entries, likelihoodEntry{Genotype: genotypeIdx, LogLik: call.Likelihoods[k]})
	}

	return GenotypeRecord{
		GT:          call.Genotype,
		Likelihoods: entries,
		Confidence:  call.Confidence,
		Covs:        []float64(haploid),
		Alleles:     seqs,
		Haplogroups: haplogroups,
	}, nil
}

// WriteGenotypes emits one GenotypeRecord per bubble, in ascending genomic
// position, as a JSON array.
func WriteGenotypes(w io.Writer, g *covgraph.Graph, groups quasimap.SiteGroups, calls map[prg.Marker]genotype.Call) error {
	sites := g.SitesByPosition()
	records := make([]GenotypeRecord, 0, len(sites))
	for _, entry := range sites {
		siteID := g.Nodes[entry].SiteID
		alleles := g.AllelePaths(entry)
		rec, err := BuildRecord(calls[siteID], alleles, groups[siteID])
		if err != nil {
			return err
		}
		records = append(records, rec)
	}
	enc := json.NewEncoder(w)
	return enc.Encode(records)
}
