package genotype

import (
	"github.com/biographs/quasimap/covgraph"
	"github.com/biographs/quasimap/prg"
	"github.com/biographs/quasimap/quasimap"
)

// GenotypeAll runs the level-genotyper over every bubble in g, outermost
// first, dispatching each site's model.CallGenotype and
// invalidating (null-genotyping, without running a model) any nested bubble
// whose parent allele was not in the parent's called set.
func GenotypeAll(g *covgraph.Graph, groups map[prg.Marker]map[string]int, ploidy Ploidy, stats *LikelihoodStats) (map[prg.Marker]Call, error) {
	calls := make(map[prg.Marker]Call)
	invalidated := make(map[prg.Marker]bool)

	for _, entry := range g.SitesOutermostFirst() {
		siteID := g.Nodes[entry].SiteID

		if parent, ok := g.ParentAllele(siteID); ok {
			if invalidated[parent.SiteID] || !parentCalledAllele(calls[parent.SiteID], parent.AlleleID) {
				invalidated[siteID] = true
				calls[siteID] = Call{}
				continue
			}
		}

		alleles := g.AllelePaths(entry)
		gpCounts, err := RezeroGroupCounts(groups[siteID])
		if err != nil {
			return nil, err
		}
		m, err := NewModel(alleles, gpCounts, ploidy, stats, nil)
		if err != nil {
			return nil, err
		}
		calls[siteID] = m.CallGenotype()
	}
	return calls, nil
}

// RezeroGroupCounts rewrites a site's grouped allele counts from the
// builder's 1-indexed allele ids (covgraph.Locus.AlleleID, 0 reserved for
// "outside any site") to the 0-indexed ids Model and AllelePaths key their
// allele slice by. A stray 0 carries no allele of this site's own and is
// dropped rather than rezeroed.
func RezeroGroupCounts(counts map[string]int) (map[string]int, error) {
	out := make(map[string]int, len(counts))
	for key, n := range counts {
		ids, err := quasimap.FormatGroupKey(key)
		if err != nil {
			return nil, err
		}
		rezeroed := ids[:0]
		for _, id := range ids {
			if id == 0 {
				continue
			}
			rezeroed = append(rezeroed, id-1)
		}
		if len(rezeroed) == 0 {
			continue
		}
		out[quasimap.GroupKey(rezeroed)] += n
	}
	return out, nil
}

// parentCalledAllele reports whether parentCall's raw (pre-rescale) called
// genotype includes the allele covgraph's builder assigned alleleID (1-
// indexed), matching AllelePaths' own AlleleID = edge-index+1 convention.
func parentCalledAllele(parentCall Call, alleleID int) bool {
	for _, g := range parentCall.RawGenotype {
		if g == alleleID-1 {
			return true
		}
	}
	return false
}
