// Package simulate samples a uniformly random genotype per bubble instead
// of computing likelihoods from read coverage, reusing genotype.Call as the
// result shape so downstream JSON emission (ioformats) and personalised-
// reference assembly (personalref) don't need a parallel code path.
package simulate

import (
	"math/rand"

	"github.com/biographs/quasimap/covgraph"
	"github.com/biographs/quasimap/genotype"
	"github.com/biographs/quasimap/prg"
)

// GenotypeAll draws a uniformly random allele index per haploid copy at
// every bubble in g, independent of any real read coverage. ploidy controls
// how many allele-index copies each site's genotype carries (1 for
// Haploid, 2 for Diploid). Likelihoods and confidence are left zero since
// no likelihood model is evaluated.
func GenotypeAll(g *covgraph.Graph, ploidy genotype.Ploidy, rng *rand.Rand) map[prg.Marker]genotype.Call {
	copies := 1
	if ploidy == genotype.Diploid {
		copies = 2
	}

	calls := make(map[prg.Marker]genotype.Call)
	for _, entry := range g.SitesOutermostFirst() {
		siteID := g.Nodes[entry].SiteID
		numAlleles := len(g.AllelePaths(entry))
		if numAlleles == 0 {
			calls[siteID] = genotype.Call{}
			continue
		}

		raw := make([]int, copies)
		for i := range raw {
			raw[i] = rng.Intn(numAlleles)
		}
		calls[siteID] = genotype.Call{
			RawGenotype: raw,
			Genotype:    genotype.RescaleGenotypes(raw),
			Likelihoods: map[string]float64{},
		}
	}
	return calls
}
