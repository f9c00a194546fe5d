// Package ioformats renders quasimap/genotype results as JSON: per-site
// allele coverage, and per-site genotype calls. It also carries the plain
// JSON form of a site's grouped allele counts, the hand-off between the
// quasimap and genotype CLI subcommands.
package ioformats

import (
	"encoding/json"
	"io"
	"strconv"

	"github.com/biographs/quasimap/covgraph"
	"github.com/biographs/quasimap/genotype"
	"github.com/biographs/quasimap/prg"
	"github.com/biographs/quasimap/quasimap"
)

// WriteAlleleCoverage emits the allele-coverage JSON:
//
//	[[cov_a0_site0, cov_a1_site0, …], [cov_a0_site1, …], …]
//
// one row per bubble in ascending genomic position, each row the per-allele
// haploid coverage sum (no diploid dispatch — that's genotype-stage only).
func WriteAlleleCoverage(w io.Writer, g *covgraph.Graph, groups quasimap.SiteGroups) error {
	sites := g.SitesByPosition()
	rows := make([][]float64, 0, len(sites))
	for _, entry := range sites {
		siteID := g.Nodes[entry].SiteID
		numAlleles := len(g.AllelePaths(entry))
		rezeroed, err := genotype.RezeroGroupCounts(groups[siteID])
		if err != nil {
			return err
		}
		haploid, _, err := genotype.SetHaploidCoverages(rezeroed, numAlleles)
		if err != nil {
			return err
		}
		rows = append(rows, []float64(haploid))
	}
	enc := json.NewEncoder(w)
	return enc.Encode(rows)
}

// WriteGroups persists groups as plain JSON, the hand-off file between the
// quasimap and genotype CLI subcommands (quasimap produces gp_counts per
// site; genotype consumes them without re-running backward search).
//
// Keys are string-encoded site markers, since JSON object keys must be
// strings; ReadGroups reverses this.
func WriteGroups(w io.Writer, groups quasimap.SiteGroups) error {
	out := make(map[string]map[string]int, len(groups))
	for site, counts := range groups {
		out[jsonKey(site)] = counts
	}
	enc := json.NewEncoder(w)
	return enc.Encode(out)
}

// ReadGroups parses a file written by WriteGroups back into SiteGroups.
func ReadGroups(r io.Reader) (quasimap.SiteGroups, error) {
	var in map[string]map[string]int
	if err := json.NewDecoder(r).Decode(&in); err != nil {
		return nil, err
	}
	out := make(quasimap.SiteGroups, len(in))
	for key, counts := range in {
		site, err := parseJSONKey(key)
		if err != nil {
			return nil, err
		}
		out[site] = counts
	}
	return out, nil
}

func jsonKey(m prg.Marker) string {
	return strconv.FormatUint(uint64(m), 10)
}

func parseJSONKey(s string) (prg.Marker, error) {
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, err
	}
	return prg.Marker(n), nil
}
