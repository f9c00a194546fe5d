package search

import (
	"github.com/biographs/quasimap/covgraph"
	"github.com/biographs/quasimap/fmindex"
	"github.com/biographs/quasimap/prg"
)

// Bundle groups the read-only inputs every search call shares: the FM-index
// and the coverage graph (for the allele-mask and site-end lookups). It is
// passed by reference to every call rather than held as process-wide state.
type Bundle struct {
	Index *fmindex.Index
	Graph *covgraph.Graph
}

// Run performs backward search of pattern (encoded bases, in left-to-right
// read order) starting from initial, consuming pattern right to left. Kmer
// precompute passes InitialState(idx.Size()) and caches Run's result as-is;
// quasimap passes a cached seed state and only the unseeded prefix of the
// read, then applies Finalize once the whole read has been consumed.
func Run(b *Bundle, pattern []prg.Base, initial []Branch) []Branch {
	branches := initial
	for i := len(pattern) - 1; i >= 0; i-- {
		branches = fanOut(b, branches)
		branches = extend(b, branches, pattern[i])
	}
	return branches
}

// Finalize applies the end-of-read rule: an Original branch is dropped once
// a FannedOut branch of the same lineage has survived to the end of the
// pattern, since that Original represents a non-variant match already
// redundant with the variant-crossing branches it spawned. Seed states must
// not be finalized — the kmer's Original branch is exactly what the rest of
// the read still needs to fan out from.
func Finalize(branches []Branch) []Branch {
	hasFannedOut := make(map[int]bool)
	for _, br := range branches {
		if br.Origin == FannedOut {
			hasFannedOut[br.Lineage] = true
		}
	}
	out := make([]Branch, 0, len(branches))
	for _, br := range branches {
		if br.Origin == Original && hasFannedOut[br.Lineage] {
			continue
		}
		out = append(out, br)
	}
	return out
}

// fanOut inspects every live branch for variant-marker occurrences in its
// interval and fans it out, one child per crossing, inserted after the
// parent so the parent's position in the list (and hence its
// identifiability as "the original") is preserved.
func fanOut(b *Bundle, branches []Branch) []Branch {
	out := make([]Branch, 0, len(branches))
	for _, parent := range branches {
		out = append(out, parent)
		if !parent.Live || parent.Interval.Empty() {
			continue
		}
		for _, sr := range b.Index.IntervalSymbols(parent.Interval.L, parent.Interval.R) {
			if !prg.IsMarker(sr.Symbol) {
				continue
			}
			first := b.Index.C(sr.Symbol)
			for row := first + sr.RankL; row < first+sr.RankR; row++ {
				out = appendMarkerChildren(b, out, parent, sr.Symbol, row)
			}
		}
	}
	return out
}

// appendMarkerChildren fans parent out across one crossed marker
// occurrence, whose text position is Sa(row). The linear text only records
// one adjacency per marker, so the child interval is chosen by what the
// graph connects there, not by a plain LF step:
//
//   - An odd (site entry) marker is crossed on the way out of the site's
//     first allele; the child resumes from the entry marker's row, whose
//     backward extension continues into the left flank.
//   - An allele separator (even, before its final occurrence) is crossed on
//     the way out of a later allele; in the graph that allele's predecessor
//     is the site entry, so the child also resumes from the entry marker's
//     row, recording the allele being left.
//   - A site-end marker (even, at its final occurrence) is crossed on the
//     way into the site from the right flank, where every allele is
//     reachable; one child per row of the even marker's block resumes from
//     that allele's last base, recording the allele being entered.
func appendMarkerChildren(b *Bundle, out []Branch, parent Branch, m prg.Marker, row int) []Branch {
	pos := b.Index.Sa(row)
	site := prg.SiteIDOf(m)

	if m%2 == 1 {
		child := childBranch(parent, Interval{L: row, R: row + 1})
		child.Sites = recordSite(child.Sites, site, 1)
		return append(out, child)
	}

	if pos != b.Graph.SiteEndPositions[m] {
		entryRow := b.Index.C(site)
		child := childBranch(parent, Interval{L: entryRow, R: entryRow + b.Index.Rank(site, b.Index.Size())})
		child.Sites = recordSite(child.Sites, site, b.Graph.AlleleIDAt(pos)+1)
		return append(out, child)
	}

	first := b.Index.C(m)
	total := b.Index.Rank(m, b.Index.Size())
	for j := first; j < first+total; j++ {
		child := childBranch(parent, Interval{L: j, R: j + 1})
		child.Sites = recordSite(child.Sites, site, b.Graph.AlleleIDAt(b.Index.Sa(j)))
		out = append(out, child)
	}
	return out
}

func childBranch(parent Branch, iv Interval) Branch {
	return Branch{
		Interval: iv,
		Sites:    cloneSites(parent.Sites),
		Live:     true,
		Origin:   FannedOut,
		Lineage:  parent.Lineage,
	}
}

// recordSite notes that a branch crossed site at allele. A branch entering
// and then leaving the same allele crosses two markers; the second crossing
// resolves to the allele already on record and is not duplicated.
func recordSite(sites []SiteCrossing, site prg.Marker, allele int) []SiteCrossing {
	for i := len(sites) - 1; i >= 0; i-- {
		if sites[i].Marker != site {
			continue
		}
		for _, a := range sites[i].Alleles {
			if a == allele {
				return sites
			}
		}
		sites[i].Alleles = append(sites[i].Alleles, allele)
		return sites
	}
	return append(sites, SiteCrossing{Marker: site, Alleles: []int{allele}})
}

// extend applies the base extension step to every branch, dropping any
// whose resulting interval is empty.
func extend(b *Bundle, branches []Branch, base prg.Base) []Branch {
	out := branches[:0]
	for _, br := range branches {
		if !br.Live {
			continue
		}
		l2 := b.Index.C(base) + b.Index.Rank(base, br.Interval.L)
		r2 := b.Index.C(base) + b.Index.Rank(base, br.Interval.R)
		if l2 >= r2 {
			continue
		}
		br.Interval = Interval{L: l2, R: r2}
		out = append(out, br)
	}
	return out
}

// OccursInReference reports whether any surviving branch is an Original
// branch, i.e. the pattern matches somewhere without crossing a variant
// site.
func OccursInReference(branches []Branch) bool {
	for _, br := range branches {
		if br.Origin == Original {
			return true
		}
	}
	return false
}
