package covgraph

import (
	"sort"

	"github.com/biogo/store/llrb"

	"github.com/biographs/quasimap/prg"
)

// AllelePath is one allele's flattened sequence and per-base coverage, read
// directly off the coverage-graph nodes that make up its path from a site's
// entry to its exit.
type AllelePath struct {
	AlleleID int
	Sequence []byte
	Coverage []uint32
}

// AllelePaths walks every outgoing branch of entry (one per allele) up to
// the site's exit node, accumulating the sequence and per-base coverage
// along the way.
//
// A branch that passes through a nested site's entry/exit boundary nodes
// follows that nested site's first allele as the representative path: the
// nested site is genotyped independently, and this parent-level walk only
// needs *a* concrete sequence/coverage to hand the genotyper, not every
// nested combination.
func (g *Graph) AllelePaths(entry NodeID) []AllelePath {
	exit := g.BubbleMap[entry]
	entryNode := g.node(entry)
	paths := make([]AllelePath, 0, len(entryNode.Edges))
	for i, start := range entryNode.Edges {
		var seq []byte
		var cov []uint32
		cur := start
		for cur != exit {
			n := g.node(cur)
			if n.HasSequence() {
				seq = append(seq, n.Sequence...)
				cov = append(cov, n.Coverage...)
			}
			if len(n.Edges) == 0 {
				break // reached the graph sink without passing through exit; malformed graph
			}
			cur = n.Edges[0]
		}
		paths = append(paths, AllelePath{AlleleID: i + 1, Sequence: seq, Coverage: cov})
	}
	return paths
}

// siteRank orders sites for outermost-first traversal: ascending nesting
// depth, then ascending position, then site ID to break exact ties.
type siteRank struct {
	depth  int
	pos    int
	siteID prg.Marker
	entry  NodeID
}

func (r siteRank) Compare(other llrb.Comparable) int {
	o := other.(siteRank)
	switch {
	case r.depth != o.depth:
		return r.depth - o.depth
	case r.pos != o.pos:
		return r.pos - o.pos
	default:
		return int(r.siteID) - int(o.siteID)
	}
}

func (g *Graph) depthOf(siteID prg.Marker, memo map[prg.Marker]int) int {
	if d, ok := memo[siteID]; ok {
		return d
	}
	parent, ok := g.ParMap[siteID]
	if !ok || parent == outsideLocus {
		memo[siteID] = 0
		return 0
	}
	d := 1 + g.depthOf(parent.SiteID, memo)
	memo[siteID] = d
	return d
}

// SitesOutermostFirst returns every bubble's entry NodeID, ordered so that a
// site's parent always precedes it (outermost bubbles first), as required
// by the level-genotyper's traversal order.
func (g *Graph) SitesOutermostFirst() []NodeID {
	depthMemo := make(map[prg.Marker]int, len(g.BubbleStarts))
	tree := &llrb.Tree{}
	for siteID, entry := range g.BubbleStarts {
		tree.Insert(siteRank{
			depth:  g.depthOf(siteID, depthMemo),
			pos:    g.node(entry).Pos,
			siteID: siteID,
			entry:  entry,
		})
	}
	order := make([]NodeID, 0, len(g.BubbleStarts))
	tree.Do(func(c llrb.Comparable) bool {
		order = append(order, c.(siteRank).entry)
		return false
	})
	return order
}

// SitesByPosition returns every bubble's entry NodeID in ascending genomic
// (linear PRG) position, for callers that emit one record per site in
// reference order rather than the genotyper's outermost-first order.
func (g *Graph) SitesByPosition() []NodeID {
	order := make([]NodeID, 0, len(g.BubbleStarts))
	for _, entry := range g.BubbleStarts {
		order = append(order, entry)
	}
	sort.Slice(order, func(i, j int) bool { return g.node(order[i]).Pos < g.node(order[j]).Pos })
	return order
}

// ParentAllele returns the (site, allele) a nested site is inside, and
// whether siteID is nested at all.
func (g *Graph) ParentAllele(siteID prg.Marker) (Locus, bool) {
	l, ok := g.ParMap[siteID]
	return l, ok
}
