package covgraph_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/biographs/quasimap/covgraph"
	"github.com/biographs/quasimap/prg"
)

// buildNested builds "7 A 8 5 C 6 G 6 8": site 7 (alleles "A", <nested site 5>)
// nested inside site 7's second allele, site 5 itself having alleles C, G.
func buildNested(t *testing.T) (*covgraph.Graph, prg.Marker, prg.Marker) {
	t.Helper()
	raw := []prg.Marker{7, 1, 8, 5, 2, 6, 3, 6, 8}
	p, err := prg.New(raw)
	assert.NoError(t, err)
	return covgraph.Build(p), 7, 5
}

func TestEveryBubbleEntryHasExactlyOneExitAtOrAfterItsPosition(t *testing.T) {
	g, outer, inner := buildNested(t)
	for _, siteID := range []prg.Marker{outer, inner} {
		entry, ok := g.BubbleStarts[siteID]
		assert.True(t, ok)
		exit, ok := g.BubbleEnds[siteID]
		assert.True(t, ok)
		assert.Equal(t, exit, g.BubbleMap[entry])
		entryPos := g.Nodes[entry].Pos
		exitPos := g.Nodes[exit].Pos
		assert.True(t, entryPos <= exitPos)
	}
}

func TestRandomAccessIsTotalOverEveryLinearPosition(t *testing.T) {
	g, _, _ := buildNested(t)
	assert.Len(t, g.RandomAccess, 9)
	for i, a := range g.RandomAccess {
		assert.True(t, a.Node >= 0, "position %d has no assigned node", i)
	}
}

func TestNestedSiteResolvesParentLocus(t *testing.T) {
	g, outer, inner := buildNested(t)
	parent, ok := g.ParentAllele(inner)
	assert.True(t, ok)
	assert.Equal(t, covgraph.Locus{SiteID: outer, AlleleID: 2}, parent)
}

func TestAllelePathsSplicesNestedSiteAsFirstAllele(t *testing.T) {
	g, outer, _ := buildNested(t)
	entry := g.BubbleStarts[outer]
	paths := g.AllelePaths(entry)
	assert.Len(t, paths, 2)
	assert.Equal(t, "A", string(paths[0].Sequence))
	// Allele 2 of site 7 is the nested site; its first allele ("C") is the
	// representative path.
	assert.Equal(t, "C", string(paths[1].Sequence))
}

func TestSitesOutermostFirstOrdersParentBeforeChild(t *testing.T) {
	g, outer, inner := buildNested(t)
	order := g.SitesOutermostFirst()
	assert.Len(t, order, 2)
	assert.Equal(t, outer, g.Nodes[order[0]].SiteID)
	assert.Equal(t, inner, g.Nodes[order[1]].SiteID)
}
