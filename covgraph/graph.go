// Package covgraph builds the coverage graph from a validated PRG string: a
// directed graph of sequence nodes and site-boundary nodes, one bubble per
// variant site, with nesting resolved through a parent-locus map.
//
// Nodes live in a flat arena and are addressed by index (NodeID) rather than
// shared pointers, so bubble_map/par_map/random_access are plain index maps
// and the graph has no reference cycles to manage.
package covgraph

import (
	"sync/atomic"

	"github.com/biographs/quasimap/prg"
)

// NodeID addresses a Node within a Graph's arena. NilNode marks "no node".
type NodeID int32

const NilNode NodeID = -1

// Locus names a (site, allele) pair the builder is currently inside; the
// zero value (0, 0) means "outside any site".
type Locus struct {
	SiteID   prg.Marker
	AlleleID int
}

var outsideLocus = Locus{}

// Node is either a sequence node (Sequence non-empty, IsBoundary false) or a
// site-boundary node (Sequence empty, IsBoundary true, marking a site's
// entry or exit).
type Node struct {
	Pos        int
	SiteID     prg.Marker
	AlleleID   int
	Sequence   []byte
	Coverage   []uint32 // per-base coverage, parallel to Sequence
	IsBoundary bool
	Edges      []NodeID
}

// HasSequence reports whether n carries at least one base.
func (n *Node) HasSequence() bool { return len(n.Sequence) > 0 }

// AddCoverage atomically increments the per-base coverage counter at offset,
// the update granularity required by quasimap's concurrent readers.
func (n *Node) AddCoverage(offset int) {
	atomic.AddUint32(&n.Coverage[offset], 1)
}

// Access names the node, and offset within its sequence, addressed by a
// linear PRG position.
type Access struct {
	Node   NodeID
	Offset int
}

// Graph is the immutable (post-build) coverage graph. The only mutable state
// after construction is Node.Coverage, updated atomically per read.
type Graph struct {
	Nodes        []Node
	Root         NodeID
	Sink         NodeID
	BubbleMap    map[NodeID]NodeID    // site entry -> matching exit
	BubbleStarts map[prg.Marker]NodeID // site_id -> entry
	BubbleEnds   map[prg.Marker]NodeID // site_id -> exit
	ParMap       map[prg.Marker]Locus  // site_id -> parent locus
	RandomAccess []Access              // linear PRG position -> (node, offset)

	// SiteEndPositions maps each even marker to its final occurrence in the
	// linear PRG, the position where the site exits back to its parent
	// context; earlier occurrences are allele separators.
	SiteEndPositions map[prg.Marker]int

	// MaskA maps a linear PRG position to the allele id of the locus that
	// position's symbol belongs to (0 outside any site). It is built
	// directly from the left-to-right locus walk the builder already
	// performs, and is distinct from RandomAccess: RandomAccess maps a
	// position to the *node* covering it (a boundary node at a marker,
	// whose own AlleleID is meaningless), while MaskA records the allele
	// that was active up to that exact position, which is the value
	// backward search needs when it crosses a marker.
	MaskA []int
}

func (g *Graph) node(id NodeID) *Node { return &g.Nodes[id] }

// AlleleIDAt returns the mask_a allele id recorded for linear PRG position
// pos (0 if pos lies outside every site). Backward search uses this to
// label a branch entering or leaving an allele when it crosses a marker.
func (g *Graph) AlleleIDAt(pos int) int {
	return g.MaskA[pos]
}

// Walk invokes visit for each node on the path from Root that follows every
// node's first edge (Edges[0]), starting at Root. Nodes reachable only
// through a later edge (e.g. a bubble's second and further alleles) are not
// visited. It stops early if visit returns false.
func (g *Graph) Walk(visit func(id NodeID, n *Node) bool) {
	cur := g.Root
	for {
		n := g.node(cur)
		if !visit(cur, n) {
			return
		}
		if len(n.Edges) == 0 {
			return
		}
		cur = n.Edges[0]
	}
}

// builder runs the single left-to-right construction pass over the linear
// PRG, classifying each symbol as sequence, site entry, allele end, or site
// end, and wiring nodes as it goes.
type builder struct {
	g            Graph
	linear       []prg.Marker
	endPositions map[prg.Marker]int

	curNode  NodeID
	backWire NodeID
	curLocus Locus
	curPos   int
}

// Build runs the coverage-graph construction pass over p.
func Build(p *prg.String) *Graph {
	b := &builder{
		linear:       p.Linear,
		endPositions: p.EndPositions,
		g: Graph{
			BubbleMap:        make(map[NodeID]NodeID),
			BubbleStarts:     make(map[prg.Marker]NodeID),
			BubbleEnds:       make(map[prg.Marker]NodeID),
			ParMap:           make(map[prg.Marker]Locus),
			RandomAccess:     make([]Access, len(p.Linear)),
			MaskA:            make([]int, len(p.Linear)),
			SiteEndPositions: p.EndPositions,
		},
	}
	b.makeRoot()
	for pos := range b.linear {
		b.processMarker(pos)
	}
	b.makeSink()
	return &b.g
}

func (b *builder) newNode(pos int, siteID prg.Marker, alleleID int) NodeID {
	b.g.Nodes = append(b.g.Nodes, Node{Pos: pos, SiteID: siteID, AlleleID: alleleID})
	return NodeID(len(b.g.Nodes) - 1)
}

func (b *builder) makeRoot() {
	b.curPos = -1
	b.g.Root = b.newNode(b.curPos, 0, 0)
	b.backWire = b.g.Root
	b.curPos++
	b.curNode = b.newNode(b.curPos, 0, 0)
}

func (b *builder) makeSink() {
	sink := b.newNode(b.curPos+1, 0, 0)
	b.wire(sink)
	b.g.Sink = sink
}

type markerType int

const (
	markerSequence markerType = iota
	markerSiteEntry
	markerAlleleEnd
	markerSiteEnd
)

func (b *builder) markerTypeAt(pos int) markerType {
	m := b.linear[pos]
	if !prg.IsMarker(m) {
		return markerSequence
	}
	if m%2 == 1 {
		return markerSiteEntry
	}
	end := b.endPositions[m]
	if pos < end {
		return markerAlleleEnd
	}
	return markerSiteEnd
}

func (b *builder) processMarker(pos int) {
	m := b.linear[pos]
	t := b.markerTypeAt(pos)

	// mask_a[pos] is the allele active up to (but not including) this
	// position: for a sequence base, the allele it belongs to; for a
	// marker, the allele of the text immediately to its left — exactly
	// what continuing a backward search past this position will match
	// against next. Captured before the handlers below mutate curLocus.
	b.g.MaskA[pos] = b.curLocus.AlleleID

	switch t {
	case markerSequence:
		b.addSequence(m)
	case markerSiteEntry:
		b.enterSite(m)
	case markerAlleleEnd:
		b.endAllele(m)
	case markerSiteEnd:
		b.exitSite(m)
	}

	var target NodeID
	if t == markerSequence {
		target = b.curNode
	} else {
		target = b.backWire
	}
	n := b.g.node(target)
	size := len(n.Sequence)
	if size <= 1 {
		b.g.RandomAccess[pos] = Access{Node: target, Offset: 0}
	} else {
		b.g.RandomAccess[pos] = Access{Node: target, Offset: size - 1}
	}
}

func (b *builder) addSequence(m prg.Marker) {
	n := b.g.node(b.curNode)
	n.Sequence = append(n.Sequence, prg.DecodeBase(m))
	n.Coverage = append(n.Coverage, 0)
	b.curPos++
}

func (b *builder) wire(target NodeID) {
	back := b.g.node(b.backWire)
	cur := b.g.node(b.curNode)
	if cur.HasSequence() {
		back.Edges = append(back.Edges, b.curNode)
		cur.Edges = append(cur.Edges, target)
	} else {
		back.Edges = append(back.Edges, target)
	}
}

func (b *builder) enterSite(m prg.Marker) {
	entry := b.newNode(b.curPos, m, 0)
	b.g.node(entry).IsBoundary = true
	b.wire(entry)

	exit := b.newNode(b.curPos, m, 0)
	b.g.node(exit).IsBoundary = true

	b.g.BubbleMap[entry] = exit
	b.g.BubbleStarts[m] = entry
	b.g.BubbleEnds[m] = exit

	if b.curLocus != outsideLocus {
		b.g.ParMap[m] = b.curLocus
	}

	b.curNode = b.newNode(b.curPos, m, 1)
	b.backWire = entry
	b.curLocus = Locus{SiteID: m, AlleleID: 1}
}

// reachAlleleEnd wires the current allele's end into the site's exit node,
// widening the exit's recorded position to the largest allele end seen.
func (b *builder) reachAlleleEnd(m prg.Marker) NodeID {
	siteID := prg.SiteIDOf(m)
	exit := b.g.BubbleEnds[siteID]
	b.wire(exit)
	if ex := b.g.node(exit); ex.Pos < b.curPos {
		ex.Pos = b.curPos
	}
	return exit
}

func (b *builder) endAllele(m prg.Marker) {
	siteID := prg.SiteIDOf(m)
	b.reachAlleleEnd(m)

	entry := b.g.BubbleStarts[siteID]
	b.backWire = entry
	b.curPos = b.g.node(entry).Pos

	b.curLocus.AlleleID++
	b.curNode = b.newNode(b.curPos, siteID, b.curLocus.AlleleID)
}

func (b *builder) exitSite(m prg.Marker) {
	siteID := prg.SiteIDOf(m)
	exit := b.reachAlleleEnd(m)

	if parent, ok := b.g.ParMap[siteID]; ok {
		b.curLocus = parent
	} else {
		b.curLocus = outsideLocus
	}

	b.backWire = exit
	b.curPos = b.g.node(exit).Pos
	b.curNode = b.newNode(b.curPos, b.curLocus.SiteID, b.curLocus.AlleleID)
}
