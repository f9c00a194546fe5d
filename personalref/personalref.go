// Package personalref walks a genotyped coverage graph to assemble one
// sequence per haploid copy of a personalised reference: at
// each bubble, splice the called allele's sequence into every copy; at
// plain sequence nodes, append to all copies; then deduplicate identical
// copies before writing FASTA.
package personalref

import (
	"fmt"

	"github.com/biographs/quasimap/covgraph"
	"github.com/biographs/quasimap/gerrors"
	"github.com/biographs/quasimap/genotype"
	"github.com/biographs/quasimap/prg"
)

// Ploidy infers the sample ploidy from a completed genotype call set: every
// called (non-null) site must agree on how many allele copies it reports,
// since that count is how many personalised-reference sequences this walk
// produces. Null-genotyped sites (RawGenotype == nil) don't constrain it.
func Ploidy(calls map[prg.Marker]genotype.Call) (int, error) {
	ploidy := 0
	for site, call := range calls {
		if call.RawGenotype == nil {
			continue
		}
		n := len(call.RawGenotype)
		if ploidy == 0 {
			ploidy = n
			continue
		}
		if ploidy != n {
			return 0, gerrors.InconsistentPloidy("site %d calls %d allele copies, but an earlier site called %d", site, n, ploidy)
		}
	}
	if ploidy == 0 {
		ploidy = 1
	}
	return ploidy, nil
}

// Build walks g once per haploid copy, choosing at each bubble the allele
// RawGenotype[copy] names (or allele 0 — the graph's first/reference path —
// for a null-genotyped site, since there's no called allele to prefer).
// It returns one byte sequence per copy, in copy order.
func Build(g *covgraph.Graph, calls map[prg.Marker]genotype.Call) ([][]byte, error) {
	ploidy, err := Ploidy(calls)
	if err != nil {
		return nil, err
	}
	out := make([][]byte, ploidy)
	for c := 0; c < ploidy; c++ {
		var buf []byte
		if err := appendSpan(g, g.Root, g.Sink, calls, c, &buf); err != nil {
			return nil, err
		}
		out[c] = buf
	}
	return out, nil
}

// appendSpan walks from start to stop (exclusive of stop), appending every
// sequence node's bases to buf and recursing into any bubble it passes
// through to follow only the called allele's sub-path.
func appendSpan(g *covgraph.Graph, start, stop covgraph.NodeID, calls map[prg.Marker]genotype.Call, copyIdx int, buf *[]byte) error {
	cur := start
	for cur != stop {
		n := &g.Nodes[cur]
		if n.HasSequence() {
			*buf = append(*buf, n.Sequence...)
		}
		if exit, isEntry := g.BubbleMap[cur]; isEntry {
			if len(n.Edges) == 0 {
				return fmt.Errorf("personalref: site %d entry has no outgoing alleles", n.SiteID)
			}
			allele := calledAllele(calls[n.SiteID], copyIdx, len(n.Edges))
			if err := appendSpan(g, n.Edges[allele], exit, calls, copyIdx, buf); err != nil {
				return err
			}
			cur = exit
			continue
		}
		if len(n.Edges) == 0 {
			return fmt.Errorf("personalref: walk fell off the graph before reaching the expected stop node")
		}
		cur = n.Edges[0]
	}
	return nil
}

// calledAllele picks the 0-indexed allele (into AllelePaths' ordering, i.e.
// entry.Edges) a site's copyIdx-th haplotype should take: RawGenotype[copyIdx]
// for a called site, clamped to copyIdx==0 for a haploid call used while
// building more than one copy, or allele 0 (the reference path) for a
// null-genotyped site.
func calledAllele(call genotype.Call, copyIdx, numAlleles int) int {
	if call.RawGenotype == nil {
		return 0
	}
	idx := copyIdx
	if idx >= len(call.RawGenotype) {
		idx = len(call.RawGenotype) - 1
	}
	allele := call.RawGenotype[idx]
	if allele < 0 || allele >= numAlleles {
		return 0
	}
	return allele
}

// Dedup returns the distinct sequences among copies, preserving first-seen
// order (e.g. a homozygous call makes both copies equal).
func Dedup(copies [][]byte) [][]byte {
	seen := make(map[string]bool, len(copies))
	out := make([][]byte, 0, len(copies))
	for _, c := range copies {
		key := string(c)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, c)
	}
	return out
}
