// Package fmindex builds the thin suffix-array/BWT contract that backward
// search runs over: size, bwt, rank, C, sa, and interval_symbols.
//
// This is a direct, unoptimised implementation: a comparison sort builds
// the suffix array, DNA symbol ranks are pre-tabulated as dense cumulative
// arrays, and marker ranks are served from a sorted per-marker position
// list rather than a real wavelet tree. The contract is small enough that
// a compressed-index library could be swapped in behind it without touching
// the search layer.
package fmindex

import (
	"sort"

	"github.com/biographs/quasimap/prg"
)

// SymbolRank is one entry of an interval_symbols() result: a distinct symbol
// occurring in BWT[l:r) together with its rank at both interval ends.
type SymbolRank struct {
	Symbol prg.Marker
	RankL  int
	RankR  int
}

// Index is the BWT of a linearised PRG plus its terminator, with the rank/
// select structures backward search needs.
type Index struct {
	text []prg.Marker // linear PRG with a trailing Terminator
	sa   []int32
	bwt  []prg.Marker

	// baseRank[c][i] = count of base c (0..4) in bwt[0:i). Dense
	// pre-tabulation, affordable for the small DNA alphabet.
	baseRank [5][]int32

	// markerPos[m] holds the sorted BWT positions at which marker m occurs,
	// so rank(m, i) is a binary search rather than a wavelet-tree descent.
	markerPos map[prg.Marker][]int32

	// cBase[c] / cMarkers[c] = number of symbols strictly less than c in the
	// whole text, for bases (and the terminator) and for markers respectively.
	cBase    [5]int
	cMarkers map[prg.Marker]int
}

// Build constructs the FM-index over linear (the coverage graph's source
// PRG), appending the sentinel terminator.
func Build(linear []prg.Marker) *Index {
	n := len(linear) + 1
	text := make([]prg.Marker, n)
	copy(text, linear)
	text[n-1] = prg.Terminator

	sa := make([]int32, n)
	for i := range sa {
		sa[i] = int32(i)
	}
	sort.Slice(sa, func(i, j int) bool {
		return lessSuffix(text, int(sa[i]), int(sa[j]))
	})

	bwt := make([]prg.Marker, n)
	for i, p := range sa {
		if p == 0 {
			bwt[i] = text[n-1]
		} else {
			bwt[i] = text[p-1]
		}
	}

	idx := &Index{
		text:      text,
		sa:        sa,
		bwt:       bwt,
		markerPos: make(map[prg.Marker][]int32),
		cMarkers:  make(map[prg.Marker]int),
	}
	idx.buildRanks()
	return idx
}

func lessSuffix(text []prg.Marker, i, j int) bool {
	for i < len(text) && j < len(text) {
		if text[i] != text[j] {
			return text[i] < text[j]
		}
		i++
		j++
	}
	return i == len(text)
}

func (idx *Index) buildRanks() {
	n := len(idx.bwt)
	for c := range idx.baseRank {
		idx.baseRank[c] = make([]int32, n+1)
	}
	counts := make(map[prg.Marker]int)
	for i, sym := range idx.bwt {
		counts[sym]++
		for c := 0; c < 5; c++ {
			idx.baseRank[c][i+1] = idx.baseRank[c][i]
		}
		if sym < 5 {
			idx.baseRank[sym][i+1]++
		} else {
			idx.markerPos[sym] = append(idx.markerPos[sym], int32(i))
		}
	}

	// C(c): number of text symbols strictly less than c, derived from total
	// symbol multiplicities (identical in text and BWT, as BWT is a
	// permutation of the text).
	uniq := make([]prg.Marker, 0, len(counts))
	for sym := range counts {
		uniq = append(uniq, sym)
	}
	sort.Slice(uniq, func(i, j int) bool { return uniq[i] < uniq[j] })

	running := 0
	for _, sym := range uniq {
		if sym < 5 {
			idx.cBase[sym] = running
		} else {
			idx.cMarkers[sym] = running
		}
		running += counts[sym]
	}
}

// Size returns the total text length, including the terminator.
func (idx *Index) Size() int { return len(idx.bwt) }

// Bwt returns the symbol at BWT position i.
func (idx *Index) Bwt(i int) prg.Marker { return idx.bwt[i] }

// Sa returns the suffix-array value at i: the text offset the i-th
// lexicographically smallest suffix starts at.
func (idx *Index) Sa(i int) int { return int(idx.sa[i]) }

// Rank returns the count of symbol c in BWT[0:i).
func (idx *Index) Rank(c prg.Marker, i int) int {
	if c < 5 {
		return int(idx.baseRank[c][i])
	}
	positions := idx.markerPos[c]
	return sort.Search(len(positions), func(k int) bool { return positions[k] >= int32(i) })
}

// C returns the running total of symbols strictly less than c in the text.
func (idx *Index) C(c prg.Marker) int {
	if c < 5 {
		return idx.cBase[c]
	}
	return idx.cMarkers[c]
}

// IntervalSymbols enumerates the distinct symbols occurring in BWT[l:r)
// together with rank(., l) and rank(., r) for each.
func (idx *Index) IntervalSymbols(l, r int) []SymbolRank {
	seen := make(map[prg.Marker]bool)
	var out []SymbolRank
	for i := l; i < r; i++ {
		sym := idx.bwt[i]
		if seen[sym] {
			continue
		}
		seen[sym] = true
		out = append(out, SymbolRank{Symbol: sym, RankL: idx.Rank(sym, l), RankR: idx.Rank(sym, r)})
	}
	return out
}
