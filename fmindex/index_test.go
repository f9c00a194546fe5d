package fmindex_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/biographs/quasimap/fmindex"
	"github.com/biographs/quasimap/prg"
)

// linear is "A 5 C 6 G 6 T 6 A": site 5 with alleles C, G, T.
var linear = []prg.Marker{1, 5, 2, 6, 3, 6, 4, 6, 1}

func TestBuildSizeIncludesTerminator(t *testing.T) {
	idx := fmindex.Build(linear)
	assert.Equal(t, len(linear)+1, idx.Size())
}

func TestBwtMatchesHandComputedTransform(t *testing.T) {
	idx := fmindex.Build(linear)
	want := []prg.Marker{1, 6, 0, 5, 6, 6, 1, 4, 2, 3}
	got := make([]prg.Marker, idx.Size())
	for i := range got {
		got[i] = idx.Bwt(i)
	}
	assert.Equal(t, want, got)
}

func TestCTableOrdersSymbolsByTotalMultiplicity(t *testing.T) {
	idx := fmindex.Build(linear)
	assert.Equal(t, 0, idx.C(0))
	assert.Equal(t, 1, idx.C(1))
	assert.Equal(t, 6, idx.C(5))
	assert.Equal(t, 7, idx.C(6))
}

func TestRankCountsOccurrencesBeforePosition(t *testing.T) {
	idx := fmindex.Build(linear)
	assert.Equal(t, 0, idx.Rank(5, 0))
	assert.Equal(t, 1, idx.Rank(5, idx.Size()))
	assert.Equal(t, 0, idx.Rank(6, 0))
	assert.Equal(t, 3, idx.Rank(6, idx.Size()))
}

func TestIntervalSymbolsListsEveryDistinctSymbolWithBothRanks(t *testing.T) {
	idx := fmindex.Build(linear)
	syms := idx.IntervalSymbols(0, idx.Size())
	found := make(map[prg.Marker]fmindex.SymbolRank)
	for _, sr := range syms {
		found[sr.Symbol] = sr
	}
	marker6 := found[6]
	assert.Equal(t, 0, marker6.RankL)
	assert.Equal(t, 3, marker6.RankR)
}
