package quasimap_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/biographs/quasimap/covgraph"
	"github.com/biographs/quasimap/fmindex"
	"github.com/biographs/quasimap/kmerindex"
	"github.com/biographs/quasimap/prg"
	"github.com/biographs/quasimap/quasimap"
	"github.com/biographs/quasimap/search"
)

func buildSingleSiteBundle(t *testing.T) *search.Bundle {
	t.Helper()
	raw := []prg.Marker{1, 5, 2, 6, 3, 6, 4, 6, 1}
	p, err := prg.New(raw)
	assert.NoError(t, err)
	return &search.Bundle{Index: fmindex.Build(p.Linear), Graph: covgraph.Build(p)}
}

func TestReverseComplementReversesAndComplementsEveryBase(t *testing.T) {
	// A C G T -> complement T G C A -> reversed A C G T
	seq := []prg.Base{1, 2, 3, 4}
	assert.Equal(t, []prg.Base{1, 2, 3, 4}, quasimap.ReverseComplement(seq))

	// A A T -> complement T T A -> reversed A T T
	assert.Equal(t, []prg.Base{1, 4, 4}, quasimap.ReverseComplement([]prg.Base{1, 1, 4}))
}

func TestReadSkipsShorterThanKmerSize(t *testing.T) {
	b := buildSingleSiteBundle(t)
	seeder := quasimap.NewSeeder(3, nil)
	stats := &quasimap.Stats{}

	res := quasimap.Read(b, seeder, []prg.Base{1, 2}, stats)

	assert.False(t, res.Mapped)
	assert.EqualValues(t, 1, stats.AllReads)
	assert.EqualValues(t, 1, stats.SkippedReads)
	assert.EqualValues(t, 0, stats.MappedReads)
}

func TestReadMapsUsingPrecomputedSeedAndAttributesCoverage(t *testing.T) {
	b := buildSingleSiteBundle(t)

	kmers := [][]prg.Base{{1}} // seed kmer "A", the last base of "CA"
	entries, err := kmerindex.Precompute(b, kmers, 1)
	assert.NoError(t, err)

	seeder := quasimap.NewSeeder(1, entries)
	stats := &quasimap.Stats{}

	res := quasimap.Read(b, seeder, []prg.Base{2, 1}, stats) // read "CA"

	assert.True(t, res.Mapped)
	assert.EqualValues(t, 1, stats.AllReads)
	assert.EqualValues(t, 1, stats.MappedReads)
	assert.NotEmpty(t, res.Groups)
}

func TestFormatGroupKeyParsesAlleleIDsInKeyOrder(t *testing.T) {
	ids, err := quasimap.FormatGroupKey("2,1")
	assert.NoError(t, err)
	assert.Equal(t, []int{2, 1}, ids)

	_, err = quasimap.FormatGroupKey("not-a-number")
	assert.Error(t, err)
}
