package kmerindex_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/biographs/quasimap/covgraph"
	"github.com/biographs/quasimap/fmindex"
	"github.com/biographs/quasimap/kmerindex"
	"github.com/biographs/quasimap/prg"
	"github.com/biographs/quasimap/search"
)

func buildSingleSiteBundle(t *testing.T) *search.Bundle {
	t.Helper()
	raw := []prg.Marker{1, 5, 2, 6, 3, 6, 4, 6, 1}
	p, err := prg.New(raw)
	assert.NoError(t, err)
	return &search.Bundle{Index: fmindex.Build(p.Linear), Graph: covgraph.Build(p)}
}

func TestPrecomputeProducesOneEntryPerKmer(t *testing.T) {
	b := buildSingleSiteBundle(t)
	kmers := [][]prg.Base{{1}, {2}, {3}, {4}}

	entries, err := kmerindex.Precompute(b, kmers, kmerindex.Parallelism(len(kmers)))
	assert.NoError(t, err)
	assert.Len(t, entries, len(kmers))
	for _, e := range entries {
		assert.NotEmpty(t, e.Branches)
		for _, br := range e.Branches {
			assert.True(t, br.Interval.L < br.Interval.R)
		}
	}
}

func TestParallelismNeverExceedsKmerCount(t *testing.T) {
	assert.Equal(t, 1, kmerindex.Parallelism(1))
	assert.True(t, kmerindex.Parallelism(3) <= 3)
}
