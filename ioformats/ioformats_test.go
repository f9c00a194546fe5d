package ioformats

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biographs/quasimap/covgraph"
	"github.com/biographs/quasimap/genotype"
	"github.com/biographs/quasimap/prg"
	"github.com/biographs/quasimap/quasimap"
)

func buildGraph(t *testing.T) *covgraph.Graph {
	t.Helper()
	raw := []prg.Marker{1, 5, 2, 6, 3, 6, 4, 6, 1}
	p, err := prg.New(raw)
	require.NoError(t, err)
	return covgraph.Build(p)
}

func TestWriteAlleleCoverageRoundTripsRowCounts(t *testing.T) {
	g := buildGraph(t)
	// Group keys carry the builder's 1-indexed allele ids; rows come out
	// 0-indexed.
	groups := quasimap.SiteGroups{5: {"1": 5, "2": 10}}

	var buf bytes.Buffer
	require.NoError(t, WriteAlleleCoverage(&buf, g, groups))

	var rows [][]float64
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, []float64{5, 10, 0}, rows[0])
}

func TestWriteReadGroupsRoundTrip(t *testing.T) {
	groups := quasimap.SiteGroups{
		5: {"0": 3, "0,1": 2},
		7: {"1,2": 1},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteGroups(&buf, groups))

	got, err := ReadGroups(&buf)
	require.NoError(t, err)
	assert.Equal(t, groups, got)
}

func TestWriteGenotypesNullSiteHasNilGT(t *testing.T) {
	g := buildGraph(t)
	calls := map[prg.Marker]genotype.Call{5: {Likelihoods: map[string]float64{}}}

	var buf bytes.Buffer
	require.NoError(t, WriteGenotypes(&buf, g, nil, calls))

	var records []GenotypeRecord
	require.NoError(t, json.Unmarshal(buf.Bytes(), &records))
	require.Len(t, records, 1)
	assert.Nil(t, records[0].GT)
	assert.Equal(t, []string{"C", "G", "T"}, records[0].Alleles)
}
