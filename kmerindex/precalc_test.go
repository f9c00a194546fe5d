package kmerindex_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/biographs/quasimap/kmerindex"
	"github.com/biographs/quasimap/prg"
	"github.com/biographs/quasimap/search"
)

func sampleEntry() kmerindex.Entry {
	return kmerindex.Entry{
		Kmer:        []prg.Base{1, 2, 3, 4}, // ACGT
		InReference: false,
		Branches: []search.Branch{
			{
				Interval: search.Interval{L: 3, R: 5},
				Sites: []search.SiteCrossing{
					{Marker: 5, Alleles: []int{1, 2}},
					{Marker: 9, Alleles: []int{1}},
				},
			},
			{
				Interval: search.Interval{L: 10, R: 11},
				Sites:    nil,
			},
		},
	}
}

func TestDumpParseEntryRoundTrips(t *testing.T) {
	e := sampleEntry()
	line := kmerindex.DumpEntry(e)
	got, err := kmerindex.ParseEntry(line)
	assert.NoError(t, err)
	assert.Equal(t, e.Kmer, got.Kmer)
	assert.Equal(t, e.InReference, got.InReference)
	assert.Equal(t, len(e.Branches), len(got.Branches))
	for i := range e.Branches {
		assert.Equal(t, e.Branches[i].Interval, got.Branches[i].Interval)
		assert.Equal(t, e.Branches[i].Sites, got.Branches[i].Sites)
	}
}

func TestParseEntryReconstructsOriginFromEmptySiteList(t *testing.T) {
	e := sampleEntry()
	line := kmerindex.DumpEntry(e)
	got, err := kmerindex.ParseEntry(line)
	assert.NoError(t, err)
	assert.Equal(t, search.FannedOut, got.Branches[0].Origin)
	assert.Equal(t, search.Original, got.Branches[1].Origin)
}

func TestParseEntryRejectsTooFewFields(t *testing.T) {
	_, err := kmerindex.ParseEntry("A C|1|0 1")
	assert.Error(t, err)
}

func TestWriteReadFileRoundTripsFingerprintAndEntries(t *testing.T) {
	entries := []kmerindex.Entry{sampleEntry()}
	var buf bytes.Buffer
	assert.NoError(t, kmerindex.WriteFile(&buf, 12345, entries))

	fp, got, err := kmerindex.ReadFile(&buf)
	assert.NoError(t, err)
	assert.Equal(t, uint64(12345), fp)
	assert.Len(t, got, 1)
	assert.Equal(t, entries[0].Kmer, got[0].Kmer)
}

func TestReadFileRejectsTruncatedBody(t *testing.T) {
	entries := []kmerindex.Entry{sampleEntry()}
	var buf bytes.Buffer
	assert.NoError(t, kmerindex.WriteFile(&buf, 12345, entries))

	truncated := buf.Bytes()[:buf.Len()-4]
	_, _, err := kmerindex.ReadFile(bytes.NewReader(truncated))
	assert.Error(t, err)
}
