package prg_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/biographs/quasimap/prg"
)

func TestNewRejectsUnmatchedEvenMarker(t *testing.T) {
	// marker 6 appears with no preceding 5.
	_, err := prg.New([]prg.Marker{1, 6, 2})
	assert.Error(t, err)
}

func TestNewRejectsMarkerAboveMaxMarker(t *testing.T) {
	_, err := prg.New([]prg.Marker{1, prg.MaxMarker + 1})
	assert.Error(t, err)
}

func TestNewAcceptsWellFormedSite(t *testing.T) {
	// A 5 C 6 G 6 T 6 A : site 5 with alleles C, G, T (6 closes every
	// allele, including the last, so its final occurrence is the site end).
	raw := []prg.Marker{1, 5, 2, 6, 3, 6, 4, 6, 1}
	p, err := prg.New(raw)
	assert.NoError(t, err)
	assert.Equal(t, 7, p.EndPositions[6])
}

func TestEncodeDecodeDNARoundTrip(t *testing.T) {
	bases, ok := prg.EncodeDNA("acgtACGT")
	assert.True(t, ok)
	assert.Equal(t, []prg.Base{1, 2, 3, 4, 1, 2, 3, 4}, bases)
	assert.Equal(t, "ACGTACGT", prg.DecodeDNA(bases))
}

func TestEncodeDNARejectsNonACGT(t *testing.T) {
	_, ok := prg.EncodeDNA("ACGN")
	assert.False(t, ok)
}

func TestSiteIDOf(t *testing.T) {
	assert.Equal(t, prg.Marker(5), prg.SiteIDOf(5))
	assert.Equal(t, prg.Marker(5), prg.SiteIDOf(6))
}

func TestFingerprintStableAcrossCalls(t *testing.T) {
	p, err := prg.New([]prg.Marker{1, 5, 2, 6, 3, 6, 4, 5, 1})
	assert.NoError(t, err)
	assert.Equal(t, p.Fingerprint(), p.Fingerprint())

	other, err := prg.New([]prg.Marker{1, 5, 2, 6, 3, 6, 4, 5, 2})
	assert.NoError(t, err)
	assert.NotEqual(t, p.Fingerprint(), other.Fingerprint())
}
