// Package search implements marker-aware backward search over the
// FM-index: exact backward extension of a read, fanning the current set of
// SA intervals out into one child per variant-site crossing.
package search

import "github.com/biographs/quasimap/prg"

// Interval is a half-open SA interval; empty iff L == R.
type Interval struct {
	L, R int
}

// Empty reports whether the interval contains no suffixes.
func (iv Interval) Empty() bool { return iv.L >= iv.R }

// Origin distinguishes a branch present before any marker fan-out from one
// produced by a fan-out, so termination can drop a now-redundant Original
// branch once a FannedOut sibling of the same lineage has survived.
type Origin int

const (
	Original Origin = iota
	FannedOut
)

// SiteCrossing records one (site marker, allele path) entry: the odd
// site-entry marker paired with the sequence of allele ids visited at that
// site along this branch.
type SiteCrossing struct {
	Marker  prg.Marker
	Alleles []int
}

func cloneSites(in []SiteCrossing) []SiteCrossing {
	out := make([]SiteCrossing, len(in))
	for i, s := range in {
		alleles := make([]int, len(s.Alleles))
		copy(alleles, s.Alleles)
		out[i] = SiteCrossing{Marker: s.Marker, Alleles: alleles}
	}
	return out
}

// Branch is one element of the search state: an SA interval, the sites it
// has crossed to reach that interval, and its lineage bookkeeping.
type Branch struct {
	Interval Interval
	Sites    []SiteCrossing
	Live     bool
	Origin   Origin
	Lineage  int // index of the Original branch this one (or its ancestor) descends from
}

// InitialState builds the bootstrap search state: the full-text interval as
// a single Original branch, used when no kmer seed applies.
func InitialState(textSize int) []Branch {
	return []Branch{{Interval: Interval{L: 0, R: textSize}, Live: true, Origin: Original, Lineage: 0}}
}
