// Package prg parses and validates the linearised population reference
// graph (PRG) string: a sequence of encoded DNA bases interleaved with
// numeric site markers.
package prg

import (
	"encoding/binary"
	"os"

	farm "github.com/dgryski/go-farm"
	"github.com/edsrzf/mmap-go"
	"github.com/grailbio/base/log"

	"github.com/biographs/quasimap/gerrors"
)

// String is a validated linear PRG: the raw marker sequence plus, for every
// even marker that appears, the position at which it last occurs.
type String struct {
	Linear       []Marker
	EndPositions map[Marker]int // even marker -> its last occurrence index
}

// New validates raw and builds a String. It rejects any even marker whose
// matching odd predecessor (m-1) never occurred earlier in the sequence.
func New(raw []Marker) (*String, error) {
	endPositions := make(map[Marker]int)
	seenOdd := make(map[Marker]bool)
	for i, m := range raw {
		if !IsMarker(m) {
			continue
		}
		if m > MaxMarker {
			return nil, gerrors.MalformedPRG("marker %d at position %d exceeds the maximum symbol value %d", m, i, MaxMarker)
		}
		if m%2 == 1 {
			seenOdd[m] = true
			continue
		}
		if !seenOdd[m-1] {
			return nil, gerrors.MalformedPRG("even marker %d at position %d has no matching odd marker %d before it", m, i, m-1)
		}
		endPositions[m] = i
	}
	return &String{Linear: raw, EndPositions: endPositions}, nil
}

// Fingerprint returns a content hash of the PRG, used to detect a stale kmer
// precalc cache built against a different PRG.
func (s *String) Fingerprint() uint64 {
	buf := make([]byte, 4*len(s.Linear))
	for i, m := range s.Linear {
		binary.LittleEndian.PutUint32(buf[4*i:], m)
	}
	return farm.Hash64(buf)
}

// ReadFile loads a PRG file (little-endian uint32 per symbol) by
// memory-mapping it and decoding every symbol into a newly allocated slice.
// The mapping and the file are released before ReadFile returns; the
// returned String holds no reference to either.
func ReadFile(path string) (*String, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, gerrors.IO(path, err)
	}
	defer f.Close()

	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, gerrors.IO(path, err)
	}
	defer m.Unmap()
	if len(m)%4 != 0 {
		return nil, gerrors.MalformedPRG("PRG file %s has length %d, not a multiple of 4", path, len(m))
	}
	n := len(m) / 4
	raw := make([]Marker, n)
	for i := 0; i < n; i++ {
		raw[i] = binary.LittleEndian.Uint32(m[4*i:])
	}
	log.Debug.Printf("prg.ReadFile: loaded %d symbols from %s", n, path)
	return New(raw)
}
