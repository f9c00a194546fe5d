package quasimap

import "github.com/biographs/quasimap/prg"

// ReverseComplement returns the reverse complement of an encoded read.
// Complementary bases in the 1..4 (A,C,G,T) alphabet always sum to 5
// (A+T=1+4, C+G=2+3).
func ReverseComplement(seq []prg.Base) []prg.Base {
	out := make([]prg.Base, len(seq))
	n := len(seq)
	for i, b := range seq {
		out[n-1-i] = 5 - b
	}
	return out
}
