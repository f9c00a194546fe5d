package prg

// Base is an encoded DNA base in 1..4 (A, C, G, T). 0 is the sentinel
// terminator used by the FM-index; values >= 5 are variant markers.
type Base = uint32

// Marker is a PRG symbol: a base (1..4), the sentinel (0), or a variant
// marker (>= 5).
type Marker = uint32

const (
	Terminator Base = 0
	MinBase    Base = 1
	MaxBase    Base = 4
	MinMarker  Base = 5

	// MaxMarker is the extended alphabet's ceiling (the "maxx" of {0..maxx}):
	// a symbol above it can only come from a corrupt or garbled PRG file, not
	// a genuinely large number of sites.
	MaxMarker Marker = 1 << 28
)

var encodeTable = [256]int8{}
var decodeTable = [5]byte{0: 0, 1: 'A', 2: 'C', 3: 'G', 4: 'T'}

func init() {
	for i := range encodeTable {
		encodeTable[i] = -1
	}
	encodeTable['A'], encodeTable['a'] = 1, 1
	encodeTable['C'], encodeTable['c'] = 2, 2
	encodeTable['G'], encodeTable['g'] = 3, 3
	encodeTable['T'], encodeTable['t'] = 4, 4
}

// EncodeBase returns the 1..4 encoding of an ACGT letter, or -1 if c isn't
// one of A/C/G/T (case-insensitive).
func EncodeBase(c byte) int8 {
	return encodeTable[c]
}

// DecodeBase returns the ACGT letter for an encoded base in 1..4.
func DecodeBase(m Marker) byte {
	return decodeTable[m]
}

// EncodeDNA encodes an ACGT string into the 1..4 alphabet used throughout
// this package. Bases outside {A,C,G,T} (case-insensitive) are rejected.
func EncodeDNA(s string) ([]Base, bool) {
	out := make([]Base, len(s))
	for i := 0; i < len(s); i++ {
		v := EncodeBase(s[i])
		if v < 0 {
			return nil, false
		}
		out[i] = Base(v)
	}
	return out, true
}

// DecodeDNA renders a sequence of encoded bases (1..4) back to an ACGT
// string. It panics if fed a marker or the terminator, since those aren't
// valid sequence characters.
func DecodeDNA(bs []Base) string {
	out := make([]byte, len(bs))
	for i, b := range bs {
		if b < MinBase || b > MaxBase {
			panic("prg: DecodeDNA called with a non-base symbol")
		}
		out[i] = decodeTable[b]
	}
	return string(out)
}

// IsMarker reports whether m is a variant marker (odd site-entry or even
// allele-end/site-end), as opposed to a sequence base or the terminator.
func IsMarker(m Marker) bool {
	return m >= MinMarker
}

// SiteIDOf returns the site_id for a marker: m for an odd (site-entry)
// marker, m-1 for an even (allele-end/site-end) marker.
func SiteIDOf(m Marker) Marker {
	if m%2 == 1 {
		return m
	}
	return m - 1
}
