package fastq

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

const fq = `@NB500956:89:HW2FHBGX2:1:11101:25648:1069 1:N:0:ATCACG
ATACAGGCCTGANCCACTGTGCCCAGNCTANNTNATTANTGAANANAGAATNGTTNTAAATANANNNNNTNTNNNC
+
AAAAAEEEEEEE#EEAEEEEEEEEEE#EEE##E#EEEE#EEEE#E#EEEEE#EEE#EEEAEE#A#####E#E###E
@NB500956:89:HW2FHBGX2:1:11101:13871:1070 1:N:0:ATCACG
CTCAACTCTGAGCAGACAGAAATACGTTTGGTGTGAGTTACAGCGTTCTTTTTCGACATATGCGGGGGTCTCGGGT
+
AAAAAEEEEEEE#EEEEEEEEEEEEE#EEE##E#EEEEEEEEE#E#EEEEEEEEE#EAEEEE#A#####E#A###E
`

func stringScanner(s string) *Scanner {
	return NewScanner(bytes.NewReader([]byte(s)), All)
}

func scanErr(s string) error {
	scan := stringScanner(s)
	var r Read
	for scan.Scan(&r) {
	}
	return scan.Err()
}

func TestFASTQ(t *testing.T) {
	s := stringScanner(fq)
	var r Read
	if !s.Scan(&r) {
		t.Fatal(s.Err())
	}
	expect := Read{
		ID:   "@NB500956:89:HW2FHBGX2:1:11101:25648:1069 1:N:0:ATCACG",
		Seq:  "ATACAGGCCTGANCCACTGTGCCCAGNCTANNTNATTANTGAANANAGAATNGTTNTAAATANANNNNNTNTNNNC",
		Unk:  "+",
		Qual: "AAAAAEEEEEEE#EEAEEEEEEEEEE#EEE##E#EEEE#EEEE#E#EEEEE#EEE#EEEAEE#A#####E#E###E",
	}
	assert.Equal(t, expect, r)

	var n int
	for s.Scan(&r) {
		n++
	}
	assert.Equal(t, 1, n)
	assert.NoError(t, s.Err())
}

func TestBadFASTQ(t *testing.T) {
	assert.Equal(t, ErrInvalid, scanErr("12312#"))
	assert.Equal(t, ErrShort, scanErr("@1234\n123"))
}

func TestEncodedSeq(t *testing.T) {
	clean := Read{Seq: "ACGTACGT"}
	enc, ok := clean.EncodedSeq()
	assert.True(t, ok)
	assert.Equal(t, 8, len(enc))

	withN := Read{Seq: "ACGTNACGT"}
	_, ok = withN.EncodedSeq()
	assert.False(t, ok)
}
