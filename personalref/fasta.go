package personalref

import (
	"bufio"
	"fmt"
	"io"
)

// FastaLineWidth is the line-wrap width for emitted personalised-reference
// FASTA records.
const FastaLineWidth = 60

// WriteFasta writes one FASTA record per sequence in copies, named
// "<namePrefix>_<index>", wrapped at FastaLineWidth.
func WriteFasta(w io.Writer, namePrefix string, copies [][]byte) error {
	bw := bufio.NewWriter(w)
	for i, seq := range copies {
		if _, err := fmt.Fprintf(bw, ">%s_%d\n", namePrefix, i); err != nil {
			return err
		}
		for off := 0; off < len(seq); off += FastaLineWidth {
			end := off + FastaLineWidth
			if end > len(seq) {
				end = len(seq)
			}
			if _, err := bw.Write(seq[off:end]); err != nil {
				return err
			}
			if err := bw.WriteByte('\n'); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}
