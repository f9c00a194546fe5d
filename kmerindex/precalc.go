// Package kmerindex precomputes backward-search seeds for every kmer in a
// kmer file, caches them to a text precalc file, and serves them back to
// quasimap so a read's search doesn't restart from the full-text SA
// interval.
package kmerindex

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/minio/highwayhash"

	"github.com/biographs/quasimap/gerrors"
	"github.com/biographs/quasimap/prg"
	"github.com/biographs/quasimap/search"
)

// precalcChecksumKey is the all-zero HighwayHash key used to checksum a
// precalc file's entry body, matching the zero-seed convention
// fusion/postprocess.go uses for its own HighwayHash grouping key — there's
// no secret to keep here, just a fast corruption check, so a fixed key is
// fine.
var precalcChecksumKey = make([]byte, highwayhash.Size)

func precalcChecksum(body []byte) [highwayhash.Size]byte {
	return highwayhash.Sum(body, precalcChecksumKey)
}

// Entry is one kmer's precomputed search state: whether it survives in the
// non-variant reference, and the branch list backward search left it in.
type Entry struct {
	Kmer        []prg.Base
	InReference bool
	Branches    []search.Branch
}

// DumpEntry renders e in the precalc line format:
//
//	<b1 b2 … bk>|<0|1>|<l1 r1 l2 r2 …>||<site_block>|<site_block>|…
func DumpEntry(e Entry) string {
	var sb strings.Builder
	for i, b := range e.Kmer {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteByte(prg.DecodeBase(b))
	}
	sb.WriteByte('|')
	if e.InReference {
		sb.WriteByte('1')
	} else {
		sb.WriteByte('0')
	}
	sb.WriteByte('|')
	for i, br := range e.Branches {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%d %d", br.Interval.L, br.Interval.R)
	}
	// Double '|' reserves the empty slot for reverse-complement SA
	// intervals, kept only for file-format compatibility.
	sb.WriteString("||")
	for i, br := range e.Branches {
		if i > 0 {
			sb.WriteByte('|')
		}
		writeSiteBlock(&sb, br.Sites)
	}
	return sb.String()
}

func writeSiteBlock(sb *strings.Builder, sites []search.SiteCrossing) {
	for i, s := range sites {
		if i > 0 {
			sb.WriteByte('@')
		}
		fmt.Fprintf(sb, "%d", s.Marker)
		for _, a := range s.Alleles {
			fmt.Fprintf(sb, " %d", a)
		}
	}
}

// ParseEntry parses one precalc line back into an Entry. Branch Origin is
// reconstructed as Original for a branch with no site crossings (the
// non-variant lineage) and FannedOut otherwise, which is what
// search.Run needs to keep extending correctly from a cached seed.
func ParseEntry(line string) (Entry, error) {
	fields := strings.Split(line, "|")
	if len(fields) < 4 {
		return Entry{}, gerrors.CorruptPrecalc("precalc line has %d fields, want at least 4", len(fields))
	}

	kmerToks := strings.Fields(fields[0])
	kmer := make([]prg.Base, len(kmerToks))
	for i, t := range kmerToks {
		if len(t) != 1 {
			return Entry{}, gerrors.CorruptPrecalc("invalid kmer base token %q", t)
		}
		v := prg.EncodeBase(t[0])
		if v < 0 {
			return Entry{}, gerrors.CorruptPrecalc("invalid kmer base %q", t)
		}
		kmer[i] = prg.Base(v)
	}

	var inRef bool
	switch fields[1] {
	case "0":
		inRef = false
	case "1":
		inRef = true
	default:
		return Entry{}, gerrors.CorruptPrecalc("invalid in-reference flag %q", fields[1])
	}

	ivToks := strings.Fields(fields[2])
	if len(ivToks)%2 != 0 {
		return Entry{}, gerrors.CorruptPrecalc("odd number of SA interval fields (%d)", len(ivToks))
	}
	nBranches := len(ivToks) / 2

	siteFields := fields[4:]
	if nBranches == 0 && len(siteFields) == 1 && siteFields[0] == "" {
		// A kmer absent from the text dumps no intervals and a single empty
		// site slot.
		siteFields = nil
	}
	if len(siteFields) != nBranches {
		return Entry{}, gerrors.CorruptPrecalc("branch count mismatch: %d intervals vs %d site blocks", nBranches, len(siteFields))
	}

	branches := make([]search.Branch, nBranches)
	for i := 0; i < nBranches; i++ {
		l, err := strconv.Atoi(ivToks[2*i])
		if err != nil {
			return Entry{}, gerrors.CorruptPrecalc("non-numeric SA interval field %q", ivToks[2*i])
		}
		r, err := strconv.Atoi(ivToks[2*i+1])
		if err != nil {
			return Entry{}, gerrors.CorruptPrecalc("non-numeric SA interval field %q", ivToks[2*i+1])
		}
		sites, err := parseSiteBlock(siteFields[i])
		if err != nil {
			return Entry{}, err
		}
		origin := search.FannedOut
		if len(sites) == 0 {
			origin = search.Original
		}
		branches[i] = search.Branch{
			Interval: search.Interval{L: l, R: r},
			Sites:    sites,
			Live:     true,
			Origin:   origin,
		}
	}

	return Entry{Kmer: kmer, InReference: inRef, Branches: branches}, nil
}

func parseSiteBlock(s string) ([]search.SiteCrossing, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, "@")
	out := make([]search.SiteCrossing, 0, len(parts))
	for _, p := range parts {
		toks := strings.Fields(p)
		if len(toks) == 0 {
			continue
		}
		m, err := strconv.Atoi(toks[0])
		if err != nil {
			return nil, gerrors.CorruptPrecalc("non-numeric site marker %q", toks[0])
		}
		alleles := make([]int, 0, len(toks)-1)
		for _, a := range toks[1:] {
			v, err := strconv.Atoi(a)
			if err != nil {
				return nil, gerrors.CorruptPrecalc("non-numeric allele id %q", a)
			}
			alleles = append(alleles, v)
		}
		out = append(out, search.SiteCrossing{Marker: prg.Marker(m), Alleles: alleles})
	}
	return out, nil
}

// WriteFile dumps entries to w, preceded by a header line carrying the PRG
// fingerprint so a later run can detect a cache built against a different
// PRG, and a HighwayHash checksum of the entry body so ReadFile can tell a
// truncated or bit-flipped file apart from a merely stale one.
func WriteFile(w io.Writer, fingerprint uint64, entries []Entry) error {
	var body bytes.Buffer
	for _, e := range entries {
		fmt.Fprintln(&body, DumpEntry(e))
	}
	sum := precalcChecksum(body.Bytes())

	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "#fingerprint %d\n", fingerprint); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(bw, "#checksum %x\n", sum); err != nil {
		return err
	}
	if _, err := bw.Write(body.Bytes()); err != nil {
		return err
	}
	return bw.Flush()
}

// ReadFile parses a precalc file produced by WriteFile, returning the
// entries and the fingerprint recorded in its header. It recomputes the
// HighwayHash checksum over the entry body and returns gerrors.CorruptPrecalc
// if it doesn't match the recorded one.
func ReadFile(r io.Reader) (uint64, []Entry, error) {
	br := bufio.NewReaderSize(r, 64*1024)

	headerLine, err := br.ReadString('\n')
	if err != nil && err != io.EOF {
		return 0, nil, gerrors.IO("precalc file", err)
	}
	var fingerprint uint64
	if _, serr := fmt.Sscanf(headerLine, "#fingerprint %d", &fingerprint); serr != nil {
		return 0, nil, gerrors.CorruptPrecalc("missing or malformed fingerprint header: %q", strings.TrimSpace(headerLine))
	}

	checksumLine, err := br.ReadString('\n')
	if err != nil && err != io.EOF {
		return 0, nil, gerrors.IO("precalc file", err)
	}
	wantSum := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(checksumLine), "#checksum"))
	if wantSum == "" {
		return 0, nil, gerrors.CorruptPrecalc("missing or malformed checksum header: %q", strings.TrimSpace(checksumLine))
	}

	body, err := io.ReadAll(br)
	if err != nil {
		return 0, nil, gerrors.IO("precalc file", err)
	}
	gotSum := precalcChecksum(body)
	if fmt.Sprintf("%x", gotSum) != wantSum {
		return 0, nil, gerrors.CorruptPrecalc("checksum mismatch: precalc file is truncated or corrupted")
	}

	var entries []Entry
	sc := bufio.NewScanner(bytes.NewReader(body))
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		e, err := ParseEntry(line)
		if err != nil {
			return 0, nil, err
		}
		entries = append(entries, e)
	}
	if err := sc.Err(); err != nil {
		return 0, nil, gerrors.IO("precalc file", err)
	}
	return fingerprint, entries, nil
}
