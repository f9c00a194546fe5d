// Package quasimap maps reads against a PRG using a kmer-seeded backward
// search: the last k bases of a read are looked up in a precomputed kmer
// index, and search resumes over the remaining prefix from that seeded
// state rather than bootstrapping from the whole-text interval.
package quasimap

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/grailbio/base/log"
	"github.com/grailbio/base/traverse"

	"github.com/biographs/quasimap/kmerindex"
	"github.com/biographs/quasimap/prg"
	"github.com/biographs/quasimap/search"
)

// Stats tallies the three read-level counters: all reads seen, reads
// skipped for being shorter than the kmer size, and reads with at least one
// surviving branch in either orientation.
type Stats struct {
	AllReads     int64
	SkippedReads int64
	MappedReads  int64
}

func (s *Stats) countAll()     { atomic.AddInt64(&s.AllReads, 1) }
func (s *Stats) countSkipped() { atomic.AddInt64(&s.SkippedReads, 1) }
func (s *Stats) countMapped()  { atomic.AddInt64(&s.MappedReads, 1) }

// SiteGroups accumulates, per site marker, a count per distinct allele-id
// SET seen crossing that site: the grouped allele counts (gp_counts) the
// level genotyper consumes directly as its per-site coverage input.
type SiteGroups map[prg.Marker]map[string]int

// GroupKey renders a set of allele ids into the sorted, comma-joined string
// SiteGroups keys its counts by. FormatGroupKey is its inverse.
func GroupKey(alleles []int) string {
	sorted := make([]int, len(alleles))
	copy(sorted, alleles)
	sort.Ints(sorted)
	parts := make([]string, len(sorted))
	for i, a := range sorted {
		parts[i] = strconv.Itoa(a)
	}
	return strings.Join(parts, ",")
}

func (sg SiteGroups) add(site prg.Marker, alleles []int) {
	if sg[site] == nil {
		sg[site] = make(map[string]int)
	}
	sg[site][GroupKey(alleles)]++
}

func mergeSiteGroups(dst, src SiteGroups) {
	for site, groups := range src {
		for key, n := range groups {
			if dst[site] == nil {
				dst[site] = make(map[string]int)
			}
			dst[site][key] += n
		}
	}
}

// Seeder looks up a kmer's precomputed search state. KmerSize must match the
// index the entries were built against.
type Seeder struct {
	KmerSize int
	entries  map[string]kmerindex.Entry
}

// NewSeeder indexes precomputed entries by kmer for lookup during quasimap.
func NewSeeder(kmerSize int, entries []kmerindex.Entry) *Seeder {
	s := &Seeder{KmerSize: kmerSize, entries: make(map[string]kmerindex.Entry, len(entries))}
	for _, e := range entries {
		s.entries[kmerKey(e.Kmer)] = e
	}
	return s
}

func kmerKey(kmer []prg.Base) string {
	b := make([]byte, len(kmer))
	for i, v := range kmer {
		b[i] = byte(v)
	}
	return string(b)
}

func (s *Seeder) lookup(kmer []prg.Base) (kmerindex.Entry, bool) {
	e, ok := s.entries[kmerKey(kmer)]
	return e, ok
}

// Result is what quasimapping a single read (and its reverse complement)
// produces: whether either orientation mapped, plus the union of grouped
// allele-set counts and per-base coverage increments applied to b.Graph as a
// side effect.
type Result struct {
	Mapped bool
	Groups SiteGroups
}

// Read processes one encoded read against bundle b using seeder to resolve
// the kmer seed, attributing both per-base node coverage (for credible-
// position counting) and grouped allele-set counts (fed to the level
// genotyper) for every surviving branch in both orientations.
func Read(b *search.Bundle, seeder *Seeder, read []prg.Base, stats *Stats) Result {
	stats.countAll()
	if len(read) < seeder.KmerSize {
		stats.countSkipped()
		return Result{}
	}

	groups := make(SiteGroups)
	mapped := false

	if quasimapOneStrand(b, seeder, read, groups) {
		mapped = true
	}
	if quasimapOneStrand(b, seeder, ReverseComplement(read), groups) {
		mapped = true
	}

	if mapped {
		stats.countMapped()
	}
	return Result{Mapped: mapped, Groups: groups}
}

// quasimapOneStrand runs the seeded search for a single read orientation,
// attributing coverage into dst on success. It reports whether the read
// mapped in this orientation.
//
// A read may survive in several branches touching the same site through
// different alleles; the read's contribution to that site is one count for
// the union of those alleles — the equivalence class of alleles the read is
// compatible with — not one count per branch.
func quasimapOneStrand(b *search.Bundle, seeder *Seeder, read []prg.Base, dst SiteGroups) bool {
	k := seeder.KmerSize
	seedKmer := read[len(read)-k:]
	entry, ok := seeder.lookup(seedKmer)
	if !ok {
		return false
	}

	prefix := read[:len(read)-k]
	branches := search.Finalize(search.Run(b, prefix, entry.Branches))
	if len(branches) == 0 {
		return false
	}

	perSite := make(map[prg.Marker]map[int]bool)
	for _, br := range branches {
		for _, site := range br.Sites {
			set := perSite[site.Marker]
			if set == nil {
				set = make(map[int]bool)
				perSite[site.Marker] = set
			}
			for _, a := range site.Alleles {
				set[a] = true
			}
		}
		attributeBaseCoverage(b, br, len(read))
	}
	for site, set := range perSite {
		alleles := make([]int, 0, len(set))
		for a := range set {
			alleles = append(alleles, a)
		}
		dst.add(site, alleles)
	}
	return true
}

// attributeBaseCoverage increments per-base Node.Coverage for every genomic
// occurrence a surviving branch's final interval represents, so
// Allele.Coverage (built by covgraph.Graph.AllelePaths) reflects real
// pileup depth rather than a flat per-allele read count. The walk follows
// the coverage graph from the occurrence's start, taking the branch's
// recorded allele at every bubble entry it passes through, since the bases
// the read matched past a site are the chosen allele's, not whatever
// follows the marker in the linear text.
func attributeBaseCoverage(b *search.Bundle, br search.Branch, readLen int) {
	alleleOf := make(map[prg.Marker]int, len(br.Sites))
	for _, s := range br.Sites {
		if len(s.Alleles) > 0 {
			alleleOf[s.Marker] = s.Alleles[0]
		}
	}

	g := b.Graph
	for i := br.Interval.L; i < br.Interval.R; i++ {
		start := b.Index.Sa(i)
		if start >= len(g.RandomAccess) {
			continue // terminator row
		}
		acc := g.RandomAccess[start]
		cur := acc.Node
		offset := acc.Offset
		for remaining := readLen; remaining > 0; {
			n := &g.Nodes[cur]
			if n.HasSequence() && offset < len(n.Coverage) {
				n.AddCoverage(offset)
				offset++
				remaining--
				if offset < len(n.Sequence) {
					continue
				}
			}
			if len(n.Edges) == 0 {
				break
			}
			next := n.Edges[0]
			if _, isEntry := g.BubbleMap[cur]; isEntry {
				if a, ok := alleleOf[n.SiteID]; ok && a >= 1 && a <= len(n.Edges) {
					next = n.Edges[a-1]
				}
			}
			cur = next
			offset = 0
		}
	}
}

// RunAll quasimaps every read in reads across a fixed worker pool, matching
// the round-robin sharding kmerindex.Precompute uses, and returns the merged
// grouped allele-set counts alongside final stats.
func RunAll(b *search.Bundle, seeder *Seeder, reads [][]prg.Base, parallelism int) (SiteGroups, *Stats, error) {
	stats := &Stats{}
	perWorker := make([]SiteGroups, parallelism)
	var mu sync.Mutex

	err := traverse.Each(parallelism, func(jobIdx int) error {
		local := make(SiteGroups)
		for i := jobIdx; i < len(reads); i += parallelism {
			res := Read(b, seeder, reads[i], stats)
			mergeSiteGroups(local, res.Groups)
		}
		mu.Lock()
		perWorker[jobIdx] = local
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, stats, err
	}

	merged := make(SiteGroups)
	for _, g := range perWorker {
		mergeSiteGroups(merged, g)
	}
	log.Printf("quasimap: %d reads, %d mapped, %d skipped", stats.AllReads, stats.MappedReads, stats.SkippedReads)
	return merged, stats, nil
}

// FormatGroupKey parses a group key back into its allele-id slice, in the
// order the ids appear in the key (sorted for keys built by GroupKey; no
// sorting is applied here), for callers (e.g. the genotyper) that need the
// parsed form rather than the string used internally for map deduplication.
func FormatGroupKey(key string) ([]int, error) {
	parts := strings.Split(key, ",")
	out := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("quasimap: malformed group key %q: %w", key, err)
		}
		out[i] = n
	}
	return out, nil
}
