package kmerindex

import (
	"runtime"

	"github.com/grailbio/base/log"
	"github.com/grailbio/base/traverse"

	"github.com/biographs/quasimap/prg"
	"github.com/biographs/quasimap/search"
)

// maxThreads caps the worker pool; an unbounded pool gains nothing once
// jobs outnumber cores.
const maxThreads = 25

// Parallelism picks the fixed worker-pool size for a run of n kmers.
func Parallelism(n int) int {
	p := runtime.NumCPU() - 1
	if p < 1 {
		p = 1
	}
	if p > maxThreads {
		p = maxThreads
	}
	if p > n {
		p = n
	}
	if p < 1 {
		p = 1
	}
	return p
}

// Precompute runs backward search from the full-text interval for every
// kmer, sharding the kmer set round-robin across a fixed pool of
// traverse.Each workers. Each worker owns its own output slice; the caller
// only sees the joined result once every worker has returned, matching the
// "workers share only read-only inputs" thread-pool contract.
func Precompute(b *search.Bundle, kmers [][]prg.Base, parallelism int) ([]Entry, error) {
	if parallelism < 1 {
		parallelism = 1
	}
	if parallelism > len(kmers) {
		parallelism = len(kmers)
	}
	if parallelism == 0 {
		return nil, nil
	}

	perWorker := make([][]Entry, parallelism)
	log.Printf("kmerindex.Precompute: %d kmers across %d workers", len(kmers), parallelism)

	err := traverse.Each(parallelism, func(jobIdx int) error {
		var out []Entry
		for i := jobIdx; i < len(kmers); i += parallelism {
			kmer := kmers[i]
			initial := search.InitialState(b.Index.Size())
			branches := search.Run(b, kmer, initial)
			out = append(out, Entry{
				Kmer:        kmer,
				InReference: search.OccursInReference(branches),
				Branches:    branches,
			})
		}
		perWorker[jobIdx] = out
		return nil
	})
	if err != nil {
		return nil, err
	}

	var all []Entry
	for _, out := range perWorker {
		all = append(all, out...)
	}
	log.Debug.Printf("kmerindex.Precompute: produced %d entries", len(all))
	return all, nil
}
