package kmerindex

import (
	"os"

	"blainsmith.com/go/seahash"
	"github.com/grailbio/base/log"
	"modernc.org/kv"

	"github.com/biographs/quasimap/gerrors"
	"github.com/biographs/quasimap/prg"
)

// Cache is a persistent, disk-backed store of precomputed kmer entries,
// keyed by a fast content hash of the kmer bytes rather than the kmer text
// itself. It sits alongside the text precalc file: the text
// file is the portable interchange format, this cache is a faster
// incremental store for repeated runs against the same PRG.
type Cache struct {
	db *kv.DB
}

// OpenCache opens (creating if absent) a kv-backed cache at path.
func OpenCache(path string) (*Cache, error) {
	db, err := kv.Open(path, &kv.Options{})
	if os.IsNotExist(err) {
		db, err = kv.Create(path, &kv.Options{})
	}
	if err != nil {
		return nil, gerrors.IO(path, err)
	}
	return &Cache{db: db}, nil
}

// Close releases the underlying database handle.
func (c *Cache) Close() error { return c.db.Close() }

func cacheKey(kmer []prg.Base) []byte {
	buf := make([]byte, len(kmer))
	for i, b := range kmer {
		buf[i] = prg.DecodeBase(b)
	}
	h := seahash.Sum64(buf)
	key := make([]byte, 8)
	for i := 0; i < 8; i++ {
		key[i] = byte(h >> (8 * i))
	}
	return key
}

// Get returns a cached Entry for kmer, if present.
func (c *Cache) Get(kmer []prg.Base) (Entry, bool, error) {
	v, err := c.db.Get(nil, cacheKey(kmer))
	if err != nil {
		return Entry{}, false, gerrors.IO("kmer cache", err)
	}
	if v == nil {
		return Entry{}, false, nil
	}
	e, err := ParseEntry(string(v))
	if err != nil {
		return Entry{}, false, err
	}
	return e, true, nil
}

// Put stores e under its kmer's cache key, overwriting any prior entry.
func (c *Cache) Put(e Entry) error {
	if err := c.db.Set(cacheKey(e.Kmer), []byte(DumpEntry(e))); err != nil {
		return gerrors.IO("kmer cache", err)
	}
	return nil
}

// WarmFromPrecalc loads every entry from a parsed precalc file into the
// cache, logging how many were absorbed.
func (c *Cache) WarmFromPrecalc(entries []Entry) error {
	for _, e := range entries {
		if err := c.Put(e); err != nil {
			return err
		}
	}
	log.Debug.Printf("kmerindex.Cache: warmed %d entries", len(entries))
	return nil
}
