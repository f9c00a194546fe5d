package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/biographs/quasimap/covgraph"
	"github.com/biographs/quasimap/fmindex"
	"github.com/biographs/quasimap/genotype"
	"github.com/biographs/quasimap/gerrors"
	"github.com/biographs/quasimap/prg"
	"github.com/biographs/quasimap/search"
)

// loadBundle reads and validates the PRG file at path, then builds the
// coverage graph and FM-index over it. The index is not persisted, so this
// runs on every subcommand invocation.
func loadBundle(path string) (*prg.String, *search.Bundle, error) {
	p, err := prg.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	g := covgraph.Build(p)
	idx := fmindex.Build(p.Linear)
	return p, &search.Bundle{Index: idx, Graph: g}, nil
}

// parsePloidy maps the --ploidy flag's value to genotype.Ploidy.
func parsePloidy(s string) (genotype.Ploidy, error) {
	switch s {
	case "haploid":
		return genotype.Haploid, nil
	case "diploid":
		return genotype.Diploid, nil
	default:
		return 0, fmt.Errorf("invalid --ploidy %q: want \"haploid\" or \"diploid\"", s)
	}
}

// gzipWriteCloser closes both the gzip stream and the underlying file,
// flushing the compressed trailer before the file handle goes away.
type gzipWriteCloser struct {
	*gzip.Writer
	f *os.File
}

func (g *gzipWriteCloser) Close() error {
	if err := g.Writer.Close(); err != nil {
		g.f.Close()
		return err
	}
	return g.f.Close()
}

type gzipReadCloser struct {
	*gzip.Reader
	f *os.File
}

func (g *gzipReadCloser) Close() error {
	g.Reader.Close()
	return g.f.Close()
}

// createFile creates path for writing, transparently gzip-compressing the
// stream when path ends in ".gz".
func createFile(path string) (io.WriteCloser, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, gerrors.IO(path, err)
	}
	if !strings.HasSuffix(path, ".gz") {
		return f, nil
	}
	return &gzipWriteCloser{Writer: gzip.NewWriter(f), f: f}, nil
}

// openFile opens path for reading, transparently decompressing it when path
// ends in ".gz".
func openFile(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, gerrors.IO(path, err)
	}
	if !strings.HasSuffix(path, ".gz") {
		return f, nil
	}
	gz, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, gerrors.IO(path, err)
	}
	return &gzipReadCloser{Reader: gz, f: f}, nil
}
