package cmd

import (
	"bufio"
	"fmt"

	"github.com/grailbio/base/cmdutil"
	"github.com/grailbio/base/log"
	"v.io/x/lib/cmdline"

	"github.com/biographs/quasimap/gerrors"
	"github.com/biographs/quasimap/kmerindex"
	"github.com/biographs/quasimap/prg"
)

type buildFlags struct {
	prgPath    *string
	kmerFile   *string
	precalcOut *string
	cachePath  *string
	threads    *int
}

func newCmdBuild() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "build",
		Short:    "Precompute kmer backward-search seeds for a PRG",
		ArgsName: "",
	}
	flags := buildFlags{
		prgPath:    cmd.Flags.String("prg", "", "Path to the linearised PRG file (little-endian uint32 per symbol)"),
		kmerFile:   cmd.Flags.String("kmer-file", "", "Path to a file of kmers, one ACGT string per line"),
		precalcOut: cmd.Flags.String("precalc-out", "", "Path to write the kmer precalc file to"),
		cachePath:  cmd.Flags.String("cache", "", "Optional path to a persistent kv-backed kmer cache to warm"),
		threads:    cmd.Flags.Int("threads", 0, "Worker pool size; 0 picks the CPU count minus one, capped at 25 and at the kmer count"),
	}
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		return runBuild(flags)
	})
	return cmd
}

func runBuild(flags buildFlags) error {
	p, bundle, err := loadBundle(*flags.prgPath)
	if err != nil {
		return err
	}

	kmers, err := readKmerFile(*flags.kmerFile)
	if err != nil {
		return err
	}

	parallelism := *flags.threads
	if parallelism <= 0 {
		parallelism = kmerindex.Parallelism(len(kmers))
	}

	entries, err := kmerindex.Precompute(bundle, kmers, parallelism)
	if err != nil {
		return err
	}

	out, err := createFile(*flags.precalcOut)
	if err != nil {
		return err
	}
	defer out.Close()
	if err := kmerindex.WriteFile(out, p.Fingerprint(), entries); err != nil {
		return err
	}

	if *flags.cachePath != "" {
		cache, err := kmerindex.OpenCache(*flags.cachePath)
		if err != nil {
			return err
		}
		defer cache.Close()
		if err := cache.WarmFromPrecalc(entries); err != nil {
			return err
		}
	}

	log.Printf("prg build: wrote %d kmer entries to %s", len(entries), *flags.precalcOut)
	return nil
}

// readKmerFile reads one ACGT kmer per line, encoding each into quasimap's
// base alphabet. A line that doesn't decode (e.g. contains an N) is skipped
// with a warning rather than failing the whole build.
func readKmerFile(path string) ([][]prg.Base, error) {
	f, err := openFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var kmers [][]prg.Base
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		kmer, ok := prg.EncodeDNA(line)
		if !ok {
			log.Printf("prg build: skipping malformed kmer line %q", line)
			continue
		}
		kmers = append(kmers, kmer)
	}
	if err := sc.Err(); err != nil {
		return nil, gerrors.IO(path, err)
	}
	if len(kmers) == 0 {
		return nil, fmt.Errorf("prg build: no usable kmers found in %s", path)
	}
	return kmers, nil
}
