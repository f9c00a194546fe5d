package cmd

import (
	"fmt"

	"github.com/grailbio/base/cmdutil"
	"github.com/grailbio/base/log"
	"v.io/x/lib/cmdline"

	"github.com/biographs/quasimap/encoding/fastq"
	"github.com/biographs/quasimap/gerrors"
	"github.com/biographs/quasimap/ioformats"
	"github.com/biographs/quasimap/kmerindex"
	"github.com/biographs/quasimap/prg"
	"github.com/biographs/quasimap/quasimap"
)

type quasimapFlags struct {
	prgPath     *string
	precalc     *string
	readsPath   *string
	groupsOut   *string
	coverageOut *string
	threads     *int
}

func newCmdQuasimap() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "quasimap",
		Short:    "Quasi-map FASTQ reads onto a PRG and record per-site allele coverage",
		ArgsName: "",
	}
	flags := quasimapFlags{
		prgPath:     cmd.Flags.String("prg", "", "Path to the linearised PRG file"),
		precalc:     cmd.Flags.String("precalc", "", "Path to the kmer precalc file written by 'build'"),
		readsPath:   cmd.Flags.String("reads", "", "Path to a FASTQ reads file"),
		groupsOut:   cmd.Flags.String("groups-out", "", "Path to write grouped per-site allele counts (consumed by 'genotype')"),
		coverageOut: cmd.Flags.String("coverage-out", "", "Path to write the per-site allele-coverage JSON"),
		threads:     cmd.Flags.Int("threads", 0, "Worker pool size; 0 picks the CPU count minus one, capped at 25 and at the read count"),
	}
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		return runQuasimap(flags)
	})
	return cmd
}

func runQuasimap(flags quasimapFlags) error {
	p, bundle, err := loadBundle(*flags.prgPath)
	if err != nil {
		return err
	}

	precalcFile, err := openFile(*flags.precalc)
	if err != nil {
		return err
	}
	fingerprint, entries, err := kmerindex.ReadFile(precalcFile)
	precalcFile.Close()
	if err != nil {
		return err
	}
	if fingerprint != p.Fingerprint() {
		return gerrors.CorruptPrecalc("prg quasimap: precalc file %s was built against a different PRG (fingerprint mismatch); rerun 'build'", *flags.precalc)
	}
	if len(entries) == 0 {
		return fmt.Errorf("prg quasimap: precalc file %s has no entries", *flags.precalc)
	}
	seeder := quasimap.NewSeeder(len(entries[0].Kmer), entries)

	reads, skipped, err := readFastqReads(*flags.readsPath)
	if err != nil {
		return err
	}
	if skipped > 0 {
		log.Printf("prg quasimap: skipped %d reads with non-ACGT bases", skipped)
	}

	parallelism := *flags.threads
	if parallelism <= 0 {
		parallelism = kmerindex.Parallelism(len(reads))
		if parallelism < 1 {
			parallelism = 1
		}
	}

	groups, stats, err := quasimap.RunAll(bundle, seeder, reads, parallelism)
	if err != nil {
		return err
	}
	log.Printf("prg quasimap: %d reads, %d mapped, %d skipped (short)", stats.AllReads, stats.MappedReads, stats.SkippedReads)

	if *flags.groupsOut != "" {
		out, err := createFile(*flags.groupsOut)
		if err != nil {
			return err
		}
		defer out.Close()
		if err := ioformats.WriteGroups(out, groups); err != nil {
			return err
		}
	}

	if *flags.coverageOut != "" {
		out, err := createFile(*flags.coverageOut)
		if err != nil {
			return err
		}
		defer out.Close()
		if err := ioformats.WriteAlleleCoverage(out, bundle.Graph, groups); err != nil {
			return err
		}
	}
	return nil
}

// readFastqReads encodes every read's sequence into quasimap's 1..4 base
// alphabet, skipping (and counting) any read containing a non-ACGT base
// (e.g. "N") rather than failing the whole run, since such a read can't be
// encoded at all.
func readFastqReads(path string) ([][]prg.Base, int, error) {
	f, err := openFile(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	sc := fastq.NewScanner(f, fastq.Seq)
	var reads [][]prg.Base
	var skipped int
	var r fastq.Read
	for sc.Scan(&r) {
		enc, ok := r.EncodedSeq()
		if !ok {
			skipped++
			continue
		}
		reads = append(reads, enc)
	}
	if err := sc.Err(); err != nil {
		return nil, 0, gerrors.IO(path, err)
	}
	return reads, skipped, nil
}
