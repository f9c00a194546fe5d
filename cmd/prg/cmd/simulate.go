package cmd

import (
	"math/rand"

	"github.com/grailbio/base/cmdutil"
	"github.com/grailbio/base/log"
	"v.io/x/lib/cmdline"

	"github.com/biographs/quasimap/ioformats"
	"github.com/biographs/quasimap/simulate"
)

type simulateFlags struct {
	prgPath *string
	out     *string
	ploidy  *string
	seed    *int64
}

func newCmdSimulate() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "simulate",
		Short:    "Sample a uniformly random genotype per bubble, without reads",
		ArgsName: "",
	}
	flags := simulateFlags{
		prgPath: cmd.Flags.String("prg", "", "Path to the linearised PRG file"),
		out:     cmd.Flags.String("out", "", "Path to write the genotype-call JSON"),
		ploidy:  cmd.Flags.String("ploidy", "diploid", `Sample ploidy: "haploid" or "diploid"`),
		seed:    cmd.Flags.Int64("seed", 1, "Random seed"),
	}
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		return runSimulate(flags)
	})
	return cmd
}

func runSimulate(flags simulateFlags) error {
	_, bundle, err := loadBundle(*flags.prgPath)
	if err != nil {
		return err
	}

	ploidy, err := parsePloidy(*flags.ploidy)
	if err != nil {
		return err
	}

	rng := rand.New(rand.NewSource(*flags.seed))
	calls := simulate.GenotypeAll(bundle.Graph, ploidy, rng)

	out, err := createFile(*flags.out)
	if err != nil {
		return err
	}
	defer out.Close()
	if err := ioformats.WriteGenotypes(out, bundle.Graph, nil, calls); err != nil {
		return err
	}

	log.Printf("prg simulate: sampled %d sites", len(calls))
	return nil
}
