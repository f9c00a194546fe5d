package cmd

import (
	"github.com/grailbio/base/cmdutil"
	"github.com/grailbio/base/log"
	"v.io/x/lib/cmdline"

	"github.com/biographs/quasimap/genotype"
	"github.com/biographs/quasimap/ioformats"
)

type genotypeFlags struct {
	prgPath      *string
	groupsPath   *string
	out          *string
	ploidy       *string
	meanCovDepth *float64
	meanPBError  *float64
	credibleCovT *uint
}

func newCmdGenotype() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "genotype",
		Short:    "Call a genotype at every bubble from quasimap's grouped allele counts",
		ArgsName: "",
	}
	flags := genotypeFlags{
		prgPath:      cmd.Flags.String("prg", "", "Path to the linearised PRG file"),
		groupsPath:   cmd.Flags.String("groups", "", "Path to the grouped allele counts written by 'quasimap --groups-out'"),
		out:          cmd.Flags.String("out", "", "Path to write the genotype-call JSON"),
		ploidy:       cmd.Flags.String("ploidy", "diploid", `Sample ploidy: "haploid" or "diploid"`),
		meanCovDepth: cmd.Flags.Float64("mean-cov-depth", 15.0, "Mean per-base sequencing depth"),
		meanPBError:  cmd.Flags.Float64("mean-pb-error", 0.01, "Mean per-base sequencing error rate"),
		credibleCovT: cmd.Flags.Uint("credible-cov-t", 5, "Minimum per-base coverage to count a position as credible"),
	}
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		return runGenotype(flags)
	})
	return cmd
}

func runGenotype(flags genotypeFlags) error {
	_, bundle, err := loadBundle(*flags.prgPath)
	if err != nil {
		return err
	}

	groupsFile, err := openFile(*flags.groupsPath)
	if err != nil {
		return err
	}
	groups, err := ioformats.ReadGroups(groupsFile)
	groupsFile.Close()
	if err != nil {
		return err
	}

	ploidy, err := parsePloidy(*flags.ploidy)
	if err != nil {
		return err
	}
	stats := genotype.NewLikelihoodStats(*flags.meanCovDepth, *flags.meanPBError, uint32(*flags.credibleCovT))

	calls, err := genotype.GenotypeAll(bundle.Graph, groups, ploidy, stats)
	if err != nil {
		return err
	}

	out, err := createFile(*flags.out)
	if err != nil {
		return err
	}
	defer out.Close()
	if err := ioformats.WriteGenotypes(out, bundle.Graph, groups, calls); err != nil {
		return err
	}

	log.Printf("prg genotype: called %d sites", len(calls))
	return nil
}
