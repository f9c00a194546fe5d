// Package cmd wires the prg CLI's subcommands (build, quasimap, genotype,
// simulate) as v.io/x/lib/cmdline commands, each with a
// grailbio/base/cmdutil.RunnerFunc runner and its own flag set.
package cmd

import (
	"log"

	"v.io/x/lib/cmdline"
)

// Run parses os.Args and dispatches to the matched subcommand, exiting the
// process with a non-zero status on failure.
func Run() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds | log.Lshortfile)
	cmdline.HideGlobalFlagsExcept()
	cmdline.Main(&cmdline.Command{
		Name:     "prg",
		Short:    "Quasi-map reads onto a population reference graph and genotype its sites",
		LookPath: false,
		Children: []*cmdline.Command{
			newCmdBuild(),
			newCmdQuasimap(),
			newCmdGenotype(),
			newCmdSimulate(),
		},
	})
}
