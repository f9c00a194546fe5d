// Command prg quasi-maps reads onto a population reference graph and
// genotypes its variant sites.
package main

import "github.com/biographs/quasimap/cmd/prg/cmd"

func main() {
	cmd.Run()
}
