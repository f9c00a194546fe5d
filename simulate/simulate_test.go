package simulate

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biographs/quasimap/covgraph"
	"github.com/biographs/quasimap/genotype"
	"github.com/biographs/quasimap/prg"
)

func buildGraph(t *testing.T) *covgraph.Graph {
	t.Helper()
	raw := []prg.Marker{1, 5, 2, 6, 3, 6, 4, 6, 1}
	p, err := prg.New(raw)
	require.NoError(t, err)
	return covgraph.Build(p)
}

func TestGenotypeAllHaploidPicksOneAllele(t *testing.T) {
	g := buildGraph(t)
	rng := rand.New(rand.NewSource(1))
	calls := GenotypeAll(g, genotype.Haploid, rng)
	require.Contains(t, calls, prg.Marker(5))
	call := calls[5]
	require.Len(t, call.RawGenotype, 1)
	assert.GreaterOrEqual(t, call.RawGenotype[0], 0)
	assert.Less(t, call.RawGenotype[0], 3)
}

func TestGenotypeAllDiploidPicksTwoAlleles(t *testing.T) {
	g := buildGraph(t)
	rng := rand.New(rand.NewSource(2))
	calls := GenotypeAll(g, genotype.Diploid, rng)
	call := calls[5]
	require.Len(t, call.RawGenotype, 2)
}

func TestGenotypeAllDeterministicWithSeed(t *testing.T) {
	g := buildGraph(t)
	a := GenotypeAll(g, genotype.Diploid, rand.New(rand.NewSource(42)))
	b := GenotypeAll(g, genotype.Diploid, rand.New(rand.NewSource(42)))
	assert.Equal(t, a[5].RawGenotype, b[5].RawGenotype)
}
