package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefineAndAdjacent(t *testing.T) {
	tids := []string{"a", "b", "c"}
	edges := map[[2]string]bool{
		{"a", "b"}: true,
	}
	pred := func(x, y string) bool {
		if x > y {
			x, y = y, x
		}
		return edges[[2]string{x, y}]
	}

	g := Define(tids, pred)
	assert.True(t, g.Adjacent("a", "b"))
	assert.True(t, g.Adjacent("b", "a"))
	assert.False(t, g.Adjacent("a", "c"))
	assert.False(t, g.Adjacent("b", "c"))
	assert.Equal(t, []string{"a", "b", "c"}, g.Nodes())
}

func TestCommunitiesConnectedComponents(t *testing.T) {
	tids := []string{"x", "y", "z", "w"}
	// x-y connected, z-w connected, the two pairs disjoint.
	pred := func(a, b string) bool {
		return (a == "x" && b == "y") || (a == "y" && b == "x") ||
			(a == "z" && b == "w") || (a == "w" && b == "z")
	}
	g := Define(tids, pred)
	communities := g.Communities()
	assert.Len(t, communities, 2)
	assert.Equal(t, []string{"w", "z"}, communities[0])
	assert.Equal(t, []string{"x", "y"}, communities[1])
}

func TestCliquesFindsMaximalCliques(t *testing.T) {
	// Triangle a-b-c, plus d joined only to a.
	tids := []string{"a", "b", "c", "d"}
	edges := map[[2]string]bool{
		{"a", "b"}: true,
		{"a", "c"}: true,
		{"b", "c"}: true,
		{"a", "d"}: true,
	}
	pred := func(x, y string) bool {
		if x > y {
			x, y = y, x
		}
		return edges[[2]string{x, y}]
	}
	g := Define(tids, pred)
	cliques := g.Cliques()

	assert.Len(t, cliques, 2)
	assert.Equal(t, []string{"a", "b", "c"}, cliques[0])
	assert.Equal(t, []string{"a", "d"}, cliques[1])
}

func TestRemoveNode(t *testing.T) {
	tids := []string{"a", "b"}
	g := Define(tids, func(a, b string) bool { return true })
	assert.True(t, g.Adjacent("a", "b"))
	g.RemoveNode("a")
	assert.Equal(t, []string{"b"}, g.Nodes())
	assert.False(t, g.Adjacent("a", "b"))
}

func TestNeighbors(t *testing.T) {
	tids := []string{"a", "b", "c"}
	pred := func(x, y string) bool { return x == "a" || y == "a" }
	g := Define(tids, pred)
	assert.Equal(t, []string{"b", "c"}, g.Neighbors("a"))
	assert.Equal(t, []string{"a"}, g.Neighbors("b"))
}

func TestEmptyGraph(t *testing.T) {
	g := Define(nil, func(a, b string) bool { return false })
	assert.Empty(t, g.Nodes())
	assert.Empty(t, g.Communities())
	assert.Empty(t, g.Cliques())
}
