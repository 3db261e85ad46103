// Package graph implements spec §4.E's define_graph/find_communities
// pair: an undirected graph of transcript ids joined by a caller-supplied
// intersection predicate, connected-component ("community") discovery,
// and maximal-clique enumeration. Grounded on gonum's graph/simple and
// graph/topo packages, already part of the example pack's dependency
// surface, for everything but clique enumeration, which gonum does not
// provide and which is hand-rolled below (Bron-Kerbosch is the
// deliverable here, not ambient plumbing).
package graph

import (
	"sort"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// Predicate reports whether two transcripts (named by tid) should be
// joined by an edge in the graph built by Define.
type Predicate func(a, b string) bool

// Graph wraps a gonum undirected graph keyed by transcript id rather
// than gonum's integer node IDs, since callers think in tids.
type Graph struct {
	g       *simple.UndirectedGraph
	idOf    map[string]int64
	tidOf   map[int64]string
	nextID  int64
}

// Define builds the undirected graph over tids: nodes are every tid in
// tids, edges join any pair for which predicate returns true. Self-pairs
// are never tested; predicate implementations are expected to return
// false for identical transcripts regardless.
func Define(tids []string, predicate Predicate) *Graph {
	g := &Graph{
		g:     simple.NewUndirectedGraph(),
		idOf:  make(map[string]int64, len(tids)),
		tidOf: make(map[int64]string, len(tids)),
	}
	for _, tid := range tids {
		g.addNode(tid)
	}
	for i := 0; i < len(tids); i++ {
		for j := i + 1; j < len(tids); j++ {
			if predicate(tids[i], tids[j]) {
				g.g.SetEdge(g.g.NewEdge(g.node(tids[i]), g.node(tids[j])))
			}
		}
	}
	return g
}

func (g *Graph) addNode(tid string) {
	if _, ok := g.idOf[tid]; ok {
		return
	}
	id := g.nextID
	g.nextID++
	g.idOf[tid] = id
	g.tidOf[id] = tid
	g.g.AddNode(simple.Node(id))
}

func (g *Graph) node(tid string) graph.Node {
	return simple.Node(g.idOf[tid])
}

// Nodes returns every tid currently in the graph, sorted for determinism.
func (g *Graph) Nodes() []string {
	out := make([]string, 0, len(g.idOf))
	for tid := range g.idOf {
		out = append(out, tid)
	}
	sort.Strings(out)
	return out
}

// RemoveNode deletes tid and every edge touching it.
func (g *Graph) RemoveNode(tid string) {
	id, ok := g.idOf[tid]
	if !ok {
		return
	}
	g.g.RemoveNode(id)
	delete(g.idOf, tid)
	delete(g.tidOf, id)
}

// Neighbors returns the tids adjacent to tid, sorted.
func (g *Graph) Neighbors(tid string) []string {
	id, ok := g.idOf[tid]
	if !ok {
		return nil
	}
	it := g.g.From(id)
	var out []string
	for it.Next() {
		out = append(out, g.tidOf[it.Node().ID()])
	}
	sort.Strings(out)
	return out
}

// Adjacent reports whether a and b are joined by an edge.
func (g *Graph) Adjacent(a, b string) bool {
	ai, aok := g.idOf[a]
	bi, bok := g.idOf[b]
	if !aok || !bok {
		return false
	}
	return g.g.HasEdgeBetween(ai, bi)
}

// Communities returns the connected components of the graph, each
// sorted, and the set of components itself sorted by its first member
// for determinism. Grounded on gonum/graph/topo.ConnectedComponents.
func (g *Graph) Communities() [][]string {
	comps := topo.ConnectedComponents(g.g)
	out := make([][]string, 0, len(comps))
	for _, comp := range comps {
		tids := make([]string, 0, len(comp))
		for _, n := range comp {
			tids = append(tids, g.tidOf[n.ID()])
		}
		sort.Strings(tids)
		out = append(out, tids)
	}
	sort.Slice(out, func(i, j int) bool { return out[i][0] < out[j][0] })
	return out
}

// Cliques returns every maximal clique in the graph (Bron-Kerbosch
// without pivoting, sufficient for the locus-scale graphs this package
// operates on), each sorted, and the set of cliques sorted by first
// member for determinism.
func (g *Graph) Cliques() [][]string {
	nodes := g.Nodes()
	adj := make(map[string]map[string]bool, len(nodes))
	for _, n := range nodes {
		adj[n] = make(map[string]bool)
	}
	for i := 0; i < len(nodes); i++ {
		for j := i + 1; j < len(nodes); j++ {
			if g.Adjacent(nodes[i], nodes[j]) {
				adj[nodes[i]][nodes[j]] = true
				adj[nodes[j]][nodes[i]] = true
			}
		}
	}

	var cliques [][]string
	bronKerbosch(nil, nodes, nil, adj, &cliques)

	for _, c := range cliques {
		sort.Strings(c)
	}
	sort.Slice(cliques, func(i, j int) bool { return cliques[i][0] < cliques[j][0] })
	return cliques
}

func bronKerbosch(r, p, x []string, adj map[string]map[string]bool, out *[][]string) {
	if len(p) == 0 && len(x) == 0 {
		if len(r) > 0 {
			clique := make([]string, len(r))
			copy(clique, r)
			*out = append(*out, clique)
		}
		return
	}
	pCopy := append([]string(nil), p...)
	for _, v := range pCopy {
		rNext := append(append([]string(nil), r...), v)
		pNext := intersect(p, adj[v])
		xNext := intersect(x, adj[v])
		bronKerbosch(rNext, pNext, xNext, adj, out)
		p = remove(p, v)
		x = append(x, v)
	}
}

func intersect(set []string, allowed map[string]bool) []string {
	var out []string
	for _, s := range set {
		if allowed[s] {
			out = append(out, s)
		}
	}
	return out
}

func remove(set []string, v string) []string {
	out := make([]string, 0, len(set))
	for _, s := range set {
		if s != v {
			out = append(out, s)
		}
	}
	return out
}
