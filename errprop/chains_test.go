package errprop

import (
	"reflect"
	"testing"
)

type testEdge struct {
	from, to           string
	isError, propagate bool
}

// newTestGraph builds a graph with one external node per distinct label.
func newTestGraph(edges ...testEdge) *Graph {
	g := NewGraph("test")
	node := func(label string) int {
		if id, ok := g.Lookup(label); ok {
			return id
		}
		return g.AddNode(label, ExternalFunc, label)
	}
	for _, e := range edges {
		g.AddEdge(&Edge{
			From:       node(e.from),
			To:         node(e.to),
			Type:       "error",
			IsError:    e.isError,
			Propagates: e.propagate,
		})
	}
	return g
}

func chainPaths(cg *ChainGraph) [][]string {
	var res [][]string
	for _, c := range cg.Chains {
		res = append(res, cg.Path(c))
	}
	return res
}

func TestExtractChains(t *testing.T) {
	tests := []struct {
		name  string
		edges []testEdge
		paths [][]string
		stats ChainStats
	}{
		{
			name: "stops at non-error edge",
			edges: []testEdge{
				{"a", "b", true, false},
				{"b", "c", true, true},
				{"c", "d", false, false},
			},
			paths: [][]string{{"a", "b", "c"}},
			stats: ChainStats{Count: 1, MaxEdges: 2, MaxDepth: 2, AverageEdges: 2},
		},
		{
			name: "no error edges",
			edges: []testEdge{
				{"a", "b", false, false},
				{"b", "c", false, true},
			},
		},
		{
			name: "forwarding edge alone starts nothing",
			edges: []testEdge{
				{"a", "b", true, true},
			},
		},
		{
			name: "single start edge",
			edges: []testEdge{
				{"main", "open", true, false},
			},
			paths: [][]string{{"main", "open"}},
			stats: ChainStats{Count: 1, MaxEdges: 1, MaxDepth: 1, AverageEdges: 1},
		},
		{
			name: "branches",
			edges: []testEdge{
				{"a", "b", true, false},
				{"b", "c", true, true},
				{"b", "d", true, true},
				{"d", "e", true, true},
			},
			paths: [][]string{{"a", "b", "c"}, {"a", "b", "d", "e"}},
			stats: ChainStats{Count: 2, MaxEdges: 3, MaxDepth: 3, AverageEdges: 2.5},
		},
		{
			name: "cycle is closed once",
			edges: []testEdge{
				{"x", "a", true, false},
				{"a", "b", true, true},
				{"b", "a", true, true},
			},
			paths: [][]string{{"x", "a", "b", "a"}},
			stats: ChainStats{Count: 1, MaxEdges: 3, MaxDepth: 2, AverageEdges: 3},
		},
		{
			name: "self loop",
			edges: []testEdge{
				{"x", "a", true, false},
				{"a", "a", true, true},
			},
			paths: [][]string{{"x", "a", "a"}},
			stats: ChainStats{Count: 1, MaxEdges: 2, MaxDepth: 1, AverageEdges: 2},
		},
		{
			name: "duplicate call sites",
			edges: []testEdge{
				{"a", "b", true, false},
				{"a", "b", true, false},
				{"b", "c", true, true},
				{"b", "c", true, true},
			},
			paths: [][]string{{"a", "b", "c"}},
			stats: ChainStats{Count: 1, MaxEdges: 2, MaxDepth: 2, AverageEdges: 2},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cg, stats := ExtractChains(newTestGraph(tt.edges...))
			if got := chainPaths(cg); !reflect.DeepEqual(got, tt.paths) {
				t.Errorf("chains = %v, want %v", got, tt.paths)
			}
			if stats != tt.stats {
				t.Errorf("stats = %+v, want %+v", stats, tt.stats)
			}
		})
	}
}

func TestExtractChainsCopiesNodes(t *testing.T) {
	g := newTestGraph(
		testEdge{"a", "b", true, false},
		testEdge{"b", "c", true, true},
		testEdge{"b", "d", true, true},
	)
	cg, _ := ExtractChains(g)
	if cg.Name != "test" {
		t.Errorf("Name = %q, want test", cg.Name)
	}
	// Two chains of three nodes each; nodes are not shared between chains.
	if len(cg.Nodes) != 6 || len(cg.Edges) != 4 {
		t.Errorf("got %d nodes and %d edges, want 6 and 4", len(cg.Nodes), len(cg.Edges))
	}
	for _, e := range cg.Edges {
		if e.Label != "error" {
			t.Errorf("edge label = %q, want error", e.Label)
		}
	}
}
