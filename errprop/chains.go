package errprop

// ExtractChains returns every error propagation chain of g.
//
// A chain starts at an error-returning call whose error is handled by the
// caller, then follows the calls the callee forwards errors from, down to
// the function where the error originates.
func ExtractChains(g *Graph) (*ChainGraph, ChainStats) {
	cg := &ChainGraph{Name: g.Name}
	var stats ChainStats
	var edges int

	starts := make(map[[2]int]bool)
	for _, start := range g.Edges {
		if !start.IsError || start.Propagates {
			continue
		}
		k := [2]int{start.From, start.To}
		if starts[k] {
			continue
		}
		starts[k] = true

		visited := map[int]bool{start.From: true, start.To: true}
		for _, p := range extend(g, start.To, visited, 1) {
			path := append([]*Edge{start}, p.edges...)
			cg.addChain(g, path, p.depth)

			stats.Count++
			edges += len(path)
			stats.MaxEdges = max(stats.MaxEdges, len(path))
			stats.MaxDepth = max(stats.MaxDepth, p.depth)
		}
	}
	if stats.Count > 0 {
		stats.AverageEdges = float64(edges) / float64(stats.Count)
	}
	return cg, stats
}

type chainPath struct {
	edges []*Edge
	depth int
}

// extend returns the maximal forwarding paths leaving node. depth is the
// number of edges already expanded to reach node.
func extend(g *Graph, node int, visited map[int]bool, depth int) []chainPath {
	var res []chainPath
	targets := make(map[int]bool)
	for _, e := range g.Outgoing(node) {
		if !e.IsError || !e.Propagates || targets[e.To] {
			continue
		}
		targets[e.To] = true

		if visited[e.To] {
			// Closing a cycle: keep the edge, do not expand it.
			res = append(res, chainPath{edges: []*Edge{e}, depth: depth})
			continue
		}
		visited[e.To] = true
		for _, tail := range extend(g, e.To, visited, depth+1) {
			res = append(res, chainPath{edges: append([]*Edge{e}, tail.edges...), depth: tail.depth})
		}
		delete(visited, e.To)
	}
	if len(res) == 0 {
		res = append(res, chainPath{depth: depth})
	}
	return res
}

func (cg *ChainGraph) addChain(g *Graph, path []*Edge, depth int) {
	nodes := make(map[int]int)
	node := func(i int) int {
		if id, ok := nodes[i]; ok {
			return id
		}
		id := cg.addNode(g.Nodes[i].Label)
		nodes[i] = id
		return id
	}

	c := Chain{Depth: depth}
	for _, e := range path {
		c.Edges = append(c.Edges, cg.addEdge(node(e.From), node(e.To), e))
	}
	cg.Chains = append(cg.Chains, c)
}
