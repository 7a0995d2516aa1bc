package errprop

import (
	"go/ast"
	"go/token"
)

// NodeKind tells whether a function's body is available for traversal.
type NodeKind int

const (
	// LocalFunc is declared in the analyzed module and has syntax.
	LocalFunc NodeKind = iota
	// ExternalFunc is known only by its symbol.
	ExternalFunc
)

func (k NodeKind) String() string {
	switch k {
	case LocalFunc:
		return "local"
	case ExternalFunc:
		return "external"
	default:
		return "unknown"
	}
}

// Node represents a Go function, method or closure in the call graph.
type Node struct {
	ID     int
	Label  string // fully qualified name, e.g. (*example.com/app.Store).Get
	Kind   NodeKind
	Panics bool // reserved, never set
	Pos    token.Position

	key any // *ast.FuncDecl / *ast.FuncLit for local nodes, symbol string for external ones
}

// Edge represents one call site between two nodes.
type Edge struct {
	From int
	To   int
	Site token.Position

	// Call is the originating call expression, used by the annotation pass.
	Call *ast.CallExpr

	Type       string // callee return type or its error type, set during annotation
	Propagates bool   // the result is forwarded as the caller's own error result
	IsError    bool   // the return type carries an error

	pkg *Package
}

// EdgeCategory is the rendering class of an edge.
type EdgeCategory int

const (
	Plain EdgeCategory = iota
	Forwarding
	ErrorOnly
	ForwardingError
)

func (c EdgeCategory) String() string {
	switch c {
	case Forwarding:
		return "forwarding"
	case ErrorOnly:
		return "error"
	case ForwardingError:
		return "forwarding-error"
	default:
		return "plain"
	}
}

// Category classifies e by its IsError and Propagates flags.
func (e *Edge) Category() EdgeCategory {
	switch {
	case e.IsError && e.Propagates:
		return ForwardingError
	case e.IsError:
		return ErrorOnly
	case e.Propagates:
		return Forwarding
	default:
		return Plain
	}
}

// Graph is a call graph stored as an append-only node arena.
// Edges reference nodes by index, so nodes are never reordered or removed.
type Graph struct {
	Name  string
	Nodes []*Node
	Edges []*Edge

	// Unresolved counts call sites skipped because their target is dynamic.
	Unresolved int

	index map[any]int
	out   map[int][]int
	in    map[int][]int
}

// NewGraph creates an empty graph labelled with the program name.
func NewGraph(name string) *Graph {
	return &Graph{
		Name:  name,
		index: make(map[any]int),
		out:   make(map[int][]int),
		in:    make(map[int][]int),
	}
}

// AddNode registers a node and returns its index.
func (g *Graph) AddNode(label string, kind NodeKind, key any) int {
	id := len(g.Nodes)
	g.Nodes = append(g.Nodes, &Node{ID: id, Label: label, Kind: kind, key: key})
	if key != nil {
		g.index[key] = id
	}
	return id
}

// Lookup returns the index of the node registered under key.
func (g *Graph) Lookup(key any) (int, bool) {
	id, ok := g.index[key]
	return id, ok
}

// AddEdge appends e. Both endpoints must already be in the graph.
func (g *Graph) AddEdge(e *Edge) {
	if e.From < 0 || e.From >= len(g.Nodes) || e.To < 0 || e.To >= len(g.Nodes) {
		panic("errprop: edge references a node outside the graph")
	}
	i := len(g.Edges)
	g.Edges = append(g.Edges, e)
	g.out[e.From] = append(g.out[e.From], i)
	g.in[e.To] = append(g.in[e.To], i)
}

// Outgoing returns the edges leaving node in insertion order.
func (g *Graph) Outgoing(node int) []*Edge {
	return g.edgesAt(g.out[node])
}

// Incoming returns the edges entering node in insertion order.
func (g *Graph) Incoming(node int) []*Edge {
	return g.edgesAt(g.in[node])
}

func (g *Graph) edgesAt(idx []int) []*Edge {
	res := make([]*Edge, 0, len(idx))
	for _, i := range idx {
		res = append(res, g.Edges[i])
	}
	return res
}

// ChainNode is a copy of a call graph node label inside a chain.
type ChainNode struct {
	ID    int
	Label string
}

// ChainEdge is a copy of a call edge's type label inside a chain.
type ChainEdge struct {
	From  int
	To    int
	Label string
	Site  token.Position
	Pos   token.Pos
}

// Chain lists the chain graph edges that make up one propagation chain, in order.
type Chain struct {
	Edges []int
	Depth int
}

// ChainGraph holds every propagation chain as a self-contained path.
type ChainGraph struct {
	Name   string
	Nodes  []ChainNode
	Edges  []ChainEdge
	Chains []Chain
}

func (g *ChainGraph) addNode(label string) int {
	id := len(g.Nodes)
	g.Nodes = append(g.Nodes, ChainNode{ID: id, Label: label})
	return id
}

func (g *ChainGraph) addEdge(from, to int, src *Edge) int {
	id := len(g.Edges)
	e := ChainEdge{From: from, To: to, Label: src.Type, Site: src.Site}
	if src.Call != nil {
		e.Pos = src.Call.Lparen
	}
	g.Edges = append(g.Edges, e)
	return id
}

// Path returns the node labels of chain c from the handling function down to the origin.
func (g *ChainGraph) Path(c Chain) []string {
	if len(c.Edges) == 0 {
		return nil
	}
	path := []string{g.Nodes[g.Edges[c.Edges[0]].From].Label}
	for _, i := range c.Edges {
		path = append(path, g.Nodes[g.Edges[i].To].Label)
	}
	return path
}

// ChainStats aggregates the extracted chains.
type ChainStats struct {
	Count        int
	MaxEdges     int
	MaxDepth     int
	AverageEdges float64
}
