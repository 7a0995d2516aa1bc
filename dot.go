package main

import (
	"fmt"
	"os"
	"strings"

	"braces.dev/errtrace"
	"github.com/emicklei/dot"

	"go-errprop/errprop"
)

// graphID turns a program name into a DOT identifier.
func graphID(name string, chains bool) string {
	var b strings.Builder
	b.WriteString("error_propagation_")
	for _, r := range name {
		if r == '_' || ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') || ('0' <= r && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	if chains {
		b.WriteString("_chains")
	}
	return b.String()
}

// styleEdge colours an edge by category:
// purple forwards an error, red returns one, blue forwards anything else.
func styleEdge(e dot.Edge, c errprop.EdgeCategory) {
	switch c {
	case errprop.ForwardingError:
		e.Attr("color", "purple")
	case errprop.ErrorOnly:
		e.Attr("color", "red")
	case errprop.Forwarding:
		e.Attr("color", "blue")
	default:
		e.Dotted()
	}
}

// RenderGraph draws the nodes of g that take part in at least one call.
func RenderGraph(g *errprop.Graph) *dot.Graph {
	out := dot.NewGraph(dot.Directed)
	out.ID(graphID(g.Name, false))
	node := func(i int) dot.Node {
		return out.Node(fmt.Sprintf("n%d", i)).Label(g.Nodes[i].Label)
	}
	for _, e := range g.Edges {
		edge := out.Edge(node(e.From), node(e.To), e.Type)
		styleEdge(edge, e.Category())
	}
	return out
}

// RenderChains draws every chain as its own path. The first call of a chain
// handles the error, the following ones forward it.
func RenderChains(cg *errprop.ChainGraph) *dot.Graph {
	out := dot.NewGraph(dot.Directed)
	out.ID(graphID(cg.Name, true))
	node := func(i int) dot.Node {
		return out.Node(fmt.Sprintf("n%d", i)).Label(cg.Nodes[i].Label)
	}
	for _, c := range cg.Chains {
		for step, idx := range c.Edges {
			e := cg.Edges[idx]
			edge := out.Edge(node(e.From), node(e.To), e.Label)
			if step == 0 {
				styleEdge(edge, errprop.ErrorOnly)
			} else {
				styleEdge(edge, errprop.ForwardingError)
			}
		}
	}
	return out
}

func writeDot(path string, g *dot.Graph) error {
	return errtrace.Wrap(os.WriteFile(path, []byte(g.String()), 0o644))
}
