package main

import (
	"fmt"
	"go/token"
	"path/filepath"
	"strings"

	"go-errprop/errprop"
)

// Collector flattens the call graph and its chains into rows shared by the
// SQLite and Neo4j exports.
type Collector struct {
	Root string // module root directory

	Funcs      []FuncRow
	Calls      []CallRow
	Steps      []ChainStepRow
	Stats      errprop.ChainStats
	Unresolved int
}

// NewCollector creates a Collector reporting positions relative to root.
func NewCollector(root string) *Collector {
	return &Collector{Root: root}
}

// relPath strips the module root from a file path.
func (c *Collector) relPath(path string) string {
	if c.Root == "" || path == "" {
		return path
	}
	rel, err := filepath.Rel(c.Root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return filepath.ToSlash(rel)
}

func (c *Collector) site(pos token.Position) string {
	if !pos.IsValid() {
		return ""
	}
	return fmt.Sprintf("%s:%d", c.relPath(pos.Filename), pos.Line)
}

// CollectGraph records every node and edge of g.
func (c *Collector) CollectGraph(g *errprop.Graph) {
	c.Unresolved = g.Unresolved
	for _, n := range g.Nodes {
		c.Funcs = append(c.Funcs, FuncRow{
			ID:       n.ID,
			FullName: n.Label,
			Kind:     n.Kind.String(),
			File:     c.relPath(n.Pos.Filename),
			Line:     n.Pos.Line,
		})
	}
	for _, e := range g.Edges {
		c.Calls = append(c.Calls, CallRow{
			Caller:         e.From,
			Callee:         e.To,
			CallerFullName: g.Nodes[e.From].Label,
			CalleeFullName: g.Nodes[e.To].Label,
			Site:           c.site(e.Site),
			Type:           e.Type,
			IsError:        e.IsError,
			Propagates:     e.Propagates,
			Category:       e.Category().String(),
		})
	}
}

// CollectChains records every step of the chains in cg.
func (c *Collector) CollectChains(cg *errprop.ChainGraph, stats errprop.ChainStats) {
	c.Stats = stats
	for i, chain := range cg.Chains {
		for step, idx := range chain.Edges {
			e := cg.Edges[idx]
			c.Steps = append(c.Steps, ChainStepRow{
				Chain:    i,
				Step:     step,
				Depth:    chain.Depth,
				FromName: cg.Nodes[e.From].Label,
				ToName:   cg.Nodes[e.To].Label,
				Type:     e.Label,
				Site:     c.site(e.Site),
			})
		}
	}
}
