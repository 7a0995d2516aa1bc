package main

import (
	"context"
	"log"

	"braces.dev/errtrace"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Neo4jLoader loads an error propagation graph into a Neo4j database
// using batch UNWIND queries.
type Neo4jLoader struct {
	driver neo4j.DriverWithContext
	ctx    context.Context
}

// NewNeo4jLoader connects to Neo4j and returns a ready-to-use loader.
func NewNeo4jLoader(ctx context.Context, uri, user, password string) (*Neo4jLoader, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, password, ""))
	if err != nil {
		return nil, errtrace.Errorf("failed to create neo4j driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, errtrace.Errorf("cannot reach neo4j at %s: %w", uri, err)
	}
	return &Neo4jLoader{driver: driver, ctx: ctx}, nil
}

// Close releases the underlying Neo4j driver resources.
func (l *Neo4jLoader) Close() {
	_ = l.driver.Close(l.ctx)
}

// runCypher runs a single Cypher statement with optional parameters.
func (l *Neo4jLoader) runCypher(cypher string, params map[string]any) error {
	_, err := neo4j.ExecuteQuery(l.ctx, l.driver, cypher, params, neo4j.EagerResultTransformer)
	return errtrace.Wrap(err)
}

// CleanGraph removes all previously loaded error propagation nodes and relationships.
func (l *Neo4jLoader) CleanGraph() error {
	log.Println("Cleaning existing error propagation data...")
	queries := []string{
		"MATCH ()-[r:ERR_CALLS]->() DELETE r",
		"MATCH ()-[r:NEXT]->() DELETE r",
		"MATCH (n:ChainStep) DETACH DELETE n",
		"MATCH (n:ErrFunc) DETACH DELETE n",
	}
	for _, q := range queries {
		if err := l.runCypher(q, nil); err != nil {
			return err
		}
	}
	return nil
}

// CreateIndexes ensures the required Neo4j indexes exist.
func (l *Neo4jLoader) CreateIndexes() error {
	log.Println("Creating indexes...")
	indexes := []string{
		"CREATE INDEX err_func_fullname IF NOT EXISTS FOR (n:ErrFunc) ON (n.full_name)",
		"CREATE INDEX chain_step_key IF NOT EXISTS FOR (n:ChainStep) ON (n.chain, n.step)",
	}
	for _, q := range indexes {
		if err := l.runCypher(q, nil); err != nil {
			return err
		}
	}
	return nil
}

// LoadFuncs upserts ErrFunc nodes.
func (l *Neo4jLoader) LoadFuncs(funcs []FuncRow) error {
	log.Printf("Loading %d functions...", len(funcs))
	return l.runCypher(
		`UNWIND $batch AS row
		 MERGE (n:ErrFunc {full_name: row.fullname})
		 SET n.kind = row.kind, n.file = row.file, n.line = row.line`,
		map[string]any{"batch": funcBatch(funcs)},
	)
}

// LoadCalls upserts ERR_CALLS relationships between ErrFunc nodes.
func (l *Neo4jLoader) LoadCalls(calls []CallRow) error {
	log.Printf("Loading %d call edges...", len(calls))
	return l.runCypher(
		`UNWIND $batch AS row
		 MERGE (caller:ErrFunc {full_name: row.caller})
		 MERGE (callee:ErrFunc {full_name: row.callee})
		 MERGE (caller)-[r:ERR_CALLS {site: row.site}]->(callee)
		 SET r.type = row.type, r.is_error = row.is_error,
		     r.propagates = row.propagates, r.category = row.category`,
		map[string]any{"batch": callBatch(calls)},
	)
}

// LoadChains creates a ChainStep node per chain call, linked to the functions
// it connects and to the following step of the same chain.
func (l *Neo4jLoader) LoadChains(steps []ChainStepRow) error {
	log.Printf("Loading %d chain steps...", len(steps))
	err := l.runCypher(
		`UNWIND $batch AS row
		 MERGE (s:ChainStep {chain: row.chain, step: row.step})
		 SET s.depth = row.depth, s.type = row.type, s.site = row.site
		 WITH s, row
		 MATCH (from:ErrFunc {full_name: row.from}), (to:ErrFunc {full_name: row.to})
		 MERGE (s)-[:FROM]->(from)
		 MERGE (s)-[:TO]->(to)`,
		map[string]any{"batch": stepBatch(steps)},
	)
	if err != nil {
		return err
	}
	return l.runCypher(
		`MATCH (a:ChainStep), (b:ChainStep {chain: a.chain, step: a.step + 1})
		 MERGE (a)-[:NEXT]->(b)`,
		nil,
	)
}

func funcBatch(funcs []FuncRow) []map[string]any {
	batch := make([]map[string]any, 0, len(funcs))
	for _, fn := range funcs {
		batch = append(batch, map[string]any{
			"fullname": fn.FullName, "kind": fn.Kind,
			"file": fn.File, "line": fn.Line,
		})
	}
	return batch
}

func callBatch(calls []CallRow) []map[string]any {
	batch := make([]map[string]any, 0, len(calls))
	for _, c := range calls {
		batch = append(batch, map[string]any{
			"caller":     c.CallerFullName,
			"callee":     c.CalleeFullName,
			"site":       c.Site,
			"type":       c.Type,
			"is_error":   c.IsError,
			"propagates": c.Propagates,
			"category":   c.Category,
		})
	}
	return batch
}

func stepBatch(steps []ChainStepRow) []map[string]any {
	batch := make([]map[string]any, 0, len(steps))
	for _, s := range steps {
		batch = append(batch, map[string]any{
			"chain": s.Chain, "step": s.Step, "depth": s.Depth,
			"from": s.FromName, "to": s.ToName,
			"type": s.Type, "site": s.Site,
		})
	}
	return batch
}
