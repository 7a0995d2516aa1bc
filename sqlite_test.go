package main

import (
	"path/filepath"
	"testing"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"go-errprop/errprop"
)

func TestWriteSQLite(t *testing.T) {
	g := sampleGraph()
	chains, stats := errprop.ExtractChains(g)
	c := NewCollector("")
	c.CollectGraph(g)
	c.CollectChains(chains, stats)

	path := filepath.Join(t.TempDir(), "graph.db")
	if err := WriteSQLite(path, c); err != nil {
		t.Fatalf("WriteSQLite() error = %v", err)
	}
	// A second run replaces the database.
	if err := WriteSQLite(path, c); err != nil {
		t.Fatalf("WriteSQLite() rewrite error = %v", err)
	}

	conn, err := sqlite.OpenConn(path, sqlite.OpenReadOnly)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	count := func(query string) int {
		t.Helper()
		var n int
		err := sqlitex.Execute(conn, query, &sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				n = stmt.ColumnInt(0)
				return nil
			},
		})
		if err != nil {
			t.Fatalf("%s: %v", query, err)
		}
		return n
	}

	tests := []struct {
		query string
		want  int
	}{
		{"SELECT count(*) FROM funcs", 5},
		{"SELECT count(*) FROM calls", 3},
		{"SELECT count(*) FROM calls WHERE category = 'forwarding-error'", 1},
		{"SELECT count(*) FROM chain_steps", 2},
		{"SELECT count FROM chain_stats", 1},
		{"SELECT max_depth FROM chain_stats", 2},
	}
	for _, tt := range tests {
		if got := count(tt.query); got != tt.want {
			t.Errorf("%s = %d, want %d", tt.query, got, tt.want)
		}
	}
}
