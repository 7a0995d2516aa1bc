package main

import (
	"log"
	"os"

	"braces.dev/errtrace"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

const sqliteSchema = `
CREATE TABLE funcs (
    id INTEGER PRIMARY KEY,
    full_name TEXT NOT NULL,
    kind TEXT NOT NULL,
    file TEXT,
    line INTEGER
);

CREATE TABLE calls (
    caller INTEGER NOT NULL REFERENCES funcs(id),
    callee INTEGER NOT NULL REFERENCES funcs(id),
    site TEXT,
    type TEXT NOT NULL,
    is_error INTEGER NOT NULL,
    propagates INTEGER NOT NULL,
    category TEXT NOT NULL
);

CREATE TABLE chain_steps (
    chain INTEGER NOT NULL,
    step INTEGER NOT NULL,
    depth INTEGER NOT NULL,
    from_func TEXT NOT NULL,
    to_func TEXT NOT NULL,
    type TEXT NOT NULL,
    site TEXT,
    PRIMARY KEY (chain, step)
);

CREATE TABLE chain_stats (
    count INTEGER NOT NULL,
    max_edges INTEGER NOT NULL,
    max_depth INTEGER NOT NULL,
    average_edges REAL NOT NULL,
    unresolved INTEGER NOT NULL
);

CREATE INDEX calls_caller ON calls(caller);
CREATE INDEX calls_callee ON calls(callee);
`

// WriteSQLite replaces the database at path with the collected rows.
func WriteSQLite(path string, c *Collector) (err error) {
	log.Printf("Writing SQLite to %s...", path)
	_ = os.Remove(path) // ignore if doesn't exist

	conn, err := sqlite.OpenConn(path, sqlite.OpenCreate, sqlite.OpenReadWrite, sqlite.OpenWAL)
	if err != nil {
		return errtrace.Errorf("open sqlite: %w", err)
	}
	defer func() { _ = conn.Close() }()

	if err := sqlitex.ExecuteScript(conn, sqliteSchema, nil); err != nil {
		return errtrace.Errorf("create tables: %w", err)
	}

	endFn, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return errtrace.Errorf("begin tx: %w", err)
	}
	defer endFn(&err)

	if err := insertFuncs(conn, c.Funcs); err != nil {
		return err
	}
	if err := insertCalls(conn, c.Calls); err != nil {
		return err
	}
	if err := insertChainSteps(conn, c.Steps); err != nil {
		return err
	}
	return errtrace.Wrap(sqlitex.Execute(conn,
		`INSERT INTO chain_stats (count, max_edges, max_depth, average_edges, unresolved) VALUES (?, ?, ?, ?, ?)`,
		&sqlitex.ExecOptions{Args: []any{c.Stats.Count, c.Stats.MaxEdges, c.Stats.MaxDepth, c.Stats.AverageEdges, c.Unresolved}},
	))
}

func insertFuncs(conn *sqlite.Conn, funcs []FuncRow) error {
	stmt, err := conn.Prepare(`INSERT INTO funcs (id, full_name, kind, file, line) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return errtrace.Errorf("prepare func insert: %w", err)
	}
	defer func() { _ = stmt.Finalize() }()

	for _, f := range funcs {
		stmt.BindInt64(1, int64(f.ID))
		stmt.BindText(2, f.FullName)
		stmt.BindText(3, f.Kind)
		bindTextOrNull(stmt, 4, f.File)
		bindIntOrNull(stmt, 5, f.Line)
		if _, err := stmt.Step(); err != nil {
			return errtrace.Errorf("insert func %s: %w", f.FullName, err)
		}
		_ = stmt.Reset()
	}
	log.Printf("Inserted %d functions", len(funcs))
	return nil
}

func insertCalls(conn *sqlite.Conn, calls []CallRow) error {
	stmt, err := conn.Prepare(`INSERT INTO calls (caller, callee, site, type, is_error, propagates, category) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return errtrace.Errorf("prepare call insert: %w", err)
	}
	defer func() { _ = stmt.Finalize() }()

	for _, c := range calls {
		stmt.BindInt64(1, int64(c.Caller))
		stmt.BindInt64(2, int64(c.Callee))
		bindTextOrNull(stmt, 3, c.Site)
		stmt.BindText(4, c.Type)
		stmt.BindBool(5, c.IsError)
		stmt.BindBool(6, c.Propagates)
		stmt.BindText(7, c.Category)
		if _, err := stmt.Step(); err != nil {
			return errtrace.Errorf("insert call %s -> %s: %w", c.CallerFullName, c.CalleeFullName, err)
		}
		_ = stmt.Reset()
	}
	log.Printf("Inserted %d calls", len(calls))
	return nil
}

func insertChainSteps(conn *sqlite.Conn, steps []ChainStepRow) error {
	stmt, err := conn.Prepare(`INSERT INTO chain_steps (chain, step, depth, from_func, to_func, type, site) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return errtrace.Errorf("prepare chain step insert: %w", err)
	}
	defer func() { _ = stmt.Finalize() }()

	for _, s := range steps {
		stmt.BindInt64(1, int64(s.Chain))
		stmt.BindInt64(2, int64(s.Step))
		stmt.BindInt64(3, int64(s.Depth))
		stmt.BindText(4, s.FromName)
		stmt.BindText(5, s.ToName)
		stmt.BindText(6, s.Type)
		bindTextOrNull(stmt, 7, s.Site)
		if _, err := stmt.Step(); err != nil {
			return errtrace.Errorf("insert chain %d step %d: %w", s.Chain, s.Step, err)
		}
		_ = stmt.Reset()
	}
	log.Printf("Inserted %d chain steps", len(steps))
	return nil
}

func bindTextOrNull(stmt *sqlite.Stmt, param int, v string) {
	if v == "" {
		stmt.BindNull(param)
		return
	}
	stmt.BindText(param, v)
}

func bindIntOrNull(stmt *sqlite.Stmt, param int, v int) {
	if v == 0 {
		stmt.BindNull(param)
		return
	}
	stmt.BindInt64(param, int64(v))
}
