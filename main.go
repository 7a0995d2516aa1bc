package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"braces.dev/errtrace"

	"go-errprop/errprop"
)

func main() {
	var (
		configPath = flag.String("config", "", "YAML configuration file")
		dir        = flag.String("dir", ".", "Project root directory")
		tests      = flag.Bool("tests", false, "Include test files in the analysed packages")
		entry      = flag.String("entry", "", "Entry function, e.g. example.com/app.main (default: the main function)")
		dotPath    = flag.String("dot", "", "Write the call graph in DOT format to this file")
		chainsPath = flag.String("chains-dot", "", "Write the propagation chains in DOT format to this file")
		sqlitePath = flag.String("sqlite", "", "Write the graph and chains to this SQLite database")
		neo4jURI   = flag.String("neo4j-uri", "", "Neo4j bolt URI, e.g. bolt://localhost:7687 (enables the Neo4j export)")
		neo4jUser  = flag.String("neo4j-user", "neo4j", "Neo4j username")
		neo4jPass  = flag.String("neo4j-pass", "", "Neo4j password")
		clean      = flag.Bool("clean", false, "Clean existing error propagation data before loading into Neo4j")
		dispatch   errprop.Dispatch
	)
	flag.Var(&dispatch, "dispatch", "Resolution of dynamic calls: static or vta")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] [packages]\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg := defaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = LoadConfig(*configPath); err != nil {
			log.Fatalf("Cannot read config: %v", err)
		}
	}
	// Explicit flags win over the configuration file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "entry":
			cfg.Entry = *entry
		case "dispatch":
			cfg.Dispatch = dispatch
		case "dot":
			cfg.Output.Dot = *dotPath
		case "chains-dot":
			cfg.Output.ChainsDot = *chainsPath
		case "sqlite":
			cfg.Output.SQLite = *sqlitePath
		case "neo4j-uri":
			cfg.Neo4j.URI = *neo4jURI
		case "neo4j-user":
			cfg.Neo4j.User = *neo4jUser
		case "neo4j-pass":
			cfg.Neo4j.Password = *neo4jPass
		case "clean":
			cfg.Neo4j.Clean = *clean
		}
	})
	if cfg.Neo4j.URI != "" && cfg.Neo4j.Password == "" {
		fmt.Fprintln(os.Stderr, "Error: --neo4j-pass is required with --neo4j-uri")
		flag.Usage()
		os.Exit(1)
	}

	if err := run(context.Background(), cfg, *dir, flag.Args(), *tests); err != nil {
		log.Fatal(errtrace.FormatString(err))
	}
}

func run(ctx context.Context, cfg *Config, dir string, patterns []string, tests bool) error {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return errtrace.Wrap(err)
	}
	modulePath, root, err := errprop.FindModule(absDir)
	if err != nil {
		return errtrace.Errorf("cannot detect Go module: %w", err)
	}
	log.Printf("Module: %s", modulePath)
	log.Printf("Dir: %s", absDir)

	log.Println("Loading packages and building SSA (this may take a minute)...")
	prog, err := errprop.Load(ctx, errprop.LoadConfig{
		Dir:        absDir,
		Patterns:   patterns,
		ModulePath: modulePath,
		Tests:      tests,
		Options:    cfg.Options(),
	})
	if err != nil {
		return errtrace.Wrap(err)
	}
	log.Printf("Loaded %d module packages", len(prog.Packages))

	log.Printf("Building error propagation graph (dispatch: %s)...", cfg.Dispatch)
	graph, err := errprop.Build(prog)
	if err != nil {
		return errtrace.Wrap(err)
	}
	chains, stats := errprop.ExtractChains(graph)

	log.Printf("Graph: %d functions, %d calls, %d unresolved call sites",
		len(graph.Nodes), len(graph.Edges), graph.Unresolved)
	log.Printf("Chains: count=%d max_edges=%d max_depth=%d avg=%.2f",
		stats.Count, stats.MaxEdges, stats.MaxDepth, stats.AverageEdges)

	if cfg.Output.Dot != "" {
		log.Printf("Writing call graph to %s...", cfg.Output.Dot)
		if err := writeDot(cfg.Output.Dot, RenderGraph(graph)); err != nil {
			return err
		}
	}
	if cfg.Output.ChainsDot != "" {
		log.Printf("Writing chains to %s...", cfg.Output.ChainsDot)
		if err := writeDot(cfg.Output.ChainsDot, RenderChains(chains)); err != nil {
			return err
		}
	}

	collector := NewCollector(root)
	collector.CollectGraph(graph)
	collector.CollectChains(chains, stats)

	if cfg.Output.SQLite != "" {
		if err := WriteSQLite(cfg.Output.SQLite, collector); err != nil {
			return err
		}
	}
	if cfg.Neo4j.URI != "" {
		if err := loadNeo4j(ctx, cfg.Neo4j, collector); err != nil {
			return err
		}
		log.Println("")
		log.Println("Useful Cypher queries:")
		log.Println("  // Longest chains")
		log.Println("  MATCH (s:ChainStep) RETURN s.chain, max(s.step) + 1 AS calls ORDER BY calls DESC LIMIT 20")
		log.Println("")
		log.Println("  // Where errors of a function are handled")
		log.Println("  MATCH (h:ErrFunc)-[:ERR_CALLS {category: 'error'}]->(f:ErrFunc) RETURN h.full_name, f.full_name")
		log.Println("")
		log.Println("  // Functions forwarding the most errors")
		log.Println("  MATCH (f:ErrFunc)-[r:ERR_CALLS {category: 'forwarding-error'}]->() RETURN f.full_name, count(r) AS n ORDER BY n DESC")
	}

	log.Println("Done!")
	return nil
}

func loadNeo4j(ctx context.Context, cfg Neo4jConfig, c *Collector) error {
	loader, err := NewNeo4jLoader(ctx, cfg.URI, cfg.User, cfg.Password)
	if err != nil {
		return err
	}
	defer loader.Close()

	if cfg.Clean {
		if err := loader.CleanGraph(); err != nil {
			return err
		}
	}
	if err := loader.CreateIndexes(); err != nil {
		return err
	}
	if err := loader.LoadFuncs(c.Funcs); err != nil {
		return err
	}
	if err := loader.LoadCalls(c.Calls); err != nil {
		return err
	}
	return loader.LoadChains(c.Steps)
}
