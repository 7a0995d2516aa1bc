package main

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"go-errprop/errprop"
)

func TestParseConfig(t *testing.T) {
	const data = `
entry: example.com/app.run
dispatch: vta
result_types:
  - type: example.com/app/result.Result
    arg: 1
future_types:
  - type: example.com/app/async.Future
    arg: 0
ignore_packages:
  - log
output:
  dot: graph.dot
  chains_dot: chains.dot
  sqlite: graph.db
neo4j:
  uri: bolt://localhost:7687
  password: secret
  clean: true
`
	cfg, err := parseConfig([]byte(data))
	if err != nil {
		t.Fatalf("parseConfig() error = %v", err)
	}

	want := errprop.Options{
		Entry:    "example.com/app.run",
		Dispatch: errprop.DispatchVTA,
		Classifier: errprop.Classifier{
			ResultTypes: []errprop.TypeRef{{Path: "example.com/app/result.Result", Arg: 1}},
			FutureTypes: []errprop.TypeRef{{Path: "example.com/app/async.Future", Arg: 0}},
		},
		IgnorePackages: []string{"log"},
	}
	if got := cfg.Options(); !reflect.DeepEqual(got, want) {
		t.Errorf("Options() = %+v, want %+v", got, want)
	}
	if cfg.Output != (OutputConfig{Dot: "graph.dot", ChainsDot: "chains.dot", SQLite: "graph.db"}) {
		t.Errorf("Output = %+v", cfg.Output)
	}
	wantNeo4j := Neo4jConfig{URI: "bolt://localhost:7687", User: "neo4j", Password: "secret", Clean: true}
	if cfg.Neo4j != wantNeo4j {
		t.Errorf("Neo4j = %+v, want %+v", cfg.Neo4j, wantNeo4j)
	}
}

func TestParseConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"unknown key", "entrypoint: main\n"},
		{"bad dispatch", "dispatch: pointer\n"},
		{"bad type ref", "result_types: result.Result\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parseConfig([]byte(tt.data)); err == nil {
				t.Errorf("parseConfig(%q) succeeded, want error", tt.data)
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "errprop.yaml")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if !reflect.DeepEqual(cfg, defaultConfig()) {
		t.Errorf("empty config = %+v, want defaults", cfg)
	}

	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("LoadConfig() of a missing file succeeded")
	}
}
