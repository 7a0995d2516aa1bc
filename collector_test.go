package main

import (
	"go/token"
	"reflect"
	"testing"

	"go-errprop/errprop"
)

func TestCollector(t *testing.T) {
	g := errprop.NewGraph("example.com/app")
	entry := g.AddNode("example.com/app.main", errprop.LocalFunc, "main")
	g.Nodes[entry].Pos = token.Position{Filename: "/src/app/main.go", Line: 10}
	open := g.AddNode("os.Open", errprop.ExternalFunc, "os.Open")
	g.AddEdge(&errprop.Edge{
		From:    entry,
		To:      open,
		Site:    token.Position{Filename: "/src/app/main.go", Line: 12, Column: 3},
		Type:    "error",
		IsError: true,
	})
	g.Unresolved = 2

	c := NewCollector("/src/app")
	c.CollectGraph(g)
	chains, stats := errprop.ExtractChains(g)
	c.CollectChains(chains, stats)

	wantFuncs := []FuncRow{
		{ID: 0, FullName: "example.com/app.main", Kind: "local", File: "main.go", Line: 10},
		{ID: 1, FullName: "os.Open", Kind: "external"},
	}
	if !reflect.DeepEqual(c.Funcs, wantFuncs) {
		t.Errorf("Funcs = %+v, want %+v", c.Funcs, wantFuncs)
	}
	wantCalls := []CallRow{{
		Caller: 0, Callee: 1,
		CallerFullName: "example.com/app.main", CalleeFullName: "os.Open",
		Site: "main.go:12", Type: "error", IsError: true, Category: "error",
	}}
	if !reflect.DeepEqual(c.Calls, wantCalls) {
		t.Errorf("Calls = %+v, want %+v", c.Calls, wantCalls)
	}
	wantSteps := []ChainStepRow{{
		Chain: 0, Step: 0, Depth: 1,
		FromName: "example.com/app.main", ToName: "os.Open",
		Type: "error", Site: "main.go:12",
	}}
	if !reflect.DeepEqual(c.Steps, wantSteps) {
		t.Errorf("Steps = %+v, want %+v", c.Steps, wantSteps)
	}
	if c.Unresolved != 2 || c.Stats.Count != 1 {
		t.Errorf("Unresolved = %d, Stats = %+v", c.Unresolved, c.Stats)
	}
}

func TestCollectorRelPath(t *testing.T) {
	c := NewCollector("/src/app")
	tests := []struct {
		in, want string
	}{
		{"/src/app/internal/store/store.go", "internal/store/store.go"},
		{"/usr/lib/go/src/os/file.go", "/usr/lib/go/src/os/file.go"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := c.relPath(tt.in); got != tt.want {
			t.Errorf("relPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
