package main

// FuncRow represents a function node of the error propagation graph.
type FuncRow struct {
	ID       int
	FullName string // (*example.com/app.Store).Get or example.com/app.main$1
	Kind     string // local or external
	File     string
	Line     int
}

// CallRow represents an annotated call between two functions.
type CallRow struct {
	Caller         int
	Callee         int
	CallerFullName string
	CalleeFullName string
	Site           string
	Type           string
	IsError        bool
	Propagates     bool
	Category       string
}

// ChainStepRow represents one call of an error propagation chain.
// Step 0 is the call where the error is handled.
type ChainStepRow struct {
	Chain    int
	Step     int
	Depth    int // depth of the whole chain
	FromName string
	ToName   string
	Type     string
	Site     string
}
