package errprop

import (
	"errors"
	"strings"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/buildssa"
)

// Analyzer reports, in main packages, every call whose error is handled
// by the caller instead of being forwarded, together with the chain of
// functions the error travelled through.
var Analyzer = NewAnalyzer(Options{})

// NewAnalyzer returns an analyzer using opts.
func NewAnalyzer(opts Options) *analysis.Analyzer {
	return &analysis.Analyzer{
		Name: "errprop",
		Doc:  "reports where error propagation chains reachable from main are handled",
		Run: func(pass *analysis.Pass) (interface{}, error) {
			return run(pass, opts)
		},
		Requires: []*analysis.Analyzer{
			buildssa.Analyzer,
		},
	}
}

func run(pass *analysis.Pass, opts Options) (interface{}, error) {
	if opts.Entry == "" && pass.Pkg.Name() != "main" {
		return nil, nil
	}

	ssaInfo := pass.ResultOf[buildssa.Analyzer].(*buildssa.SSA)
	pkg := &Package{Types: pass.Pkg, Files: pass.Files, Info: pass.TypesInfo}
	prog := NewProgram(pass.Pkg.Path(), pass.Fset, ssaInfo.Pkg.Prog, []*Package{pkg}, opts)

	g, err := Build(prog)
	if errors.Is(err, ErrNoEntryPoint) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	chains, _ := ExtractChains(g)
	for _, c := range chains.Chains {
		start := chains.Edges[c.Edges[0]]
		path := chains.Path(c)
		pass.Reportf(start.Pos, "%s handles error propagated along %s", path[0], strings.Join(path, " -> "))
	}
	return nil, nil
}
