package errprop

import (
	"errors"
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"sort"
	"strings"

	"golang.org/x/tools/go/callgraph"
	"golang.org/x/tools/go/callgraph/vta"
	"golang.org/x/tools/go/ssa"
)

// ErrNoEntryPoint is returned when the entry function cannot be found
// among the local packages.
var ErrNoEntryPoint = errors.New("no entry point")

// Package is a type-checked package whose syntax is available for traversal.
type Package struct {
	Types *types.Package
	Files []*ast.File
	Info  *types.Info
}

type declSite struct {
	decl *ast.FuncDecl
	pkg  *Package
}

// Program is the set of local packages analysed together with the SSA form
// of the whole program.
type Program struct {
	Name     string
	Fset     *token.FileSet
	SSA      *ssa.Program
	Packages []*Package

	opts Options

	funcs   []*types.Func
	decls   map[*types.Func]declSite
	lits    map[*ast.FuncLit]*Package
	sites   map[token.Pos]ssa.CallInstruction
	ignored map[string]bool

	// dynamic holds the VTA callees per call site, only with DispatchVTA.
	dynamic map[ssa.CallInstruction][]*ssa.Function
}

// NewProgram indexes the declarations of pkgs and the call sites of their SSA functions.
// The SSA program must already be built.
func NewProgram(name string, fset *token.FileSet, prog *ssa.Program, pkgs []*Package, opts Options) *Program {
	p := &Program{
		Name:     name,
		Fset:     fset,
		SSA:      prog,
		Packages: pkgs,
		opts:     opts,
		decls:    make(map[*types.Func]declSite),
		lits:     make(map[*ast.FuncLit]*Package),
		sites:    make(map[token.Pos]ssa.CallInstruction),
		ignored:  make(map[string]bool),
	}
	for _, path := range opts.IgnorePackages {
		p.ignored[path] = true
	}
	for _, pkg := range pkgs {
		p.indexSyntax(pkg)
	}
	p.indexSites()
	if opts.Dispatch == DispatchVTA {
		p.indexDynamic()
	}
	return p
}

func (p *Program) indexSyntax(pkg *Package) {
	for _, file := range pkg.Files {
		ast.Inspect(file, func(n ast.Node) bool {
			switch n := n.(type) {
			case *ast.FuncDecl:
				if n.Body == nil {
					return false
				}
				if obj, ok := pkg.Info.Defs[n.Name].(*types.Func); ok {
					p.funcs = append(p.funcs, obj)
					p.decls[obj] = declSite{decl: n, pkg: pkg}
				}
			case *ast.FuncLit:
				p.lits[n] = pkg
			}
			return true
		})
	}
}

// indexSites records every call instruction of the local SSA functions by the
// position of its opening parenthesis.
func (p *Program) indexSites() {
	if p.SSA == nil {
		return
	}
	for _, fn := range p.localFunctions() {
		for _, b := range fn.Blocks {
			for _, instr := range b.Instrs {
				site, ok := instr.(ssa.CallInstruction)
				if !ok {
					continue
				}
				pos := site.Common().Pos()
				if !pos.IsValid() {
					continue
				}
				if prev, ok := p.sites[pos]; ok && !preferSite(site, prev) {
					continue
				}
				p.sites[pos] = site
			}
		}
	}
}

// preferSite reports whether site should replace prev when both share a position.
// Generic instances repeat their origin's positions; the origin wins, then the
// smallest function name.
func preferSite(site, prev ssa.CallInstruction) bool {
	a, b := site.Parent(), prev.Parent()
	if (a.Origin() == nil) != (b.Origin() == nil) {
		return a.Origin() == nil
	}
	return a.String() < b.String()
}

// localFunctions returns the SSA functions declared in local packages,
// including their anonymous functions.
func (p *Program) localFunctions() []*ssa.Function {
	var res []*ssa.Function
	var add func(fn *ssa.Function)
	add = func(fn *ssa.Function) {
		res = append(res, fn)
		for _, anon := range fn.AnonFuncs {
			add(anon)
		}
	}
	for _, obj := range p.funcs {
		if fn := p.SSA.FuncValue(obj); fn != nil {
			add(fn)
		}
	}
	return res
}

func (p *Program) indexDynamic() {
	funcs := make(map[*ssa.Function]bool)
	for _, fn := range p.localFunctions() {
		funcs[fn] = true
	}
	cg := vta.CallGraph(funcs, nil)
	p.dynamic = make(map[ssa.CallInstruction][]*ssa.Function)
	_ = callgraph.GraphVisitEdges(cg, func(e *callgraph.Edge) error {
		if e.Site == nil || e.Site.Common().StaticCallee() != nil {
			return nil
		}
		for _, fn := range p.dynamic[e.Site] {
			if fn == e.Callee.Func {
				return nil
			}
		}
		p.dynamic[e.Site] = append(p.dynamic[e.Site], e.Callee.Func)
		return nil
	})
}

// dispatched returns the single VTA callee of site, if there is exactly one.
func (p *Program) dispatched(site ssa.CallInstruction) *ssa.Function {
	if callees := p.dynamic[site]; len(callees) == 1 {
		return callees[0]
	}
	return nil
}

// Entry returns the function the graph is rooted at.
func (p *Program) Entry() (Callee, error) {
	if p.opts.Entry != "" {
		for _, obj := range p.funcs {
			if obj.FullName() == p.opts.Entry {
				return p.calleeFromObject(obj), nil
			}
		}
		return Callee{}, fmt.Errorf("%w: %s is not declared in %s", ErrNoEntryPoint, p.opts.Entry, p.Name)
	}

	var mains []*types.Func
	for _, obj := range p.funcs {
		if obj.Name() == "main" && obj.Pkg().Name() == "main" && obj.Type().(*types.Signature).Recv() == nil {
			mains = append(mains, obj)
		}
	}
	if len(mains) == 0 {
		return Callee{}, fmt.Errorf("%w: no main function in %s", ErrNoEntryPoint, p.Name)
	}
	sort.Slice(mains, func(i, j int) bool {
		return mains[i].Pkg().Path() < mains[j].Pkg().Path()
	})
	return p.calleeFromObject(mains[0]), nil
}

// isIgnored reports whether functions of the package at path are left out of the graph.
func (p *Program) isIgnored(pkg *types.Package) bool {
	if pkg == nil || len(p.ignored) == 0 {
		return false
	}
	if p.ignored[pkg.Path()] {
		return true
	}
	for path := range p.ignored {
		if strings.HasSuffix(path, "/...") && strings.HasPrefix(pkg.Path()+"/", strings.TrimSuffix(path, "...")) {
			return true
		}
	}
	return false
}
