package errprop

import (
	"go/ast"
	"go/token"
	"go/types"

	"golang.org/x/tools/go/ssa"
	"golang.org/x/tools/go/types/typeutil"
)

// ResolveStatus is the outcome of resolving a call expression.
type ResolveStatus int

const (
	// Unresolved calls are dynamically dispatched; no callee is known.
	Unresolved ResolveStatus = iota
	// Resolved calls have exactly one known callee.
	Resolved
	// NotCallable expressions look like calls but are conversions or builtins.
	NotCallable
	// Ignored calls target a package listed in Options.IgnorePackages.
	Ignored
)

func (s ResolveStatus) String() string {
	switch s {
	case Resolved:
		return "resolved"
	case NotCallable:
		return "not-callable"
	case Ignored:
		return "ignored"
	default:
		return "unresolved"
	}
}

// Callee identifies the target of a resolved call.
type Callee struct {
	Kind  NodeKind
	Label string
	Pos   token.Position

	// Body and Pkg are set for local callees only.
	Body *ast.BlockStmt
	Pkg  *Package

	fn  *ssa.Function
	obj *types.Func
	key any
}

// Resolution is the result of Program.ResolveCall.
type Resolution struct {
	Status ResolveStatus
	Callee Callee
}

// ResolveCall determines the function called by call, which appears in pkg.
func (p *Program) ResolveCall(pkg *Package, call *ast.CallExpr) Resolution {
	fun := ast.Unparen(call.Fun)
	if tv, ok := pkg.Info.Types[fun]; ok && (tv.IsType() || tv.IsBuiltin()) {
		return Resolution{Status: NotCallable}
	}

	var callee *Callee
	if site, ok := p.sites[call.Lparen]; ok {
		if fn := site.Common().StaticCallee(); fn != nil {
			c := p.calleeFromSSA(fn)
			callee = &c
		} else if fn := p.dispatched(site); fn != nil {
			c := p.calleeFromSSA(fn)
			callee = &c
		}
	}
	if callee == nil {
		if obj := typeutil.StaticCallee(pkg.Info, call); obj != nil {
			c := p.calleeFromObject(obj)
			callee = &c
		}
	}
	if callee == nil {
		return Resolution{Status: Unresolved}
	}
	if p.isIgnored(callee.pkg()) {
		return Resolution{Status: Ignored, Callee: *callee}
	}
	return Resolution{Status: Resolved, Callee: *callee}
}

// ReturnType returns the result tuple of the function called by call,
// or nil if the callee cannot be determined.
func (p *Program) ReturnType(pkg *Package, call *ast.CallExpr) types.Type {
	if site, ok := p.sites[call.Lparen]; ok {
		fn := site.Common().StaticCallee()
		if fn == nil {
			fn = p.dispatched(site)
		}
		if fn != nil {
			return fn.Signature.Results()
		}
	}
	if obj := typeutil.StaticCallee(pkg.Info, call); obj != nil {
		return obj.Type().(*types.Signature).Results()
	}
	return nil
}

func (c *Callee) pkg() *types.Package {
	if c.obj != nil {
		return c.obj.Pkg()
	}
	if c.fn != nil && c.fn.Pkg != nil {
		return c.fn.Pkg.Pkg
	}
	if c.Pkg != nil {
		return c.Pkg.Types
	}
	return nil
}

// calleeFromSSA maps an SSA function, possibly an instance or a synthetic
// wrapper, onto its source declaration.
func (p *Program) calleeFromSSA(fn *ssa.Function) Callee {
	origin := fn
	if o := fn.Origin(); o != nil {
		origin = o
	}
	if obj, ok := origin.Object().(*types.Func); ok {
		c := p.calleeFromObject(obj)
		c.fn = fn
		return c
	}
	if lit, ok := origin.Syntax().(*ast.FuncLit); ok {
		if pkg, ok := p.lits[lit]; ok {
			return Callee{
				Kind:  LocalFunc,
				Label: origin.String(),
				Pos:   p.Fset.Position(lit.Pos()),
				Body:  lit.Body,
				Pkg:   pkg,
				fn:    fn,
				key:   lit,
			}
		}
	}
	return Callee{
		Kind:  ExternalFunc,
		Label: origin.String(),
		Pos:   p.Fset.Position(origin.Pos()),
		fn:    fn,
		key:   origin.String(),
	}
}

func (p *Program) calleeFromObject(obj *types.Func) Callee {
	obj = obj.Origin()
	if d, ok := p.decls[obj]; ok {
		return Callee{
			Kind:  LocalFunc,
			Label: obj.FullName(),
			Pos:   p.Fset.Position(d.decl.Pos()),
			Body:  d.decl.Body,
			Pkg:   d.pkg,
			obj:   obj,
			key:   d.decl,
		}
	}
	return Callee{
		Kind:  ExternalFunc,
		Label: obj.FullName(),
		Pos:   p.Fset.Position(obj.Pos()),
		obj:   obj,
		key:   obj.FullName(),
	}
}
