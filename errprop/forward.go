package errprop

import (
	"go/ast"
	"go/token"
	"go/types"
)

// forwardingCalls returns the calls in body whose error result is handed
// back to the caller of the function:
//
//	v, err := g()          // g propagates
//	if err != nil {
//		return nil, err
//	}
//
//	return h()             // h propagates in tail position
//
// Nested function literals are not inspected.
func forwardingCalls(info *types.Info, body *ast.BlockStmt) map[*ast.CallExpr]bool {
	f := &forwarder{info: info, calls: make(map[*ast.CallExpr]bool)}
	if body != nil {
		f.stmts(body.List, true)
	}
	return f.calls
}

type forwarder struct {
	info  *types.Info
	calls map[*ast.CallExpr]bool
}

// stmts walks a statement list. tail is whether the list ends the function.
func (f *forwarder) stmts(list []ast.Stmt, tail bool) {
	for i, s := range list {
		var next ast.Stmt
		if i+1 < len(list) {
			next = list[i+1]
		}
		f.stmt(s, next, tail && i == len(list)-1)
	}
}

func (f *forwarder) stmt(s, next ast.Stmt, tail bool) {
	switch s := s.(type) {
	case *ast.ReturnStmt:
		if tail {
			f.markReturn(s)
		}
	case *ast.AssignStmt:
		if ifs, ok := next.(*ast.IfStmt); ok && ifs.Init == nil {
			f.check(s.Lhs, s.Rhs, ifs)
		}
	case *ast.DeclStmt:
		if ifs, ok := next.(*ast.IfStmt); ok && ifs.Init == nil {
			if vs := singleVarSpec(s); vs != nil {
				lhs := make([]ast.Expr, len(vs.Names))
				for i, name := range vs.Names {
					lhs[i] = name
				}
				f.check(lhs, vs.Values, ifs)
			}
		}
	case *ast.IfStmt:
		if as, ok := s.Init.(*ast.AssignStmt); ok {
			f.check(as.Lhs, as.Rhs, s)
		}
		f.stmts(s.Body.List, tail)
		switch e := s.Else.(type) {
		case *ast.BlockStmt:
			f.stmts(e.List, tail)
		case *ast.IfStmt:
			f.stmt(e, nil, tail)
		}
	case *ast.BlockStmt:
		f.stmts(s.List, tail)
	case *ast.LabeledStmt:
		f.stmt(s.Stmt, next, tail)
	case *ast.SwitchStmt:
		f.clauses(s.Body, tail)
	case *ast.TypeSwitchStmt:
		f.clauses(s.Body, tail)
	case *ast.SelectStmt:
		f.clauses(s.Body, tail)
	case *ast.ForStmt:
		f.stmts(s.Body.List, false)
	case *ast.RangeStmt:
		f.stmts(s.Body.List, false)
	}
}

func (f *forwarder) clauses(body *ast.BlockStmt, tail bool) {
	for _, c := range body.List {
		switch c := c.(type) {
		case *ast.CaseClause:
			f.stmts(c.Body, tail)
		case *ast.CommClause:
			f.stmts(c.Body, tail)
		}
	}
}

// check marks the producer of a forwarding check: the call assigned to lhs
// whose last variable is tested by ifs and returned from its body.
func (f *forwarder) check(lhs, rhs []ast.Expr, ifs *ast.IfStmt) {
	if len(rhs) != 1 || len(lhs) == 0 {
		return
	}
	call, ok := ast.Unparen(rhs[0]).(*ast.CallExpr)
	if !ok {
		return
	}
	ident, ok := lhs[len(lhs)-1].(*ast.Ident)
	if !ok || ident.Name == "_" {
		return
	}
	v, ok := f.info.ObjectOf(ident).(*types.Var)
	if !ok || !IsErrorType(v.Type()) {
		return
	}
	if !f.isNotNil(ifs.Cond, v) {
		return
	}

	var forwards bool
	for _, s := range ifs.Body.List {
		if r, ok := s.(*ast.ReturnStmt); ok && f.refersTo(r, v) {
			forwards = true
		}
	}
	if !forwards {
		return
	}
	f.calls[call] = true
	for _, s := range ifs.Body.List {
		if r, ok := s.(*ast.ReturnStmt); ok {
			f.markReturn(r)
		}
	}
}

func (f *forwarder) markReturn(r *ast.ReturnStmt) {
	for _, res := range r.Results {
		if call, ok := ast.Unparen(res).(*ast.CallExpr); ok {
			f.calls[call] = true
		}
	}
}

// isNotNil reports whether cond is "v != nil" or "nil != v".
func (f *forwarder) isNotNil(cond ast.Expr, v *types.Var) bool {
	bin, ok := ast.Unparen(cond).(*ast.BinaryExpr)
	if !ok || bin.Op != token.NEQ {
		return false
	}
	x, y := ast.Unparen(bin.X), ast.Unparen(bin.Y)
	return (f.is(x, v) && f.isNil(y)) || (f.isNil(x) && f.is(y, v))
}

func (f *forwarder) is(e ast.Expr, v *types.Var) bool {
	ident, ok := e.(*ast.Ident)
	return ok && f.info.ObjectOf(ident) == v
}

func (f *forwarder) isNil(e ast.Expr) bool {
	ident, ok := e.(*ast.Ident)
	if !ok {
		return false
	}
	_, ok = f.info.ObjectOf(ident).(*types.Nil)
	return ok
}

// refersTo reports whether any result of r mentions v, outside function literals.
func (f *forwarder) refersTo(r *ast.ReturnStmt, v *types.Var) bool {
	var found bool
	for _, res := range r.Results {
		ast.Inspect(res, func(n ast.Node) bool {
			switch n := n.(type) {
			case *ast.FuncLit:
				return false
			case *ast.Ident:
				if f.info.ObjectOf(n) == v {
					found = true
				}
			}
			return !found
		})
	}
	return found
}

func singleVarSpec(s *ast.DeclStmt) *ast.ValueSpec {
	gen, ok := s.Decl.(*ast.GenDecl)
	if !ok || gen.Tok != token.VAR || len(gen.Specs) != 1 {
		return nil
	}
	vs, _ := gen.Specs[0].(*ast.ValueSpec)
	return vs
}
