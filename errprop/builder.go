package errprop

import (
	"go/ast"
)

// Build constructs the annotated call graph reachable from the program's entry function.
func Build(prog *Program) (*Graph, error) {
	entry, err := prog.Entry()
	if err != nil {
		return nil, err
	}

	b := &builder{prog: prog, graph: NewGraph(prog.Name)}
	b.register(entry)
	for len(b.frontier) > 0 {
		next := b.frontier[len(b.frontier)-1]
		b.frontier = b.frontier[:len(b.frontier)-1]
		b.traverse(next)
	}

	annotate(prog, b.graph)
	return b.graph, nil
}

type frame struct {
	node   int
	callee Callee
}

type builder struct {
	prog     *Program
	graph    *Graph
	frontier []frame
}

// register adds a node for c. Local nodes are queued for traversal exactly once.
func (b *builder) register(c Callee) int {
	id := b.graph.AddNode(c.Label, c.Kind, c.key)
	b.graph.Nodes[id].Pos = c.Pos
	if c.Kind == LocalFunc && c.Body != nil {
		b.frontier = append(b.frontier, frame{node: id, callee: c})
	}
	return id
}

func (b *builder) traverse(f frame) {
	w := &walker{
		b:       b,
		from:    f.node,
		pkg:     f.callee.Pkg,
		forward: forwardingCalls(f.callee.Pkg.Info, f.callee.Body),
	}
	w.stmts(f.callee.Body.List)
}

// walker collects the calls of a single function body.
type walker struct {
	b       *builder
	from    int
	pkg     *Package
	forward map[*ast.CallExpr]bool
}

func (w *walker) stmts(list []ast.Stmt) {
	for _, s := range list {
		w.stmt(s)
	}
}

func (w *walker) stmt(s ast.Stmt) {
	switch s := s.(type) {
	case nil:
	case *ast.BlockStmt:
		w.stmts(s.List)
	case *ast.ExprStmt:
		w.expr(s.X)
	case *ast.AssignStmt:
		w.exprs(s.Lhs)
		w.exprs(s.Rhs)
	case *ast.DeclStmt:
		if gen, ok := s.Decl.(*ast.GenDecl); ok {
			for _, spec := range gen.Specs {
				if vs, ok := spec.(*ast.ValueSpec); ok {
					w.exprs(vs.Values)
				}
			}
		}
	case *ast.ReturnStmt:
		w.exprs(s.Results)
	case *ast.IfStmt:
		w.stmt(s.Init)
		w.expr(s.Cond)
		w.stmts(s.Body.List)
		w.stmt(s.Else)
	case *ast.ForStmt:
		w.stmt(s.Init)
		w.expr(s.Cond)
		w.stmt(s.Post)
		w.stmts(s.Body.List)
	case *ast.RangeStmt:
		w.expr(s.Key)
		w.expr(s.Value)
		w.expr(s.X)
		w.stmts(s.Body.List)
	case *ast.SwitchStmt:
		w.stmt(s.Init)
		w.expr(s.Tag)
		for _, c := range s.Body.List {
			cc := c.(*ast.CaseClause)
			w.exprs(cc.List)
			w.stmts(cc.Body)
		}
	case *ast.TypeSwitchStmt:
		w.stmt(s.Init)
		w.stmt(s.Assign)
		for _, c := range s.Body.List {
			w.stmts(c.(*ast.CaseClause).Body)
		}
	case *ast.SelectStmt:
		for _, c := range s.Body.List {
			cc := c.(*ast.CommClause)
			w.stmt(cc.Comm)
			w.stmts(cc.Body)
		}
	case *ast.LabeledStmt:
		w.stmt(s.Stmt)
	case *ast.GoStmt:
		w.expr(s.Call)
	case *ast.DeferStmt:
		w.expr(s.Call)
	case *ast.SendStmt:
		w.expr(s.Chan)
		w.expr(s.Value)
	case *ast.IncDecStmt:
		w.expr(s.X)
	case *ast.BranchStmt, *ast.EmptyStmt, *ast.BadStmt:
	}
}

func (w *walker) exprs(list []ast.Expr) {
	for _, e := range list {
		w.expr(e)
	}
}

func (w *walker) expr(e ast.Expr) {
	switch e := e.(type) {
	case nil:
	case *ast.CallExpr:
		w.expr(e.Fun)
		w.exprs(e.Args)
		w.call(e)
	case *ast.ParenExpr:
		w.expr(e.X)
	case *ast.UnaryExpr:
		w.expr(e.X)
	case *ast.BinaryExpr:
		w.expr(e.X)
		w.expr(e.Y)
	case *ast.StarExpr:
		w.expr(e.X)
	case *ast.SelectorExpr:
		w.expr(e.X)
	case *ast.IndexExpr:
		w.expr(e.X)
		w.expr(e.Index)
	case *ast.IndexListExpr:
		w.expr(e.X)
		w.exprs(e.Indices)
	case *ast.SliceExpr:
		w.expr(e.X)
		w.expr(e.Low)
		w.expr(e.High)
		w.expr(e.Max)
	case *ast.TypeAssertExpr:
		w.expr(e.X)
	case *ast.CompositeLit:
		w.exprs(e.Elts)
	case *ast.KeyValueExpr:
		w.expr(e.Key)
		w.expr(e.Value)
	case *ast.FuncLit:
		// Traversed only once a call resolves to it.
	case *ast.Ident, *ast.BasicLit, *ast.Ellipsis, *ast.BadExpr,
		*ast.ArrayType, *ast.StructType, *ast.FuncType, *ast.InterfaceType,
		*ast.MapType, *ast.ChanType:
	}
}

func (w *walker) call(call *ast.CallExpr) {
	res := w.b.prog.ResolveCall(w.pkg, call)
	switch res.Status {
	case Unresolved:
		w.b.graph.Unresolved++
		return
	case Resolved:
	default:
		return
	}

	to, ok := w.b.graph.Lookup(res.Callee.key)
	if !ok {
		to = w.b.register(res.Callee)
	}
	w.b.graph.AddEdge(&Edge{
		From:       w.from,
		To:         to,
		Site:       w.b.prog.Fset.Position(call.Lparen),
		Call:       call,
		Propagates: w.forward[call],
		pkg:        w.pkg,
	})
}
