package lb

// Visitor is implemented by callers that want to walk an LB tree.
// Walk(v, node) calls v.Visit(node); if the returned Visitor is non-nil,
// Walk visits node's children with it, then calls Visit(nil) to signal
// that node's subtree is done. This mirrors go/ast's Walk rather than
// the source implementation's class-hierarchy double-dispatch: a closed sum type needs no virtual dispatch to add a
// walk.
type Visitor interface {
	Visit(n Node) (w Visitor)
}

// Walk traverses n's subtree in source order.
func Walk(v Visitor, n Node) {
	if n == nil {
		return
	}
	v = v.Visit(n)
	if v == nil {
		return
	}

	switch n := n.(type) {
	case *Program:
		for _, f := range n.Funcs {
			Walk(v, f)
		}

	case *Function:
		Walk(v, n.Body)

	case *Block:
		for _, s := range n.Stmts {
			Walk(v, s)
		}

	case *DeclStmt:
		Walk(v, n.Init)
	case *AssignStmt:
		Walk(v, n.Lhs)
		Walk(v, n.Rhs)
	case *CallStmt:
		Walk(v, n.Call)
	case *IfStmt:
		Walk(v, n.Cond)
		Walk(v, n.Then)
		if n.Else != nil {
			Walk(v, n.Else)
		}
	case *WhileStmt:
		Walk(v, n.Cond)
		Walk(v, n.Body)
	case *BreakStmt, *ContinueStmt:
		// leaves

	case *ReturnStmt:
		Walk(v, n.Value)

	case *VarExpr, *NumberExpr:
		// leaves
	case *BinExpr:
		Walk(v, n.L)
		Walk(v, n.R)
	case *CmpExpr:
		Walk(v, n.L)
		Walk(v, n.R)
	case *MemExpr:
		for _, idx := range n.Indices {
			Walk(v, idx)
		}
	case *LoadExpr:
		Walk(v, n.Mem)
	case *LenExpr:
		Walk(v, n.Dim)
	case *NewArrayExpr:
		for _, d := range n.Dims {
			Walk(v, d)
		}
	case *NewTupleExpr:
		Walk(v, n.Len)
	case *CallExpr:
		for _, a := range n.Args {
			Walk(v, a)
		}
	}

	v.Visit(nil)
}

// inspector adapts a plain func(Node) bool to a Visitor, grounded on
// go/ast.Inspect; Walk(v, n) above still does the structural recursion.
type inspector func(Node) bool

func (f inspector) Visit(n Node) Visitor {
	if n == nil {
		return nil
	}
	if f(n) {
		return f
	}
	return nil
}

// Inspect calls f for n and every node in its subtree, in source order,
// stopping a branch's descent early when f returns false for that node.
func Inspect(n Node, f func(Node) bool) {
	Walk(inspector(f), n)
}
