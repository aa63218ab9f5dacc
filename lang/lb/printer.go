package lb

import (
	"fmt"
	"io"
	"strings"
)

// Fprint writes a human-readable, indented dump of p to w, used by the
// -v flag to inspect the tree a lowering pass consumed. It is not a
// round-trippable surface syntax; lbparse owns that.
func Fprint(w io.Writer, p *Program) {
	for i, f := range p.Funcs {
		if i > 0 {
			fmt.Fprintln(w)
		}
		printFunc(w, f)
	}
}

func printFunc(w io.Writer, f *Function) {
	fmt.Fprintf(w, "@%s(", f.Name)
	for i, p := range f.Params {
		if i > 0 {
			fmt.Fprint(w, ", ")
		}
		fmt.Fprintf(w, "%%%s %s", p.Name, p.Type)
	}
	fmt.Fprintf(w, ") %s\n", f.Ret)
	printBlock(w, f.Body, 1)
}

func indent(depth int) string { return strings.Repeat("  ", depth) }

func printBlock(w io.Writer, b *Block, depth int) {
	for _, s := range b.Stmts {
		printStmt(w, s, depth)
	}
}

func printStmt(w io.Writer, s Stmt, depth int) {
	pad := indent(depth)
	switch s := s.(type) {
	case *DeclStmt:
		if s.Init != nil {
			fmt.Fprintf(w, "%svar %%%s %s <- %s\n", pad, s.Name, s.Type, exprString(s.Init))
		} else {
			fmt.Fprintf(w, "%svar %%%s %s\n", pad, s.Name, s.Type)
		}
	case *AssignStmt:
		fmt.Fprintf(w, "%s%s <- %s\n", pad, exprString(s.Lhs), exprString(s.Rhs))
	case *CallStmt:
		fmt.Fprintf(w, "%s%s\n", pad, exprString(s.Call))
	case *IfStmt:
		fmt.Fprintf(w, "%sif %s\n", pad, exprString(s.Cond))
		printBlock(w, s.Then, depth+1)
		if s.Else != nil {
			fmt.Fprintf(w, "%selse\n", pad)
			printBlock(w, s.Else, depth+1)
		}
	case *WhileStmt:
		fmt.Fprintf(w, "%swhile %s\n", pad, exprString(s.Cond))
		printBlock(w, s.Body, depth+1)
	case *BreakStmt:
		fmt.Fprintf(w, "%sbreak\n", pad)
	case *ContinueStmt:
		fmt.Fprintf(w, "%scontinue\n", pad)
	case *ReturnStmt:
		if s.Value != nil {
			fmt.Fprintf(w, "%sreturn %s\n", pad, exprString(s.Value))
		} else {
			fmt.Fprintf(w, "%sreturn\n", pad)
		}
	}
}

func exprString(e Expr) string {
	var sb strings.Builder
	writeExpr(&sb, e)
	return sb.String()
}

func writeExpr(sb *strings.Builder, e Expr) {
	switch e := e.(type) {
	case *VarExpr:
		sb.WriteString("%" + e.Name)
	case *NumberExpr:
		fmt.Fprintf(sb, "%d", e.Value)
	case *BinExpr:
		writeExpr(sb, e.L)
		fmt.Fprintf(sb, " %s ", e.Op)
		writeExpr(sb, e.R)
	case *CmpExpr:
		writeExpr(sb, e.L)
		fmt.Fprintf(sb, " %s ", e.Op)
		writeExpr(sb, e.R)
	case *MemExpr:
		sb.WriteString("%" + e.Base)
		for _, idx := range e.Indices {
			sb.WriteByte('[')
			writeExpr(sb, idx)
			sb.WriteByte(']')
		}
	case *LoadExpr:
		writeExpr(sb, e.Mem)
	case *LenExpr:
		if e.Dim != nil {
			fmt.Fprintf(sb, "length(%%%s, ", e.Var)
			writeExpr(sb, e.Dim)
			sb.WriteByte(')')
		} else {
			fmt.Fprintf(sb, "length(%%%s)", e.Var)
		}
	case *NewArrayExpr:
		sb.WriteString("new Array(")
		for i, d := range e.Dims {
			if i > 0 {
				sb.WriteString(", ")
			}
			writeExpr(sb, d)
		}
		sb.WriteByte(')')
	case *NewTupleExpr:
		sb.WriteString("new Tuple(")
		writeExpr(sb, e.Len)
		sb.WriteByte(')')
	case *CallExpr:
		if e.IsRuntime {
			sb.WriteByte('%')
		} else {
			sb.WriteByte('@')
		}
		sb.WriteString(e.Callee)
		sb.WriteByte('(')
		for i, a := range e.Args {
			if i > 0 {
				sb.WriteString(", ")
			}
			writeExpr(sb, a)
		}
		sb.WriteByte(')')
	}
}
