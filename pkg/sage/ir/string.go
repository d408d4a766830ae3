package ir

import (
	"bytes"
	"strings"
)

// String renders a typed program for cmd/sage's -ir dump flag, the IR
// equivalent of ast.Node.String(): same surface shape as the source,
// with each expression's resolved type appended after a colon.
func (s *Source) String() string {
	var out bytes.Buffer
	for _, stmt := range s.Statements {
		out.WriteString(stmtString(stmt))
		out.WriteString("\n")
	}
	return out.String()
}

func stmtString(stmt Stmt) string {
	switch n := stmt.(type) {
	case *Let:
		s := "LET " + n.Name + ": " + n.Type.String()
		if n.Value != nil {
			s += " = " + exprString(n.Value)
		}
		return s + ";"
	case *Def:
		params := make([]string, len(n.Parameters))
		for i, p := range n.Parameters {
			params[i] = p.Name + ": " + p.Type.String()
		}
		var out bytes.Buffer
		out.WriteString("DEF " + n.Name + "(" + strings.Join(params, ", ") + "): " + n.ReturnType.String() + " DO\n")
		writeBlock(&out, n.Body)
		out.WriteString("END")
		return out.String()
	case *If:
		var out bytes.Buffer
		out.WriteString("IF " + exprString(n.Cond) + " DO\n")
		writeBlock(&out, n.Then)
		if n.Else != nil {
			out.WriteString("ELSE\n")
			writeBlock(&out, n.Else)
		}
		out.WriteString("END")
		return out.String()
	case *For:
		var out bytes.Buffer
		out.WriteString("FOR " + n.Name + ": Integer IN " + exprString(n.Iterable) + " DO\n")
		writeBlock(&out, n.Body)
		out.WriteString("END")
		return out.String()
	case *Return:
		if n.Value != nil {
			return "RETURN " + exprString(n.Value) + ";"
		}
		return "RETURN;"
	case *ExpressionStmt:
		return exprString(n.Expr) + ";"
	case *AssignmentVariable:
		return n.Name + " = " + exprString(n.Value) + ";"
	case *AssignmentProperty:
		return exprString(n.Receiver) + "." + n.Name + " = " + exprString(n.Value) + ";"
	default:
		return "<?>"
	}
}

func writeBlock(out *bytes.Buffer, stmts []Stmt) {
	for _, s := range stmts {
		out.WriteString("  " + stmtString(s) + "\n")
	}
}

// exprString annotates every expression with its resolved type, e.g.
// `(1:Integer + 2:Integer):Integer`, the one thing the IR carries that the AST's
// String() can't show.
func exprString(expr Expr) string {
	switch n := expr.(type) {
	case *Literal:
		return annotate(literalString(n), n)
	case *Group:
		return annotate("("+exprString(n.Expr)+")", n)
	case *Binary:
		return annotate("("+exprString(n.Left)+" "+n.Op+" "+exprString(n.Right)+")", n)
	case *Variable:
		return annotate(n.Name, n)
	case *Property:
		return annotate(exprString(n.Receiver)+"."+n.Name, n)
	case *Function:
		args := make([]string, len(n.Args))
		for i, a := range n.Args {
			args[i] = exprString(a)
		}
		return annotate(n.Name+"("+strings.Join(args, ", ")+")", n)
	case *Method:
		args := make([]string, len(n.Args))
		for i, a := range n.Args {
			args[i] = exprString(a)
		}
		return annotate(exprString(n.Receiver)+"."+n.Name+"("+strings.Join(args, ", ")+")", n)
	case *ObjectExpr:
		var out bytes.Buffer
		out.WriteString("OBJECT ")
		if n.Name != nil {
			out.WriteString(*n.Name + " ")
		}
		out.WriteString("DO\n")
		for _, f := range n.Fields {
			out.WriteString("  " + stmtString(&Let{Name: f.Name, Type: f.Type, Value: f.Value}) + "\n")
		}
		for _, m := range n.Methods {
			out.WriteString("  " + stmtString(m) + "\n")
		}
		out.WriteString("END")
		return annotate(out.String(), n)
	default:
		return "<?>"
	}
}

func annotate(s string, e Expr) string {
	return s + ":" + e.ExprType().String()
}

func literalString(l *Literal) string {
	switch v := l.Value.(type) {
	case nil:
		return "NIL"
	case bool:
		if v {
			return "TRUE"
		}
		return "FALSE"
	default:
		return stringer(v)
	}
}

// stringer covers the Stringer payload types (big.Int, numeric.Decimal)
// without this package importing math/big or numeric directly — any
// literal payload the parser builds already implements fmt.Stringer or
// is a string/rune.
func stringer(v any) string {
	if s, ok := v.(interface{ String() string }); ok {
		return s.String()
	}
	if s, ok := v.(string); ok {
		return "\"" + s + "\""
	}
	if r, ok := v.(rune); ok {
		return "'" + string(r) + "'"
	}
	return "?"
}
