// Package generator renders typed IR to a single text buffer holding a
// syntactically valid program in a host object-oriented language with
// arbitrary-precision number classes (java.math.BigInteger/BigDecimal)
// and ambient helpers Objects.equals/RoundingMode.HALF_EVEN.
//
// It is a tagged-struct-plus-type-switch visitor one stage past the
// evaluator, built the same way: dispatch on ir.Stmt/ir.Expr concrete
// types rather than an interface-per-variant visitor.
package generator

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/sagelang/sage/pkg/sage/ir"
	"github.com/sagelang/sage/pkg/sage/numeric"
	"github.com/sagelang/sage/pkg/sage/types"
)

// Generator accumulates output in a single buffer and tracks the
// current indent level; both are mutable fields touched by nearly every
// visit method, mirroring the evaluator's single mutable scope cell.
type Generator struct {
	out    strings.Builder
	indent int
}

// Generate renders source as a complete "Main" class: native helper
// definitions, then the program's top-level Let/Def statements hoisted
// to static members, then a synthetic main entry point holding every
// top-level statement from the first non-Let/Def one onward.
func Generate(source *ir.Source) string {
	g := &Generator{}
	g.out.WriteString(header)
	g.out.WriteString("\n\npublic final class Main {\n\n")
	g.out.WriteString(nativeDefinitions)

	g.indent = 1
	main := false
	for _, stmt := range source.Statements {
		g.newline(g.indent)
		if !main {
			switch stmt.(type) {
			case *ir.Let, *ir.Def:
				g.out.WriteString("static ")
			default:
				g.out.WriteString("public static void main(String[] args) {")
				main = true
				g.indent = 2
				g.newline(g.indent)
			}
		}
		g.writeStmt(stmt)
	}
	if main {
		g.out.WriteString("\n    }")
	}
	g.indent = 0
	g.out.WriteString("\n\n}\n")
	return g.out.String()
}

const header = `import java.math.BigDecimal;
import java.math.BigInteger;
import java.math.RoundingMode;
import java.util.ArrayList;
import java.util.Arrays;
import java.util.List;
import java.util.Objects;`

// nativeDefinitions gives the evaluator's NativeScope bindings static
// counterparts in Main, so generated code calling debug/print/log/
// list/range, or referencing the variable/function/object fixtures,
// compiles against real bindings. One fixture differs from the
// evaluator: ObjectFixture.method drops its first argument, while the
// evaluator's object.method returns all of them.
const nativeDefinitions = `    private static void debug(Object value) {
        System.out.println(debugString(value));
    }

    private static void print(Object value) {
        System.out.println(printString(value));
    }

    private static Object log(Object value) {
        System.out.println("log: " + printString(value));
        return value;
    }

    private static List<Object> list(Object... values) {
        return new ArrayList<>(Arrays.asList(values));
    }

    private static List<Object> range(BigInteger start, BigInteger end) {
        List<Object> result = new ArrayList<>();
        for (BigInteger i = start; i.compareTo(end) < 0; i = i.add(BigInteger.ONE)) {
            result.add(i);
        }
        return result;
    }

    private static String printString(Object value) {
        return String.valueOf(value);
    }

    private static String debugString(Object value) {
        if (value instanceof String) {
            return "\"" + value + "\"";
        }
        return String.valueOf(value);
    }

    private static final Object variable = "variable";

    private static List<Object> function(Object... arguments) {
        return new ArrayList<>(Arrays.asList(arguments));
    }

    private static final class ObjectFixture {
        Object property = "property";

        List<Object> method(Object... arguments) {
            return new ArrayList<>(Arrays.asList(arguments).subList(1, arguments.length));
        }
    }

    private static final ObjectFixture object = new ObjectFixture();
`

func (g *Generator) newline(indent int) {
	g.out.WriteString("\n")
	g.out.WriteString(strings.Repeat("    ", indent))
}

func (g *Generator) writeStmt(stmt ir.Stmt) {
	switch n := stmt.(type) {
	case *ir.Let:
		g.writeLet(n)
	case *ir.Def:
		g.writeDef(n)
	case *ir.If:
		g.writeIf(n)
	case *ir.For:
		g.writeFor(n)
	case *ir.Return:
		g.writeReturn(n)
	case *ir.ExpressionStmt:
		g.writeExpr(n.Expr)
		g.out.WriteString(";")
	case *ir.AssignmentVariable:
		g.out.WriteString(n.Name)
		g.out.WriteString(" = ")
		g.writeExpr(n.Value)
		g.out.WriteString(";")
	case *ir.AssignmentProperty:
		g.writeExpr(n.Receiver)
		g.out.WriteString(".")
		g.out.WriteString(n.Name)
		g.out.WriteString(" = ")
		g.writeExpr(n.Value)
		g.out.WriteString(";")
	default:
		panic(fmt.Sprintf("unsupported statement node %T reached the generator", n))
	}
}

func (g *Generator) writeLet(n *ir.Let) {
	if n.Type.Kind == types.KindObject {
		g.out.WriteString("var ")
		g.out.WriteString(n.Name)
	} else {
		g.out.WriteString(n.Type.HostName())
		g.out.WriteString(" ")
		g.out.WriteString(n.Name)
	}
	if n.Value != nil {
		g.out.WriteString(" = ")
		g.writeExpr(n.Value)
	}
	g.out.WriteString(";")
}

func (g *Generator) writeDef(n *ir.Def) {
	g.out.WriteString(n.ReturnType.HostName())
	g.out.WriteString(" ")
	g.out.WriteString(n.Name)
	g.out.WriteString("(")
	for i, p := range n.Parameters {
		if i > 0 {
			g.out.WriteString(", ")
		}
		g.out.WriteString(p.Type.HostName())
		g.out.WriteString(" ")
		g.out.WriteString(p.Name)
	}
	g.out.WriteString(") {")
	g.writeBlock(n.Body)
}

func (g *Generator) writeIf(n *ir.If) {
	g.out.WriteString("if (")
	g.writeExpr(n.Cond)
	g.out.WriteString(") {")
	g.writeBlock(n.Then)
	if len(n.Else) > 0 {
		g.out.WriteString(" else {")
		g.writeBlock(n.Else)
	}
}

// writeFor declares the loop variable as BigInteger: the analyzer always
// resolves a For's loop variable to Integer, since iterating an Iterable
// yields integers.
func (g *Generator) writeFor(n *ir.For) {
	g.out.WriteString("for (BigInteger ")
	g.out.WriteString(n.Name)
	g.out.WriteString(" : ")
	g.writeExpr(n.Iterable)
	g.out.WriteString(") {")
	g.writeBlock(n.Body)
}

// writeBlock emits a braced body at one deeper indent level, closing
// the brace back at the current level; writeDef/writeIf/writeFor each
// write their own opening brace before calling this.
func (g *Generator) writeBlock(stmts []ir.Stmt) {
	g.indent++
	for _, stmt := range stmts {
		g.newline(g.indent)
		g.writeStmt(stmt)
	}
	g.indent--
	g.newline(g.indent)
	g.out.WriteString("}")
}

func (g *Generator) writeReturn(n *ir.Return) {
	g.out.WriteString("return")
	if n.Value != nil {
		g.out.WriteString(" ")
		g.writeExpr(n.Value)
	} else {
		g.out.WriteString(" null")
	}
	g.out.WriteString(";")
}

func (g *Generator) writeExpr(expr ir.Expr) {
	switch n := expr.(type) {
	case *ir.Literal:
		g.writeLiteral(n)
	case *ir.Group:
		g.out.WriteString("(")
		g.writeExpr(n.Expr)
		g.out.WriteString(")")
	case *ir.Binary:
		g.writeBinary(n)
	case *ir.Variable:
		g.out.WriteString(n.Name)
	case *ir.Property:
		g.writeExpr(n.Receiver)
		g.out.WriteString(".")
		g.out.WriteString(n.Name)
	case *ir.Function:
		g.writeArgs(n.Name, n.Args)
	case *ir.Method:
		g.writeExpr(n.Receiver)
		g.out.WriteString(".")
		g.writeArgs(n.Name, n.Args)
	case *ir.ObjectExpr:
		g.writeObjectExpr(n)
	default:
		panic(fmt.Sprintf("unsupported expression node %T reached the generator", n))
	}
}

func (g *Generator) writeArgs(name string, args []ir.Expr) {
	g.out.WriteString(name)
	g.out.WriteString("(")
	for i, a := range args {
		if i > 0 {
			g.out.WriteString(", ")
		}
		g.writeExpr(a)
	}
	g.out.WriteString(")")
}

func (g *Generator) writeLiteral(n *ir.Literal) {
	switch v := n.Value.(type) {
	case nil:
		g.out.WriteString("null")
	case bool:
		if v {
			g.out.WriteString("true")
		} else {
			g.out.WriteString("false")
		}
	case *big.Int:
		g.out.WriteString(`new BigInteger("`)
		g.out.WriteString(v.String())
		g.out.WriteString(`")`)
	case *numeric.Decimal:
		g.out.WriteString(`new BigDecimal("`)
		g.out.WriteString(v.String())
		g.out.WriteString(`")`)
	case string:
		g.out.WriteString(`"`)
		g.out.WriteString(escapeHostString(v))
		g.out.WriteString(`"`)
	case rune:
		g.out.WriteString(`'`)
		g.out.WriteString(escapeHostString(string(v)))
		g.out.WriteString(`'`)
	default:
		// A literal of any other Go type means the parser/analyzer built
		// an IR node the generator doesn't know about yet.
		panic(fmt.Sprintf("unsupported literal value type %T reached the generator", v))
	}
}

func escapeHostString(s string) string {
	var sb strings.Builder
	for _, r := range s {
		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// writeBinary implements the generator's per-operator emission rules:
// native + for strings, add/subtract/multiply/divide method-call forms
// for numerics (decimal division takes a HALF_EVEN rounding mode),
// compareTo comparisons for relational operators, Objects.equals for
// ==/!=, and native &&/|| for AND/OR with the left operand of AND
// parenthesized when it is itself an OR.
func (g *Generator) writeBinary(n *ir.Binary) {
	switch n.Op {
	case "+":
		if n.ExprType().Kind == types.KindString {
			g.writeExpr(n.Left)
			g.out.WriteString(" + ")
			g.writeExpr(n.Right)
			return
		}
		g.writeMethodBinary(n.Left, "add", n.Right, false)
	case "-":
		g.writeMethodBinary(n.Left, "subtract", n.Right, false)
	case "*":
		g.writeMethodBinary(n.Left, "multiply", n.Right, false)
	case "/":
		g.writeMethodBinary(n.Left, "divide", n.Right, n.ExprType().Kind == types.KindDecimal)
	case "%":
		g.writeMethodBinary(n.Left, "remainder", n.Right, false)
	case "<", "<=", ">", ">=":
		g.out.WriteString("(")
		g.writeExpr(n.Left)
		g.out.WriteString(").compareTo(")
		g.writeExpr(n.Right)
		g.out.WriteString(") ")
		g.out.WriteString(n.Op)
		g.out.WriteString(" 0")
	case "==":
		g.out.WriteString("Objects.equals(")
		g.writeExpr(n.Left)
		g.out.WriteString(", ")
		g.writeExpr(n.Right)
		g.out.WriteString(")")
	case "!=":
		g.out.WriteString("!Objects.equals(")
		g.writeExpr(n.Left)
		g.out.WriteString(", ")
		g.writeExpr(n.Right)
		g.out.WriteString(")")
	case "AND":
		if leftBinary, ok := n.Left.(*ir.Binary); ok && leftBinary.Op == "OR" {
			g.out.WriteString("(")
			g.writeExpr(n.Left)
			g.out.WriteString(")")
		} else {
			g.writeExpr(n.Left)
		}
		g.out.WriteString(" && ")
		g.writeExpr(n.Right)
	case "OR":
		g.writeExpr(n.Left)
		g.out.WriteString(" || ")
		g.writeExpr(n.Right)
	default:
		panic(fmt.Sprintf("unsupported operator %q reached the generator", n.Op))
	}
}

func (g *Generator) writeMethodBinary(left ir.Expr, method string, right ir.Expr, roundHalfEven bool) {
	g.out.WriteString("(")
	g.writeExpr(left)
	g.out.WriteString(").")
	g.out.WriteString(method)
	g.out.WriteString("(")
	g.writeExpr(right)
	if roundHalfEven {
		g.out.WriteString(", RoundingMode.HALF_EVEN")
	}
	g.out.WriteString(")")
}

// writeObjectExpr emits an anonymous inline object with its fields and
// methods in source order, matching the evaluator's field-then-method
// construction order.
func (g *Generator) writeObjectExpr(n *ir.ObjectExpr) {
	g.out.WriteString("new Object() {")
	g.indent++
	for _, field := range n.Fields {
		g.newline(g.indent)
		g.writeLet(field)
	}
	for _, method := range n.Methods {
		g.newline(g.indent)
		g.writeDef(method)
	}
	g.indent--
	g.newline(g.indent)
	g.out.WriteString("}")
}
