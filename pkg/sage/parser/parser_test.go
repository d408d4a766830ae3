package parser

import (
	"testing"

	"github.com/sagelang/sage/pkg/sage/ast"
	"github.com/sagelang/sage/pkg/sage/lexer"
)

func parseSource(t *testing.T, src string) *ast.Source {
	t.Helper()
	toks, lexErr := lexer.Lex(src)
	if lexErr != nil {
		t.Fatalf("lex error: %v", lexErr)
	}
	source, err := Parse(toks)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	return source
}

func TestParse_LetWithTypeAndValue(t *testing.T) {
	src := parseSource(t, `LET x: Integer = 1;`)
	if len(src.Statements) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(src.Statements))
	}
	let, ok := src.Statements[0].(*ast.Let)
	if !ok {
		t.Fatalf("expected *ast.Let, got %T", src.Statements[0])
	}
	if let.Name != "x" || let.Type == nil || *let.Type != "Integer" {
		t.Fatalf("unexpected let node: %+v", let)
	}
}

func TestParse_DefWithTypedParams(t *testing.T) {
	src := parseSource(t, `DEF f(n: Integer): Integer DO RETURN n + 1; END`)
	def, ok := src.Statements[0].(*ast.Def)
	if !ok {
		t.Fatalf("expected *ast.Def, got %T", src.Statements[0])
	}
	if def.Name != "f" || len(def.Parameters) != 1 || def.Parameters[0] != "n" {
		t.Fatalf("unexpected def node: %+v", def)
	}
	if def.ParameterTypes[0] == nil || *def.ParameterTypes[0] != "Integer" {
		t.Fatalf("expected parameter type Integer, got %+v", def.ParameterTypes)
	}
	if def.ReturnType == nil || *def.ReturnType != "Integer" {
		t.Fatalf("expected return type Integer, got %+v", def.ReturnType)
	}
}

func TestParse_IfElse(t *testing.T) {
	src := parseSource(t, `IF 1 == 1 DO print(1); ELSE print(2); END`)
	ifStmt, ok := src.Statements[0].(*ast.If)
	if !ok {
		t.Fatalf("expected *ast.If, got %T", src.Statements[0])
	}
	if len(ifStmt.Then) != 1 || len(ifStmt.Else) != 1 {
		t.Fatalf("unexpected branch lengths: then=%d else=%d", len(ifStmt.Then), len(ifStmt.Else))
	}
}

func TestParse_For(t *testing.T) {
	src := parseSource(t, `FOR i IN range(0, 3) DO print(i); END`)
	forStmt, ok := src.Statements[0].(*ast.For)
	if !ok {
		t.Fatalf("expected *ast.For, got %T", src.Statements[0])
	}
	if forStmt.Name != "i" {
		t.Fatalf("unexpected loop variable: %q", forStmt.Name)
	}
	call, ok := forStmt.Iterable.(*ast.Function)
	if !ok || call.Name != "range" || len(call.Args) != 2 {
		t.Fatalf("unexpected iterable: %+v", forStmt.Iterable)
	}
}

func TestParse_PrecedenceClimbing(t *testing.T) {
	src := parseSource(t, `1 + 2 * 3;`)
	stmt := src.Statements[0].(*ast.ExpressionStmt)
	bin, ok := stmt.Expr.(*ast.Binary)
	if !ok || bin.Op != "+" {
		t.Fatalf("expected top-level '+', got %+v", stmt.Expr)
	}
	right, ok := bin.Right.(*ast.Binary)
	if !ok || right.Op != "*" {
		t.Fatalf("expected '*' nested on the right, got %+v", bin.Right)
	}
}

func TestParse_PropertyAndMethod(t *testing.T) {
	src := parseSource(t, `a.b.c(1, 2);`)
	stmt := src.Statements[0].(*ast.ExpressionStmt)
	method, ok := stmt.Expr.(*ast.Method)
	if !ok || method.Name != "c" || len(method.Args) != 2 {
		t.Fatalf("expected a.b.c(1, 2) to parse as a Method call, got %+v", stmt.Expr)
	}
	prop, ok := method.Receiver.(*ast.Property)
	if !ok || prop.Name != "b" {
		t.Fatalf("expected receiver a.b, got %+v", method.Receiver)
	}
}

func TestParse_ObjectExpr(t *testing.T) {
	src := parseSource(t, `LET o = OBJECT DO
  LET x = 1;
  DEF get(): Integer DO RETURN this.x; END
END;`)
	let := src.Statements[0].(*ast.Let)
	obj, ok := let.Value.(*ast.ObjectExpr)
	if !ok {
		t.Fatalf("expected *ast.ObjectExpr, got %T", let.Value)
	}
	if len(obj.Fields) != 1 || len(obj.Methods) != 1 {
		t.Fatalf("unexpected object shape: %+v", obj)
	}
}

func TestParse_Assignment(t *testing.T) {
	src := parseSource(t, `x = 2;`)
	assign, ok := src.Statements[0].(*ast.Assignment)
	if !ok {
		t.Fatalf("expected *ast.Assignment, got %T", src.Statements[0])
	}
	if _, ok := assign.Target.(*ast.Variable); !ok {
		t.Fatalf("expected variable target, got %+v", assign.Target)
	}
}

func TestParse_StringEscapes(t *testing.T) {
	src := parseSource(t, `LET s = "a\nb\t\"c\"";`)
	let := src.Statements[0].(*ast.Let)
	lit, ok := let.Value.(*ast.Literal)
	if !ok || lit.Kind != ast.LitString {
		t.Fatalf("expected string literal, got %+v", let.Value)
	}
	if lit.Value.(string) != "a\nb\t\"c\"" {
		t.Fatalf("unexpected decoded string: %q", lit.Value)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []string{
		`LET x = ;`,
		`DEF f( DO END`,
		`IF 1 DO print(1);`,
		`1 +`,
	}
	for _, src := range tests {
		toks, lexErr := lexer.Lex(src)
		if lexErr != nil {
			continue
		}
		if _, err := Parse(toks); err == nil {
			t.Errorf("expected a parse error for %q", src)
		}
	}
}

func TestParse_NoResidualTokens(t *testing.T) {
	toks, _ := lexer.Lex(`LET x = 1; print(x);`)
	p := New(toks)
	if _, err := p.ParseSource(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !p.atEOF() {
		t.Fatalf("parser left residual tokens at pos %d", p.pos)
	}
}
