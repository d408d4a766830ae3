package generator

import (
	"strings"
	"testing"

	"github.com/sagelang/sage/pkg/sage/analyzer"
	"github.com/sagelang/sage/pkg/sage/lexer"
	"github.com/sagelang/sage/pkg/sage/parser"
)

func generate(t *testing.T, src string) string {
	t.Helper()
	toks, err := lexer.Lex(src)
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}
	tree, err := parser.Parse(toks)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	typed, err := analyzer.Analyze(tree, analyzer.NativeScope())
	if err != nil {
		t.Fatalf("analyze error: %v", err)
	}
	return Generate(typed)
}

func TestGenerate_WrapsProgramInMainClass(t *testing.T) {
	out := generate(t, `1;`)
	if !strings.Contains(out, "public final class Main {") {
		t.Errorf("expected a Main class wrapper, got:\n%s", out)
	}
	if !strings.Contains(out, "public static void main(String[] args) {") {
		t.Errorf("expected a main entry point, got:\n%s", out)
	}
}

func TestGenerate_HoistsTopLevelLetAndDefAsStaticMembers(t *testing.T) {
	out := generate(t, `
LET x = 1;
DEF square(n: Integer): Integer DO
  RETURN n * n;
END
square(x);`)
	if !strings.Contains(out, "static BigInteger x = new BigInteger(\"1\");") {
		t.Errorf("expected x hoisted as a static field, got:\n%s", out)
	}
	if !strings.Contains(out, "static BigInteger square(BigInteger n) {") {
		t.Errorf("expected square hoisted as a static method, got:\n%s", out)
	}
	if !strings.Contains(out, "public static void main(String[] args) {\n        square(x);") {
		t.Errorf("expected square(x) in main, got:\n%s", out)
	}
}

func TestGenerate_IntegerLiteral(t *testing.T) {
	out := generate(t, `42;`)
	if !strings.Contains(out, `new BigInteger("42")`) {
		t.Errorf("expected a BigInteger literal, got:\n%s", out)
	}
}

func TestGenerate_StringConcatUsesNativePlus(t *testing.T) {
	out := generate(t, `"a" + "b";`)
	if !strings.Contains(out, `"a" + "b"`) {
		t.Errorf("expected native + for string concatenation, got:\n%s", out)
	}
}

func TestGenerate_IntegerAdditionUsesAddMethod(t *testing.T) {
	out := generate(t, `1 + 2;`)
	if !strings.Contains(out, `.add(`) {
		t.Errorf("expected .add(...) for integer addition, got:\n%s", out)
	}
}

func TestGenerate_DecimalDivisionUsesHalfEvenRounding(t *testing.T) {
	out := generate(t, `1.0 / 3.0;`)
	if !strings.Contains(out, "RoundingMode.HALF_EVEN") {
		t.Errorf("expected RoundingMode.HALF_EVEN on decimal division, got:\n%s", out)
	}
}

func TestGenerate_RelationalUsesCompareTo(t *testing.T) {
	out := generate(t, `1 < 2;`)
	if !strings.Contains(out, ").compareTo(") || !strings.Contains(out, "< 0") {
		t.Errorf("expected a compareTo comparison, got:\n%s", out)
	}
}

func TestGenerate_EqualityUsesObjectsEquals(t *testing.T) {
	out := generate(t, `1 == 2;`)
	if !strings.Contains(out, "Objects.equals(") {
		t.Errorf("expected Objects.equals for ==, got:\n%s", out)
	}
}

func TestGenerate_AndParenthesizesOrOnTheLeft(t *testing.T) {
	// AND and OR share one precedence level and associate left-to-right,
	// so "TRUE OR FALSE AND TRUE" parses as (TRUE OR FALSE) AND TRUE
	// without any source parentheses — the generator must add its own.
	out := generate(t, `TRUE OR FALSE AND TRUE;`)
	if !strings.Contains(out, "(true || false) && true") {
		t.Errorf("expected the left OR operand parenthesized under AND, got:\n%s", out)
	}
}

func TestGenerate_IfElseEmitsBothBranches(t *testing.T) {
	out := generate(t, `LET x = 0; IF TRUE DO x = 1; ELSE x = 2; END`)
	if !strings.Contains(out, "if (true) {") || !strings.Contains(out, "} else {") {
		t.Errorf("expected both if and else braces, got:\n%s", out)
	}
}

func TestGenerate_ForLoopsOverBigIntegerRange(t *testing.T) {
	out := generate(t, `FOR i IN range(0, 3) DO debug(i); END`)
	if !strings.Contains(out, "for (BigInteger i : range(") {
		t.Errorf("expected a BigInteger for-each loop, got:\n%s", out)
	}
}

func TestGenerate_ObjectExprEmitsAnonymousClass(t *testing.T) {
	out := generate(t, `
LET counter = OBJECT DO
  LET count: Integer = 0;
  DEF increment(): Integer DO
    count = count + 1;
    RETURN this.count;
  END
END;`)
	if !strings.Contains(out, "new Object() {") {
		t.Errorf("expected an anonymous object expression, got:\n%s", out)
	}
	if !strings.Contains(out, "BigInteger increment() {") {
		t.Errorf("expected an increment method on the anonymous object, got:\n%s", out)
	}
}

func TestGenerate_NativeDefinitionsAreEmittedOnce(t *testing.T) {
	out := generate(t, `debug(1); print(2); log(3);`)
	if strings.Count(out, "private static void debug(Object value) {") != 1 {
		t.Errorf("expected exactly one debug definition, got:\n%s", out)
	}
}
