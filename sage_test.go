package sage

import (
	"strings"
	"testing"
)

// Table from spec.md §8's end-to-end scenarios, driven through the
// public Run entry point the same way an embedder would use it.
func TestRun_EndToEndScenarios(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string // expected captured print/log/debug output, one line each
	}{
		{"arithmetic", `LET x = 1 + 2; print(x);`, "3\n"},
		{"reassignment", `LET x: Integer = 1; x = 2; print(x);`, "2\n"},
		{"recursion-free call", `DEF f(n) DO RETURN n + 1; END print(f(41));`, "42\n"},
		{"if true branch", `IF 1 == 1 DO print(1); ELSE print(2); END`, "1\n"},
		{"for range", `FOR i IN range(0, 3) DO print(i); END`, "0\n1\n2\n"},
		{"string coercion", `LET s = "a" + 1; print(s);`, "a1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := NewBufferedLogger()
			if _, err := Run(tt.source, logger); err != nil {
				t.Fatalf("Run(%q) returned error: %v", tt.source, err)
			}
			got := strings.Join(logger.Lines(), "\n")
			if got != "" {
				got += "\n"
			}
			if got != tt.want {
				t.Errorf("Run(%q) printed %q, want %q", tt.source, got, tt.want)
			}
		})
	}
}

func TestRun_DivisionByZero(t *testing.T) {
	_, err := Run(`1 / 0;`, NullLogger())
	if err == nil {
		t.Fatal("expected a division-by-zero evaluate error")
	}
	if err.Stage != "evaluate" {
		t.Errorf("expected an evaluate-stage error, got %s", err.Stage)
	}
}

func TestAnalyze_SubtypeViolation(t *testing.T) {
	tokens, lexErr := Lex(`DEF f(): Decimal DO RETURN "x"; END`)
	if lexErr != nil {
		t.Fatalf("lex error: %v", lexErr)
	}
	tree, parseErr := Parse(tokens)
	if parseErr != nil {
		t.Fatalf("parse error: %v", parseErr)
	}
	if _, err := Analyze(tree, NewTypeScope()); err == nil {
		t.Fatal("expected an analyze error: String is not a subtype of Decimal")
	}
}

func TestTranspile_HoistsTopLevelLetBeforeMain(t *testing.T) {
	out, err := Transpile(`LET x = 1; print(x);`)
	if err != nil {
		t.Fatalf("Transpile returned error: %v", err)
	}
	if !strings.Contains(out, "static BigInteger x") {
		t.Errorf("expected a hoisted static field, got:\n%s", out)
	}
	if !strings.Contains(out, "public static void main(String[] args) {") {
		t.Errorf("expected a synthetic main entry point, got:\n%s", out)
	}
}

func TestWriterLogger_CapturesPrintOutput(t *testing.T) {
	var buf strings.Builder
	if _, err := Run(`print("hi");`, WriterLogger(&buf)); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if buf.String() != "hi\n" {
		t.Errorf("got %q, want %q", buf.String(), "hi\n")
	}
}
