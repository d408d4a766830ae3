package lexer

import "testing"

func TestNextToken(t *testing.T) {
	input := `LET x: Integer = 1 + 2;
DEF f(n) DO RETURN n + 1; END
IF x == 1 DO print(x); ELSE print(x); END
"a\nb" 'c' 3.14 2e10`

	tests := []struct {
		kind    TokenType
		literal string
	}{
		{Identifier, "LET"},
		{Identifier, "x"},
		{Operator, ":"},
		{Identifier, "Integer"},
		{Operator, "="},
		{Integer, "1"},
		{Operator, "+"},
		{Integer, "2"},
		{Operator, ";"},
		{Identifier, "DEF"},
		{Identifier, "f"},
		{Operator, "("},
		{Identifier, "n"},
		{Operator, ")"},
		{Identifier, "DO"},
		{Identifier, "RETURN"},
		{Identifier, "n"},
		{Operator, "+"},
		{Integer, "1"},
		{Operator, ";"},
		{Identifier, "END"},
		{Identifier, "IF"},
		{Identifier, "x"},
		{Operator, "=="},
		{Integer, "1"},
		{Identifier, "DO"},
		{Identifier, "print"},
		{Operator, "("},
		{Identifier, "x"},
		{Operator, ")"},
		{Operator, ";"},
		{Identifier, "ELSE"},
		{Identifier, "print"},
		{Operator, "("},
		{Identifier, "x"},
		{Operator, ")"},
		{Operator, ";"},
		{Identifier, "END"},
		{String, `"a\nb"`},
		{Character, `'c'`},
		{Decimal, "3.14"},
		{Decimal, "2e10"},
		{EOF, ""},
	}

	l := New(input)
	for i, tt := range tests {
		tok, err := l.NextToken()
		if err != nil {
			t.Fatalf("token %d: unexpected error: %v", i, err)
		}
		if tok.Kind != tt.kind {
			t.Fatalf("token %d: kind = %s, want %s (literal %q)", i, tok.Kind, tt.kind, tok.Literal)
		}
		if tok.Literal != tt.literal {
			t.Fatalf("token %d: literal = %q, want %q", i, tok.Literal, tt.literal)
		}
	}
}

func TestLex_NoResidualTokens(t *testing.T) {
	toks, err := Lex(`LET x = 1;`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if toks[len(toks)-1].Kind != EOF {
		t.Fatalf("last token should be EOF, got %s", toks[len(toks)-1].Kind)
	}
}

func TestLex_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"unterminated string", `"abc`},
		{"unterminated character", `'a`},
		{"invalid escape", `"\q"`},
		{"dot with no digits", `1.`},
		{"e with no digits", `1e`},
		{"unexpected character", `@`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Lex(tt.input); err == nil {
				t.Fatalf("expected a lex error for %q", tt.input)
			}
		})
	}
}

func TestLex_TwoCharOperators(t *testing.T) {
	toks, err := Lex("== != <= >=")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"==", "!=", "<=", ">="}
	for i, w := range want {
		if toks[i].Literal != w {
			t.Fatalf("token %d = %q, want %q", i, toks[i].Literal, w)
		}
	}
}
