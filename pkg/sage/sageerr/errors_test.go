package sageerr

import (
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "no position",
			err:  New(StageLex, CodeIllegalChar, "unexpected character '@'"),
			want: "lex error [L1001]: unexpected character '@'",
		},
		{
			name: "with position",
			err:  New(StageParse, CodeUnexpectedToken, "expected ';'").At(4, 9),
			want: "parse error [P2001] at line 4, column 9: expected ';'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewf(t *testing.T) {
	err := Newf(StageAnalyze, CodeArityMismatch, "function %q expects %d arguments, got %d", "f", 2, 1)
	if !strings.Contains(err.Message, `function "f" expects 2 arguments, got 1`) {
		t.Errorf("Newf message = %q", err.Message)
	}
	if err.Stage != StageAnalyze || err.Code != CodeArityMismatch {
		t.Errorf("Newf stage/code = %v/%v", err.Stage, err.Code)
	}
}

func TestAt_DoesNotMutateOriginal(t *testing.T) {
	base := New(StageLex, CodeIllegalChar, "boom")
	_ = base.At(1, 1)
	if base.Line != 0 || base.Column != 0 {
		t.Errorf("At mutated the receiver: %+v", base)
	}
}

func TestAssertion(t *testing.T) {
	err := Assertion("generator cannot encode literal kind 9")
	if err.Stage != StageAssertion {
		t.Errorf("Assertion stage = %v, want %v", err.Stage, StageAssertion)
	}
}
