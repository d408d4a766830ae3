package object

import (
	"math/big"
	"testing"

	"github.com/sagelang/sage/pkg/sage/numeric"
)

func TestPrimitive_Print(t *testing.T) {
	tests := []struct {
		raw  any
		want string
	}{
		{nil, "nil"},
		{true, "true"},
		{big.NewInt(42), "42"},
		{"hi", "hi"},
		{'c', "c"},
	}
	for _, tt := range tests {
		if got := NewPrimitive(tt.raw).Print(); got != tt.want {
			t.Errorf("Print(%v) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestPrimitive_Debug_QuotesStrings(t *testing.T) {
	if got := NewPrimitive("hi").Debug(); got != `"hi"` {
		t.Errorf("Debug() = %q, want %q", got, `"hi"`)
	}
}

func TestEqual_ByValueNotIdentity(t *testing.T) {
	a := NewPrimitive(big.NewInt(5))
	b := NewPrimitive(big.NewInt(5))
	if a == Value(b) {
		t.Fatalf("test setup invalid: a and b must be distinct pointers")
	}
	if !Equal(a, b) {
		t.Errorf("expected value equality between distinct *big.Int(5) wrappers")
	}
}

func TestEqual_Decimals(t *testing.T) {
	d1, _ := numeric.NewDecimalFromString("1.50")
	d2, _ := numeric.NewDecimalFromString("1.5")
	if !Equal(NewPrimitive(d1), NewPrimitive(d2)) {
		t.Errorf("expected 1.50 to equal 1.5 by value")
	}
}

func TestEqual_Lists(t *testing.T) {
	a := NewPrimitive([]Value{NewPrimitive(big.NewInt(1)), NewPrimitive(big.NewInt(2))})
	b := NewPrimitive([]Value{NewPrimitive(big.NewInt(1)), NewPrimitive(big.NewInt(2))})
	if !Equal(a, b) {
		t.Errorf("expected element-wise list equality")
	}
}

func TestObjectValue_Scope(t *testing.T) {
	scope := NewScope(nil)
	_ = scope.Define("x", NewPrimitive(big.NewInt(1)))
	name := "Point"
	obj := NewObjectValue(&name, scope)
	v, ok := obj.Scope.Get("x", true)
	if !ok {
		t.Fatalf("expected field x to be defined")
	}
	if v.Print() != "1" {
		t.Errorf("got %q, want 1", v.Print())
	}
}

func TestFunction_Invoke(t *testing.T) {
	fn := NewFunction("double", func(args []Value) (Value, error) {
		n := args[0].(*Primitive).Raw.(*big.Int)
		return NewPrimitive(new(big.Int).Mul(n, big.NewInt(2))), nil
	})
	result, err := fn.Definition([]Value{NewPrimitive(big.NewInt(21))})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Print() != "42" {
		t.Errorf("got %q, want 42", result.Print())
	}
}
