// Package object defines Value, the tagged result type the evaluator
// produces, and the printable/raw string forms native functions like
// debug/print/log depend on.
//
// Grounded on a tagged evaluator value representation and on the
// original Environment/Evaluator's runtime value usage: Primitive wraps
// a raw Go value, ObjectValue pairs an optional name with a member
// scope, and Function pairs a name with a native or user-defined
// invocation closure.
package object

import (
	"math/big"
	"strconv"
	"strings"

	"github.com/sagelang/sage/pkg/sage/numeric"
	"github.com/sagelang/sage/pkg/sage/types"
)

// Value is any runtime value the evaluator produces.
type Value interface {
	// Print renders the value the way the `print` native does.
	Print() string
	// Debug renders the value's raw internal form, as `debug` does.
	Debug() string
}

// Scope is the evaluator's binding environment: Scope[Value].
type Scope = types.Scope[Value]

// NewScope creates an evaluator scope with the given parent.
func NewScope(parent *Scope) *Scope {
	return types.NewScope[Value](parent)
}

// Primitive wraps a raw value: nil, bool, *big.Int, *numeric.Decimal,
// string, rune, or []Value (a list).
type Primitive struct {
	Raw any
}

func NewPrimitive(raw any) *Primitive { return &Primitive{Raw: raw} }

var Nil = NewPrimitive(nil)

func (p *Primitive) Print() string {
	switch v := p.Raw.(type) {
	case nil:
		return "nil"
	case bool:
		return strconv.FormatBool(v)
	case *big.Int:
		return v.String()
	case *numeric.Decimal:
		return v.String()
	case string:
		return v
	case rune:
		return string(v)
	case []Value:
		parts := make([]string, len(v))
		for i, e := range v {
			parts[i] = e.Print()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return "?"
	}
}

func (p *Primitive) Debug() string {
	switch v := p.Raw.(type) {
	case string:
		return strconv.Quote(v)
	case rune:
		return "'" + string(v) + "'"
	case []Value:
		parts := make([]string, len(v))
		for i, e := range v {
			parts[i] = e.Debug()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return p.Print()
	}
}

// Equal reports value equality (not identity) between two Primitives,
// the rule `==`/`!=` compare by.
func Equal(a, b Value) bool {
	ap, aok := a.(*Primitive)
	bp, bok := b.(*Primitive)
	if !aok || !bok {
		return a == b
	}
	switch av := ap.Raw.(type) {
	case nil:
		return bp.Raw == nil
	case bool:
		bv, ok := bp.Raw.(bool)
		return ok && av == bv
	case *big.Int:
		bv, ok := bp.Raw.(*big.Int)
		return ok && av.Cmp(bv) == 0
	case *numeric.Decimal:
		bv, ok := bp.Raw.(*numeric.Decimal)
		return ok && numeric.Equal(av, bv)
	case string:
		bv, ok := bp.Raw.(string)
		return ok && av == bv
	case rune:
		bv, ok := bp.Raw.(rune)
		return ok && av == bv
	case []Value:
		bv, ok := bp.Raw.([]Value)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// ObjectValue is an instantiated OBJECT expression: an optional nominal
// name plus the member scope that backs field/method lookup. Unlike the
// analyzer's object Type scope (an independent, parentless root), this
// scope's parent is the scope the OBJECT expression was evaluated in,
// so field/method closures can see variables from their defining scope.
type ObjectValue struct {
	Name  *string
	Scope *Scope
}

func NewObjectValue(name *string, scope *Scope) *ObjectValue {
	return &ObjectValue{Name: name, Scope: scope}
}

func (o *ObjectValue) Print() string {
	if o.Name != nil {
		return *o.Name + " { ... }"
	}
	return "Object { ... }"
}

func (o *ObjectValue) Debug() string { return o.Print() }

// Definition is the body of a Function, native or user-defined.
type Definition func(args []Value) (Value, error)

// Function is a callable value: a native helper or a user DEF/method,
// identified by name for error messages and debug output.
type Function struct {
	Name       string
	Definition Definition
}

func NewFunction(name string, def Definition) *Function {
	return &Function{Name: name, Definition: def}
}

func (f *Function) Print() string { return "<function " + f.Name + ">" }
func (f *Function) Debug() string { return f.Print() }
