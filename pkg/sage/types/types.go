// Package types implements the closed subtype lattice that the analyzer
// checks against and the Scope[T] environment shared by the analyzer
// (Scope[*Type]) and the evaluator (Scope[object.Value]).
//
// Any is the top of the lattice; Equatable and Comparable are supertypes
// of a fixed set of primitives; Iterable stands alone as an Equatable
// supertype. Object and Function are structural/nominal outliers handled
// by Equal rather than the flat supertype table.
//
// Grounded on a tagged-struct-plus-String()-method style and on the
// original Environment's scope shape, generalized to Go generics.
package types

import "strings"

// Kind tags the variant a Type holds.
type Kind int

const (
	KindNil Kind = iota
	KindBoolean
	KindInteger
	KindDecimal
	KindString
	KindCharacter
	KindAny
	KindEquatable
	KindComparable
	KindIterable
	KindFunction
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNil:
		return "Nil"
	case KindBoolean:
		return "Boolean"
	case KindInteger:
		return "Integer"
	case KindDecimal:
		return "Decimal"
	case KindString:
		return "String"
	case KindCharacter:
		return "Character"
	case KindAny:
		return "Any"
	case KindEquatable:
		return "Equatable"
	case KindComparable:
		return "Comparable"
	case KindIterable:
		return "Iterable"
	case KindFunction:
		return "Function"
	case KindObject:
		return "Object"
	default:
		return "?"
	}
}

// Type is a tagged variant: a primitive (identified by Kind alone), a
// Function (Params/Returns), or an Object (Name/Scope — the object's
// member scope acts as its nominal signature).
type Type struct {
	Kind Kind

	Params   []*Type // Function only
	Returns  *Type   // Function only
	Variadic bool    // Function only: any arity, each arg checked against Params[0] (Any if unset)

	Name  *string       // Object only; nil for anonymous objects
	Scope *Scope[*Type] // Object only; parentless, holds member types
}

// Primitive singletons. Comparisons between primitive Types should use
// Kind, not pointer identity, since literals and lookups may construct
// distinct *Type values for the same primitive.
var (
	Nil        = &Type{Kind: KindNil}
	Boolean    = &Type{Kind: KindBoolean}
	Integer    = &Type{Kind: KindInteger}
	Decimal    = &Type{Kind: KindDecimal}
	String     = &Type{Kind: KindString}
	Character  = &Type{Kind: KindCharacter}
	Any        = &Type{Kind: KindAny}
	Equatable  = &Type{Kind: KindEquatable}
	Comparable = &Type{Kind: KindComparable}
	Iterable   = &Type{Kind: KindIterable}
)

// primitivesByName backs both RootScope population and the ObjectExpr
// name-collision check: an object name must not collide with a
// primitive type name.
var primitivesByName = map[string]*Type{
	"Nil":        Nil,
	"Boolean":    Boolean,
	"Integer":    Integer,
	"Decimal":    Decimal,
	"String":     String,
	"Character":  Character,
	"Any":        Any,
	"Equatable":  Equatable,
	"Comparable": Comparable,
	"Iterable":   Iterable,
}

// Lookup resolves a type annotation's identifier text to its primitive
// Type. Structural types (Function, Object) have no surface syntax and
// are never looked up by name.
func Lookup(name string) (*Type, bool) {
	t, ok := primitivesByName[name]
	return t, ok
}

// IsPrimitiveName reports whether name collides with a primitive type.
func IsPrimitiveName(name string) bool {
	_, ok := primitivesByName[name]
	return ok
}

// NewFunction builds a Function type with fixed arity.
func NewFunction(params []*Type, returns *Type) *Type {
	return &Type{Kind: KindFunction, Params: params, Returns: returns}
}

// NewVariadicFunction builds a Function type accepting any arity, each
// argument checked against elem. Covers natives like `list(…)` and the
// testing fixtures `function`/`method`, which a fixed Params slice can't
// express.
func NewVariadicFunction(elem, returns *Type) *Type {
	return &Type{Kind: KindFunction, Params: []*Type{elem}, Returns: returns, Variadic: true}
}

// NewObject builds an Object type around an already-populated member
// scope. name is nil for an anonymous OBJECT expression.
func NewObject(name *string, scope *Scope[*Type]) *Type {
	return &Type{Kind: KindObject, Name: name, Scope: scope}
}

// equatableSupertypes lists the primitives for which Equatable is a
// direct supertype.
var equatableSupertypes = map[Kind]bool{
	KindNil:        true,
	KindBoolean:    true,
	KindInteger:    true,
	KindDecimal:    true,
	KindString:     true,
	KindComparable: true,
	KindIterable:   true,
}

// comparableSupertypes lists the primitives for which Comparable is a
// direct supertype.
var comparableSupertypes = map[Kind]bool{
	KindBoolean: true,
	KindInteger: true,
	KindDecimal: true,
	KindString:  true,
}

// IsSubtype reports whether actual is a subtype of expected under the
// fixed lattice: Any is the top, Equatable/Comparable are supertypes of
// the fixed primitive sets above, and otherwise subtype holds iff the
// two types are Equal.
func IsSubtype(actual, expected *Type) bool {
	if expected.Kind == KindAny {
		return true
	}
	if expected.Kind == KindEquatable && equatableSupertypes[actual.Kind] {
		return true
	}
	if expected.Kind == KindComparable && comparableSupertypes[actual.Kind] {
		return true
	}
	return Equal(actual, expected)
}

// Equal reports structural equality for Function types, nominal
// (pointer) equality for Object types, and Kind equality otherwise.
func Equal(a, b *Type) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindFunction:
		if len(a.Params) != len(b.Params) {
			return false
		}
		for i := range a.Params {
			if !Equal(a.Params[i], b.Params[i]) {
				return false
			}
		}
		return Equal(a.Returns, b.Returns)
	case KindObject:
		// Object types are nominal: only identical scopes (the same
		// ObjectExpr evaluation) are equal.
		return a.Scope == b.Scope
	default:
		return true
	}
}

// String renders a Type for error messages and IR dumps.
func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	switch t.Kind {
	case KindFunction:
		params := make([]string, len(t.Params))
		for i, p := range t.Params {
			params[i] = p.String()
		}
		return "Function(" + strings.Join(params, ", ") + "): " + t.Returns.String()
	case KindObject:
		if t.Name != nil {
			return *t.Name
		}
		return "Object"
	default:
		return t.Kind.String()
	}
}

// HostName renders the generator's target-language type name for t: the
// concrete arbitrary-precision/collection classes for the primitives
// that have one, Object as a catch-all for the lattice's abstract
// supertypes and for Function (which has no surface syntax of its own),
// and an Object type's own name (or the anonymous "Object" fallback).
func (t *Type) HostName() string {
	switch t.Kind {
	case KindBoolean:
		return "Boolean"
	case KindInteger:
		return "BigInteger"
	case KindDecimal:
		return "BigDecimal"
	case KindString:
		return "String"
	case KindCharacter:
		return "Character"
	case KindIterable:
		return "List<Object>"
	case KindObject:
		if t.Name != nil {
			return *t.Name
		}
		return "Object"
	default:
		// Nil, Any, Equatable, Comparable, Function: no concrete host
		// class corresponds to the abstract lattice type, so fall back
		// to the host's own top type.
		return "Object"
	}
}

// RootScope builds the analyzer's root Scope[*Type], populated with the
// primitive types only; callers that need the native functions and
// testing fixtures build on top of this.
func RootScope() *Scope[*Type] {
	scope := NewScope[*Type](nil)
	for name, t := range primitivesByName {
		_ = scope.Define(name, t)
	}
	return scope
}
