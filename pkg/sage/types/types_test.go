package types

import "testing"

func TestIsSubtype_Reflexive(t *testing.T) {
	for _, prim := range []*Type{Nil, Boolean, Integer, Decimal, String, Character, Any, Equatable, Comparable, Iterable} {
		if !IsSubtype(prim, prim) {
			t.Errorf("%s is not a subtype of itself", prim)
		}
	}
}

func TestIsSubtype_AnyIsTop(t *testing.T) {
	for _, prim := range []*Type{Nil, Boolean, Integer, Decimal, String, Character, Equatable, Comparable, Iterable} {
		if !IsSubtype(prim, Any) {
			t.Errorf("%s should be a subtype of Any", prim)
		}
	}
}

func TestIsSubtype_EquatableSupertypes(t *testing.T) {
	for _, prim := range []*Type{Nil, Boolean, Integer, Decimal, String, Comparable, Iterable} {
		if !IsSubtype(prim, Equatable) {
			t.Errorf("%s should be a subtype of Equatable", prim)
		}
	}
	if IsSubtype(Character, Equatable) {
		t.Errorf("Character should not be a subtype of Equatable")
	}
}

func TestIsSubtype_ComparableSupertypes(t *testing.T) {
	for _, prim := range []*Type{Boolean, Integer, Decimal, String} {
		if !IsSubtype(prim, Comparable) {
			t.Errorf("%s should be a subtype of Comparable", prim)
		}
	}
	if IsSubtype(Iterable, Comparable) {
		t.Errorf("Iterable should not be a subtype of Comparable")
	}
}

func TestIsSubtype_Transitivity(t *testing.T) {
	// Integer <: Comparable and Comparable <: Any, so Integer <: Any.
	if !IsSubtype(Integer, Comparable) {
		t.Fatalf("Integer should be a subtype of Comparable")
	}
	if !IsSubtype(Integer, Any) {
		t.Fatalf("Integer should be a subtype of Any")
	}
}

func TestIsSubtype_UnrelatedPrimitivesFail(t *testing.T) {
	if IsSubtype(Integer, Decimal) {
		t.Errorf("Integer should not be a subtype of Decimal")
	}
	if IsSubtype(String, Boolean) {
		t.Errorf("String should not be a subtype of Boolean")
	}
}

func TestEqual_FunctionStructural(t *testing.T) {
	f1 := NewFunction([]*Type{Integer, String}, Boolean)
	f2 := NewFunction([]*Type{Integer, String}, Boolean)
	if !Equal(f1, f2) {
		t.Errorf("structurally identical function types should be equal")
	}
	f3 := NewFunction([]*Type{Integer}, Boolean)
	if Equal(f1, f3) {
		t.Errorf("function types with different arity should not be equal")
	}
}

func TestEqual_ObjectNominal(t *testing.T) {
	scopeA := NewScope[*Type](nil)
	scopeB := NewScope[*Type](nil)
	name := "Point"
	o1 := NewObject(&name, scopeA)
	o2 := NewObject(&name, scopeA)
	o3 := NewObject(&name, scopeB)
	if !Equal(o1, o2) {
		t.Errorf("objects sharing a scope should be equal")
	}
	if Equal(o1, o3) {
		t.Errorf("objects with distinct scopes should not be equal, even with the same name")
	}
}

func TestLookup_AndPrimitiveNameCollision(t *testing.T) {
	if _, ok := Lookup("Integer"); !ok {
		t.Fatalf("expected Integer to resolve")
	}
	if !IsPrimitiveName("Any") {
		t.Errorf("Any should be a primitive name")
	}
	if IsPrimitiveName("Point") {
		t.Errorf("Point should not collide with a primitive name")
	}
}

func TestRootScope_HasAllPrimitives(t *testing.T) {
	root := RootScope()
	for _, name := range []string{"Nil", "Boolean", "Integer", "Decimal", "String", "Character", "Any", "Equatable", "Comparable", "Iterable"} {
		if _, ok := root.Get(name, true); !ok {
			t.Errorf("root scope missing primitive %q", name)
		}
	}
}
