package types

import "testing"

func TestScope_DefineAndGet(t *testing.T) {
	s := NewScope[int](nil)
	if err := s.Define("x", 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v, ok := s.Get("x", true)
	if !ok || v != 1 {
		t.Fatalf("got (%d, %v), want (1, true)", v, ok)
	}
}

func TestScope_DuplicateDefineErrors(t *testing.T) {
	s := NewScope[int](nil)
	_ = s.Define("x", 1)
	if err := s.Define("x", 2); err == nil {
		t.Fatalf("expected duplicate define to error")
	}
}

func TestScope_ParentChainLookup(t *testing.T) {
	parent := NewScope[int](nil)
	_ = parent.Define("x", 1)
	child := NewScope[int](parent)

	if _, ok := child.Get("x", true); ok {
		t.Fatalf("current-only lookup should not see parent bindings")
	}
	v, ok := child.Get("x", false)
	if !ok || v != 1 {
		t.Fatalf("got (%d, %v), want (1, true)", v, ok)
	}
}

func TestScope_SetUpdatesNearestEnclosingFrame(t *testing.T) {
	parent := NewScope[int](nil)
	_ = parent.Define("x", 1)
	child := NewScope[int](parent)

	if ok := child.Set("x", 99); !ok {
		t.Fatalf("expected set to find x in parent frame")
	}
	v, _ := parent.Get("x", true)
	if v != 99 {
		t.Fatalf("parent binding not updated, got %d", v)
	}
	if _, ok := child.Get("x", true); ok {
		t.Fatalf("set should not have defined x in the child frame")
	}
}

func TestScope_SetUndefinedFails(t *testing.T) {
	s := NewScope[int](nil)
	if ok := s.Set("missing", 1); ok {
		t.Fatalf("set on an undefined name should fail")
	}
}

func TestScope_ObjectScopesAreParentless(t *testing.T) {
	// Object scopes are independent roots: they simply never receive a
	// parent, which this generic Scope already supports.
	objectScope := NewScope[int](nil)
	if objectScope.Parent() != nil {
		t.Fatalf("expected a nil parent")
	}
}
