package natives

import "testing"

func TestDescribe_KnownNative(t *testing.T) {
	doc, ok := Describe("range")
	if !ok {
		t.Fatalf("expected range to be documented")
	}
	if doc.Arity != "2" {
		t.Errorf("expected arity 2, got %q", doc.Arity)
	}
	if len(doc.Params) != 2 {
		t.Errorf("expected 2 params, got %v", doc.Params)
	}
}

func TestDescribe_UnknownNative(t *testing.T) {
	if _, ok := Describe("nope"); ok {
		t.Fatalf("expected nope to be undocumented")
	}
}

func TestNames_IncludesEveryNative(t *testing.T) {
	names := Names()
	want := map[string]bool{
		"debug": false, "print": false, "log": false, "list": false,
		"range": false, "markdown": false, "localize": false,
	}
	for _, n := range names {
		want[n] = true
	}
	for n, found := range want {
		if !found {
			t.Errorf("expected %q to be documented", n)
		}
	}
}

func TestNames_SortedAlphabetically(t *testing.T) {
	names := Names()
	for i := 1; i < len(names); i++ {
		if names[i-1] > names[i] {
			t.Fatalf("names not sorted: %v", names)
		}
	}
}
