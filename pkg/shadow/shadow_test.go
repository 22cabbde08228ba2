package shadow

import (
	"errors"
	"testing"
)

func newStringTable() *Table[string, string] {
	return New[string, string](func(a, b string) bool { return a == b })
}

func TestSetGetShadowing(t *testing.T) {
	tab := newStringTable()
	tab.Set("k", "a")
	tab.Set("k", "b")

	got, ok := tab.Get("k")
	if !ok || got != "b" {
		t.Fatalf("Get(k) = %q, %v; want %q, true", got, ok, "b")
	}
	if tab.Depth("k") != 2 {
		t.Errorf("Depth(k) = %d, want 2", tab.Depth("k"))
	}
}

func TestDeleteRestoresShadowed(t *testing.T) {
	tab := newStringTable()
	tab.Set("k", "a")
	tab.Set("k", "b")

	if err := tab.Delete("k"); err != nil {
		t.Fatalf("Delete(k) = %v", err)
	}
	got, ok := tab.Get("k")
	if !ok || got != "a" {
		t.Fatalf("Get(k) after pop = %q, %v; want %q, true", got, ok, "a")
	}
	if err := tab.Delete("k"); err != nil {
		t.Fatalf("second Delete(k) = %v", err)
	}
	if tab.Contains("k") {
		t.Error("key should be gone after popping its last value")
	}
	if err := tab.Delete("k"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete on absent key = %v, want ErrNotFound", err)
	}
}

func TestRemoveValueOutOfOrder(t *testing.T) {
	tab := newStringTable()
	tab.Set("k", "a")
	tab.Set("k", "b")

	if err := tab.RemoveValue("k", "a"); err != nil {
		t.Fatalf("RemoveValue(k, a) = %v", err)
	}
	got, ok := tab.Get("k")
	if !ok || got != "b" {
		t.Fatalf("Get(k) = %q, %v; want %q, true", got, ok, "b")
	}
	if err := tab.Delete("k"); err != nil {
		t.Fatalf("Delete(k) = %v", err)
	}
	if tab.Contains("k") {
		t.Error("key should be empty after removing both values")
	}
}

func TestRemoveValueErrors(t *testing.T) {
	tab := newStringTable()
	if err := tab.RemoveValue("missing", "x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("RemoveValue on absent key = %v, want ErrNotFound", err)
	}
	tab.Set("k", "a")
	if err := tab.RemoveValue("k", "z"); !errors.Is(err, ErrValueNotFound) {
		t.Errorf("RemoveValue on absent value = %v, want ErrValueNotFound", err)
	}
}

func TestRemoveValueFirstMatchOnly(t *testing.T) {
	tab := newStringTable()
	tab.Set("k", "a")
	tab.Set("k", "a")
	tab.Set("k", "b")

	if err := tab.RemoveValue("k", "a"); err != nil {
		t.Fatalf("RemoveValue = %v", err)
	}
	if tab.Depth("k") != 2 {
		t.Fatalf("Depth(k) = %d, want 2", tab.Depth("k"))
	}
	// The second "a" is still shadowed under "b".
	if err := tab.Delete("k"); err != nil {
		t.Fatal(err)
	}
	got, _ := tab.Get("k")
	if got != "a" {
		t.Errorf("Get(k) = %q, want %q", got, "a")
	}
}

func TestKeysAndItems(t *testing.T) {
	tab := newStringTable()
	tab.Set("a", "1")
	tab.Set("b", "2")
	tab.Set("b", "3")

	if tab.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", tab.Len())
	}
	seen := map[string]string{}
	tab.Items(func(k, v string) { seen[k] = v })
	if seen["a"] != "1" || seen["b"] != "3" {
		t.Errorf("Items yielded %v, want a=1 b=3", seen)
	}
}
