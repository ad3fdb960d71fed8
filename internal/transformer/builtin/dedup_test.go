package builtin

import (
	"reflect"
	"testing"
)

func TestDeDupKeepFirst(t *testing.T) {
	in := [][]any{
		{"id1", "A"},
		{"id1", "B"},
		{"id2", "C"},
	}
	got := DeDup{Key: 0, Policy: "keep-first"}.Apply(in)
	want := [][]any{
		{"id1", "A"},
		{"id2", "C"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("keep-first: got %#v want %#v", got, want)
	}
}

func TestDeDupKeepLast(t *testing.T) {
	in := [][]any{
		{"id1", "A"},
		{"id2", "C"},
		{"id1", "B"},
	}
	got := DeDup{Key: 0}.Apply(in)
	want := [][]any{
		{"id1", "B"},
		{"id2", "C"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("keep-last: got %#v want %#v", got, want)
	}
}

func TestDeDupNonStringAndNilKeys(t *testing.T) {
	in := [][]any{
		{int64(7), "a"},
		{nil, "unkeyed"},
		{int64(7), "b"},
		{"7", "c"},
	}
	got := DeDup{Key: 0, Policy: "keep-first"}.Apply(in)
	// int64(7) and "7" render to the same key text.
	want := [][]any{
		{int64(7), "a"},
		{nil, "unkeyed"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v want %#v", got, want)
	}
}

func TestDeDupOutOfRangeKey(t *testing.T) {
	in := [][]any{{"a"}, {"a"}}
	got := DeDup{Key: 3}.Apply(in)
	if len(got) != 2 {
		t.Fatalf("rows without a key column must pass through, got %#v", got)
	}
}

func TestDeDupSmallInputUnchanged(t *testing.T) {
	in := [][]any{{"only"}}
	if got := (DeDup{}).Apply(in); !reflect.DeepEqual(got, in) {
		t.Fatalf("got %#v want %#v", got, in)
	}
}
