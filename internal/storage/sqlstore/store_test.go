package sqlstore

import (
	"reflect"
	"strconv"
	"testing"
)

func TestQuotedList(t *testing.T) {
	t.Parallel()

	q := func(s string) string { return "[" + s + "]" }
	if got := QuotedList([]string{"a", "b"}, q); got != "[a], [b]" {
		t.Fatalf("QuotedList() = %q", got)
	}
	if got := QuotedList(nil, q); got != "" {
		t.Fatalf("QuotedList(nil) = %q, want empty", got)
	}
}

func TestPlaceholders(t *testing.T) {
	t.Parallel()

	dollar := func(i int) string { return "$" + strconv.Itoa(i) }
	if got := Placeholders(3, dollar); got != "$1, $2, $3" {
		t.Fatalf("Placeholders() = %q", got)
	}
}

func TestNonKey(t *testing.T) {
	t.Parallel()

	got := NonKey([]string{"id", "a", "b", "k2"}, []string{"k2", "id"})
	if want := []string{"a", "b"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("NonKey() = %v, want %v", got, want)
	}
}

func TestCheckRows(t *testing.T) {
	t.Parallel()

	if err := checkRows(nil, nil); err == nil {
		t.Fatal("checkRows(no columns) error = nil, want error")
	}
	if err := checkRows([]string{"a"}, [][]any{{1}, {1, 2}}); err == nil {
		t.Fatal("checkRows(mismatch) error = nil, want error")
	}
	if err := checkRows([]string{"a"}, [][]any{{1}}); err != nil {
		t.Fatalf("checkRows() error = %v", err)
	}
}
