package tsv

import (
	"context"
	"errors"
	"io"
	"reflect"
	"strings"
	"testing"
)

// readAll drains r and returns the chunk sizes and all rows.
func readAll(t *testing.T, r *Reader) ([]int, [][]any) {
	t.Helper()
	var (
		sizes []int
		rows  [][]any
	)
	for {
		c, err := r.Next(context.Background())
		if errors.Is(err, io.EOF) {
			return sizes, rows
		}
		if err != nil {
			t.Fatalf("Next() error = %v", err)
		}
		sizes = append(sizes, c.Len())
		rows = append(rows, c.Rows...)
	}
}

func TestReader_ChunksAndTypes(t *testing.T) {
	t.Parallel()

	src := "VariationID\tGeneSymbol\tStart\n" +
		"1\tBRCA1\t100\n" +
		"2\tNA\tx12\n" +
		"3\t\t-5\n" +
		"4\tTP53\t\n" +
		"5\tna\t7\n"
	r, err := NewReader(strings.NewReader(src), Options{ChunkSize: 2, IntColumns: []string{"VariationID", "Start"}})
	if err != nil {
		t.Fatalf("NewReader() error = %v", err)
	}
	if want := []string{"VariationID", "GeneSymbol", "Start"}; !reflect.DeepEqual(r.header, want) {
		t.Fatalf("header = %v, want %v", r.header, want)
	}

	sizes, rows := readAll(t, r)
	if want := []int{2, 2, 1}; !reflect.DeepEqual(sizes, want) {
		t.Fatalf("chunk sizes = %v, want %v", sizes, want)
	}
	want := [][]any{
		{int64(1), "BRCA1", int64(100)},
		{int64(2), nil, "x12"},
		{int64(3), nil, int64(-5)},
		{int64(4), "TP53", nil},
		{int64(5), "na", int64(7)},
	}
	if !reflect.DeepEqual(rows, want) {
		t.Fatalf("rows = %#v, want %#v", rows, want)
	}
	if r.Rows() != 5 {
		t.Fatalf("Rows() = %d, want 5", r.Rows())
	}
}

func TestReader_LenientRecords(t *testing.T) {
	t.Parallel()

	src := "\uFEFF a \tb\tc\n" +
		"short\n" +
		"x\ty\tz\textra\n" +
		"\n" +
		"he said \"hi\"\tq\"uote\tok\n"
	r, err := NewReader(strings.NewReader(src), Options{})
	if err != nil {
		t.Fatalf("NewReader() error = %v", err)
	}
	if want := []string{"a", "b", "c"}; !reflect.DeepEqual(r.header, want) {
		t.Fatalf("header = %q, want %q", r.header, want)
	}
	_, rows := readAll(t, r)
	want := [][]any{
		{"short", nil, nil},
		{"x", "y", "z"},
		{`he said "hi"`, `q"uote`, "ok"},
	}
	if !reflect.DeepEqual(rows, want) {
		t.Fatalf("rows = %#v, want %#v", rows, want)
	}
}

func TestReader_DuplicateHeaders(t *testing.T) {
	t.Parallel()

	r, err := NewReader(strings.NewReader("a\ta\tb\ta\n"), Options{})
	if err != nil {
		t.Fatalf("NewReader() error = %v", err)
	}
	if want := []string{"a", "a.1", "b", "a.2"}; !reflect.DeepEqual(r.header, want) {
		t.Fatalf("header = %v, want %v", r.header, want)
	}
	if _, err := r.Next(context.Background()); !errors.Is(err, io.EOF) {
		t.Fatalf("Next() on header-only input error = %v, want io.EOF", err)
	}
}

func TestReader_CustomNullValues(t *testing.T) {
	t.Parallel()

	r, err := NewReader(strings.NewReader("a\tb\n-\tNA\n"), Options{NullValues: []string{"-"}})
	if err != nil {
		t.Fatalf("NewReader() error = %v", err)
	}
	_, rows := readAll(t, r)
	if want := [][]any{{nil, "NA"}}; !reflect.DeepEqual(rows, want) {
		t.Fatalf("rows = %#v, want %#v", rows, want)
	}
}

func TestReader_EmptyInput(t *testing.T) {
	t.Parallel()

	if _, err := NewReader(strings.NewReader(""), Options{}); err == nil {
		t.Fatal("NewReader(empty) error = nil, want error")
	}
}

func TestReader_CanceledContext(t *testing.T) {
	t.Parallel()

	r, err := NewReader(strings.NewReader("a\n1\n"), Options{})
	if err != nil {
		t.Fatalf("NewReader() error = %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.Next(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Next() error = %v, want context.Canceled", err)
	}
}

func TestChunk_PresentAndProject(t *testing.T) {
	t.Parallel()

	c := newChunk([]string{"x", "GeneSymbol", "VariationID"}, [][]any{
		{"drop", "G1", int64(1)},
		{"drop", nil, int64(2)},
	})
	cols := c.Present([]string{"VariationID", "Missing", "GeneSymbol"})
	if want := []string{"VariationID", "GeneSymbol"}; !reflect.DeepEqual(cols, want) {
		t.Fatalf("Present() = %v, want %v", cols, want)
	}
	got := c.Project(c.Rows[1:], cols)
	if want := [][]any{{int64(2), nil}}; !reflect.DeepEqual(got, want) {
		t.Fatalf("Project() = %#v, want %#v", got, want)
	}
	if c.Index("Missing") != -1 || !c.Has("x") {
		t.Fatal("Index/Has disagree with header")
	}
}
