package storage

import (
	"context"
	"errors"
	"testing"
)

// TestBatch_Basic verifies rows are grouped into batches and the flush
// function is called with the expected counts.
func TestBatch_Basic(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	var sizes []int
	flush := func(_ context.Context, cols []string, rows [][]any) (int64, error) {
		if len(cols) != 2 {
			t.Errorf("flush columns = %v, want 2 columns", cols)
		}
		sizes = append(sizes, len(rows))
		return int64(len(rows)), nil
	}

	b, err := NewBatch("test", []string{"c1", "c2"}, 3, flush)
	if err != nil {
		t.Fatalf("NewBatch() error = %v", err)
	}
	for i := 0; i < 7; i++ {
		if err := b.Add(ctx, []any{i, "x"}); err != nil {
			t.Fatalf("Add(%d) error = %v", i, err)
		}
	}
	if b.pending() != 1 {
		t.Fatalf("pending() = %d, want 1", b.pending())
	}
	if err := b.Flush(ctx); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
	if b.Total() != 7 {
		t.Fatalf("Total() = %d, want 7", b.Total())
	}
	if len(sizes) != 3 || sizes[0] != 3 || sizes[1] != 3 || sizes[2] != 1 {
		t.Fatalf("flush sizes = %v, want [3 3 1]", sizes)
	}
	if b.Batches() != 3 {
		t.Fatalf("Batches() = %d, want 3", b.Batches())
	}
}

// TestBatch_ErrorPropagation ensures a flush error is returned from Add and
// the rows of earlier successful batches stay counted.
func TestBatch_ErrorPropagation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	wantErr := errors.New("copy failed")
	var calls int
	flush := func(_ context.Context, _ []string, rows [][]any) (int64, error) {
		calls++
		if calls == 2 {
			return 0, wantErr
		}
		return int64(len(rows)), nil
	}

	b, err := NewBatch("test", []string{"c"}, 2, flush)
	if err != nil {
		t.Fatalf("NewBatch() error = %v", err)
	}
	var got error
	for i := 0; i < 5 && got == nil; i++ {
		got = b.Add(ctx, []any{i})
	}
	if !errors.Is(got, wantErr) {
		t.Fatalf("Add() error = %v, want %v", got, wantErr)
	}
	if b.Total() != 2 {
		t.Fatalf("Total() = %d, want 2", b.Total())
	}
}

func TestBatch_RejectsBadInput(t *testing.T) {
	t.Parallel()

	ok := func(context.Context, []string, [][]any) (int64, error) { return 0, nil }
	if _, err := NewBatch("x", nil, 0, ok); err == nil {
		t.Fatal("NewBatch(size=0) error = nil, want error")
	}
	if _, err := NewBatch("x", nil, 1, nil); err == nil {
		t.Fatal("NewBatch(flush=nil) error = nil, want error")
	}

	b, err := NewBatch("x", []string{"a", "b"}, 10, ok)
	if err != nil {
		t.Fatalf("NewBatch() error = %v", err)
	}
	if err := b.Add(context.Background(), []any{1}); err == nil {
		t.Fatal("Add(short row) error = nil, want error")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := b.Add(ctx, []any{1, 2}); !errors.Is(err, context.Canceled) {
		t.Fatalf("Add(canceled ctx) error = %v, want context.Canceled", err)
	}
}

func TestBatch_FlushEmptyIsNoop(t *testing.T) {
	t.Parallel()

	called := false
	b, err := NewBatch("x", []string{"a"}, 5, func(context.Context, []string, [][]any) (int64, error) {
		called = true
		return 0, nil
	})
	if err != nil {
		t.Fatalf("NewBatch() error = %v", err)
	}
	if err := b.Flush(context.Background()); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
	if called {
		t.Fatal("Flush() on empty batch invoked flush function")
	}
}
