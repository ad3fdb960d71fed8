package file

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestWalk_LexicalRecursiveMatching(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	for _, rel := range []string{"b.json", "a.json", "notes.txt", "sub/c.json", "sub/deeper/d.json", "z/e.JSON"} {
		p := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatalf("MkdirAll: %v", err)
		}
		if err := os.WriteFile(p, []byte("{}"), 0o644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
	}

	var got []string
	err := Walk(context.Background(), root, "*.json", func(path string) error {
		rel, _ := filepath.Rel(root, path)
		got = append(got, filepath.ToSlash(rel))
		return nil
	}, nil)
	if err != nil {
		t.Fatalf("Walk() error = %v", err)
	}
	want := []string{"a.json", "b.json", "sub/c.json", "sub/deeper/d.json"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Walk() visited %v, want %v", got, want)
	}
}

func TestWalk_MissingRootIsFatal(t *testing.T) {
	t.Parallel()

	err := Walk(context.Background(), filepath.Join(t.TempDir(), "nope"), "*.json", func(string) error { return nil }, nil)
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("Walk() error = %v, want os.ErrNotExist", err)
	}
}

func TestWalk_CallbackErrorStops(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	for _, n := range []string{"a.json", "b.json"} {
		if err := os.WriteFile(filepath.Join(root, n), []byte("{}"), 0o644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
	}
	stop := errors.New("stop")
	calls := 0
	err := Walk(context.Background(), root, "*.json", func(string) error {
		calls++
		return stop
	}, nil)
	if !errors.Is(err, stop) || calls != 1 {
		t.Fatalf("Walk() = (%v, calls=%d), want (stop, 1)", err, calls)
	}
}

func TestWalk_BadPattern(t *testing.T) {
	t.Parallel()

	if err := Walk(context.Background(), t.TempDir(), "[", func(string) error { return nil }, nil); err == nil {
		t.Fatal("Walk(bad pattern) error = nil, want error")
	}
}
