package storage

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/cenkalti/backoff"

	"clinetl/internal/ddl"
)

// fakeStore is a minimal Store implementation for tests.
type fakeStore struct {
	kind   string
	cols   map[string][]string
	closed bool
}

func (f *fakeStore) InsertRows(context.Context, string, []string, [][]any) (int64, error) {
	return 0, nil
}
func (f *fakeStore) InsertIgnore(context.Context, string, []string, []string, [][]any) (int64, error) {
	return 0, nil
}
func (f *fakeStore) Upsert(context.Context, string, []string, []string, [][]any) (int64, error) {
	return 0, nil
}
func (f *fakeStore) Kind() string { return f.kind }
func (f *fakeStore) EnsureTable(_ context.Context, def ddl.TableDef) error {
	if def.FQN == "broken" {
		return errors.New("boom")
	}
	if f.cols == nil {
		f.cols = make(map[string][]string)
	}
	f.cols[def.FQN] = def.ColumnNames()
	return nil
}
func (f *fakeStore) ReplaceTable(context.Context, ddl.TableDef) error { return nil }
func (f *fakeStore) Columns(_ context.Context, table string) ([]string, error) {
	return f.cols[table], nil
}
func (f *fakeStore) SelectPage(context.Context, string, []string, int, int) ([][]any, error) {
	return nil, nil
}
func (f *fakeStore) Count(context.Context, string) (int64, error) { return 0, nil }
func (f *fakeStore) Begin(context.Context) (Tx, error) { return nil, errors.New("no tx") }
func (f *fakeStore) Close() error {
	f.closed = true
	return nil
}

func noWait() backoff.BackOff { return &backoff.ZeroBackOff{} }

// TestRegisterAndNew_Success verifies that registering a backend enables New()
// to return the corresponding store.
func TestRegisterAndNew_Success(t *testing.T) {
	kind := "fake-success"
	want := &fakeStore{kind: kind}
	Register(kind, func(context.Context, Config) (Store, error) { return want, nil })

	got, err := New(context.Background(), Config{Kind: "FAKE-SUCCESS"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if got != want {
		t.Fatalf("New() = %v, want %v", got, want)
	}
}

func TestNew_UnknownKind(t *testing.T) {
	_, err := New(context.Background(), Config{Kind: "nope"})
	if err == nil || !strings.Contains(err.Error(), `unknown kind "nope"`) {
		t.Fatalf("New() error = %v, want unknown kind", err)
	}
}

// TestNew_RetriesTransientFailures checks that a factory failing fewer times
// than ConnectRetries eventually succeeds, and one failing more often does not.
func TestNew_RetriesTransientFailures(t *testing.T) {
	orig := newBackOff
	newBackOff = noWait
	defer func() { newBackOff = orig }()

	var calls int
	Register("fake-flaky", func(context.Context, Config) (Store, error) {
		calls++
		if calls < 3 {
			return nil, errors.New("connection refused")
		}
		return &fakeStore{kind: "fake-flaky"}, nil
	})

	if _, err := New(context.Background(), Config{Kind: "fake-flaky", ConnectRetries: 2}); err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if calls != 3 {
		t.Fatalf("factory calls = %d, want 3", calls)
	}

	calls = 0
	if _, err := New(context.Background(), Config{Kind: "fake-flaky", ConnectRetries: 1}); err == nil {
		t.Fatal("New() error = nil, want error after exhausting retries")
	}
	if calls != 2 {
		t.Fatalf("factory calls = %d, want 2", calls)
	}
}

func TestEnsureTables(t *testing.T) {
	t.Parallel()

	s := &fakeStore{}
	x := ddl.TableDef{FQN: "x", Columns: []ddl.ColumnDef{{Name: "a", Type: ddl.Text}}}
	y := ddl.TableDef{FQN: "y", Columns: []ddl.ColumnDef{{Name: "b", Type: ddl.Integer}}}
	if err := EnsureTables(context.Background(), s, x, y); err != nil {
		t.Fatalf("EnsureTables() error = %v", err)
	}
	if len(s.cols["x"]) != 1 || len(s.cols["y"]) != 1 {
		t.Fatalf("ensured tables = %v, want x and y", s.cols)
	}

	err := EnsureTables(context.Background(), s, ddl.TableDef{FQN: "broken"}, ddl.TableDef{FQN: "z"})
	if err == nil || !strings.Contains(err.Error(), "ensure table broken") {
		t.Fatalf("EnsureTables() error = %v, want ensure table broken", err)
	}
	if _, ok := s.cols["z"]; ok {
		t.Fatalf("EnsureTables() continued past a failing table")
	}
}
