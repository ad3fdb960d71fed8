package metrics

import (
	"errors"
	"sync"
	"testing"
	"time"
)

// fakeBackend is a simple in-memory Backend implementation for tests.
type fakeBackend struct {
	mu sync.Mutex

	callsCounters   []counterCall
	callsHistograms []histCall
	flushCount      int
}

type counterCall struct {
	name   string
	delta  float64
	labels Labels
}

type histCall struct {
	name   string
	value  float64
	labels Labels
}

func (f *fakeBackend) IncCounter(name string, delta float64, labels Labels) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.callsCounters = append(f.callsCounters, counterCall{name, delta, labels})
}

func (f *fakeBackend) ObserveHistogram(name string, value float64, labels Labels) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.callsHistograms = append(f.callsHistograms, histCall{name, value, labels})
}

func (f *fakeBackend) Flush() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.flushCount++
	return nil
}

// These tests swap the package-level backend and therefore do not run in
// parallel.

func TestRecordStep_SuccessAndFailure(t *testing.T) {
	orig := backend
	defer func() { backend = orig }()

	fb := &fakeBackend{}
	backend = fb

	RecordStep("run1", "filter", nil, 2*time.Second)
	RecordStep("run1", "normalize", errors.New("boom"), 1500*time.Millisecond)

	if len(fb.callsCounters) != 2 {
		t.Fatalf("expected 2 counter calls, got %d", len(fb.callsCounters))
	}
	if len(fb.callsHistograms) != 2 {
		t.Fatalf("expected 2 histogram calls, got %d", len(fb.callsHistograms))
	}

	tests := []struct {
		idx        int
		wantStep   string
		wantStatus string
		wantSecs   float64
	}{
		{0, "filter", "success", 2.0},
		{1, "normalize", "failure", 1.5},
	}
	for _, tt := range tests {
		cc := fb.callsCounters[tt.idx]
		if cc.name != StepTotal || cc.delta != 1 {
			t.Fatalf("counter[%d] = %#v; want name=%s delta=1", tt.idx, cc, StepTotal)
		}
		if cc.labels["job"] != "run1" || cc.labels["step"] != tt.wantStep || cc.labels["status"] != tt.wantStatus {
			t.Fatalf("counter[%d].labels = %v; want job=run1 step=%s status=%s", tt.idx, cc.labels, tt.wantStep, tt.wantStatus)
		}
		h := fb.callsHistograms[tt.idx]
		if h.name != StepDurationSeconds {
			t.Fatalf("hist[%d].name=%q; want %q", tt.idx, h.name, StepDurationSeconds)
		}
		if h.value < tt.wantSecs-0.001 || h.value > tt.wantSecs+0.001 {
			t.Fatalf("hist[%d].value=%v; want ~%v", tt.idx, h.value, tt.wantSecs)
		}
	}
}

func TestRecordRowsAndBatches(t *testing.T) {
	orig := backend
	defer func() { backend = orig }()

	fb := &fakeBackend{}
	backend = fb

	RecordRows("run1", "filter", "read", 3)
	RecordRows("run1", "filter", "selected", 0) // ignored
	RecordRows("run1", "normalize", "written", 5)
	RecordBatches("run1", "normalize", 2)
	RecordBatches("run1", "normalize", -1) // ignored

	if len(fb.callsCounters) != 3 {
		t.Fatalf("expected 3 counter calls, got %d", len(fb.callsCounters))
	}

	c0 := fb.callsCounters[0]
	if c0.name != RowsTotal || c0.delta != 3 {
		t.Fatalf("counter[0] = %#v; want name=%s delta=3", c0, RowsTotal)
	}
	if c0.labels["step"] != "filter" || c0.labels["kind"] != "read" {
		t.Fatalf("counter[0] labels = %v", c0.labels)
	}

	c1 := fb.callsCounters[1]
	if c1.delta != 5 || c1.labels["step"] != "normalize" || c1.labels["kind"] != "written" {
		t.Fatalf("counter[1] = %#v", c1)
	}

	c2 := fb.callsCounters[2]
	if c2.name != BatchesTotal || c2.delta != 2 {
		t.Fatalf("counter[2] = %#v; want name=%s delta=2", c2, BatchesTotal)
	}
	if c2.labels["job"] != "run1" || c2.labels["step"] != "normalize" {
		t.Fatalf("counter[2].labels = %v", c2.labels)
	}
}

func TestSetBackendAndFlush(t *testing.T) {
	orig := backend
	defer func() { backend = orig }()

	fb := &fakeBackend{}
	SetBackend(fb)

	if backend != fb {
		t.Fatal("SetBackend did not replace global backend")
	}
	if err := Flush(); err != nil {
		t.Fatalf("Flush returned error: %v", err)
	}
	if fb.flushCount != 1 {
		t.Fatalf("expected flushCount=1, got %d", fb.flushCount)
	}

	SetBackend(nil)
	if backend != fb {
		t.Fatal("SetBackend(nil) should not change backend")
	}

	Reset()
	if _, ok := backend.(nopBackend); !ok {
		t.Fatalf("Reset left backend %T; want nopBackend", backend)
	}
	if err := Flush(); err != nil {
		t.Fatalf("nop Flush returned error: %v", err)
	}
}
