// Package skiplog records the rows, chunks and documents a pipeline stage
// skipped on purpose. Skips never fail a run; they are counted per stage and
// reason and, when a directory is configured, appended to
// <dir>/<stage>.csv with the header "stage,reason,detail".
//
// A nil *Recorder is valid and discards everything.
package skiplog

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Header is the first row of every side file.
var Header = []string{"stage", "reason", "detail"}

type key struct{ stage, reason string }

type stageFile struct {
	f *os.File
	w *csv.Writer
}

// Recorder counts skips and optionally mirrors them to CSV side files.
type Recorder struct {
	dir string

	mu     sync.Mutex
	counts map[key]int
	files  map[string]*stageFile
	broken bool // side files disabled after an I/O error
}

// New returns a Recorder. An empty dir keeps counts only.
func New(dir string) *Recorder {
	return &Recorder{
		dir:    dir,
		counts: make(map[key]int),
		files:  make(map[string]*stageFile),
	}
}

// Skip records one skipped item.
func (r *Recorder) Skip(stage, reason, detail string) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.counts[key{stage, reason}]++
	if r.dir == "" || r.broken {
		return
	}
	sf, err := r.file(stage)
	if err != nil {
		log.Printf("skiplog: side file disabled: %v", err)
		r.broken = true
		return
	}
	_ = sf.w.Write([]string{stage, reason, detail})
}

func (r *Recorder) file(stage string) (*stageFile, error) {
	if sf, ok := r.files[stage]; ok {
		return sf, nil
	}
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create dir %s: %w", r.dir, err)
	}
	path := filepath.Join(r.dir, stage+".csv")
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	sf := &stageFile{f: f, w: csv.NewWriter(f)}
	_ = sf.w.Write(Header)
	r.files[stage] = sf
	return sf, nil
}

// Count returns the number of skips recorded for stage and reason.
func (r *Recorder) Count(stage, reason string) int {
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counts[key{stage, reason}]
}

// Total returns the number of skips recorded for stage across all reasons.
func (r *Recorder) Total(stage string) int {
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for k, c := range r.counts {
		if k.stage == stage {
			n += c
		}
	}
	return n
}

// Summary renders the counts as "stage/reason=n" pairs in sorted order, or
// "none".
func (r *Recorder) Summary() string {
	if r == nil {
		return "none"
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.counts) == 0 {
		return "none"
	}
	parts := make([]string, 0, len(r.counts))
	for k, n := range r.counts {
		parts = append(parts, fmt.Sprintf("%s/%s=%d", k.stage, k.reason, n))
	}
	sort.Strings(parts)
	return strings.Join(parts, " ")
}

// Close flushes and closes the side files.
func (r *Recorder) Close() error {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var first error
	for stage, sf := range r.files {
		sf.w.Flush()
		if err := sf.w.Error(); err != nil && first == nil {
			first = fmt.Errorf("skiplog: flush %s: %w", stage, err)
		}
		if err := sf.f.Close(); err != nil && first == nil {
			first = fmt.Errorf("skiplog: close %s: %w", stage, err)
		}
		delete(r.files, stage)
	}
	return first
}
