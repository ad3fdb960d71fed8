// This file implements a generic, synchronous batcher that groups rows and
// hands each full batch to a flush function (typically a Writer method bound
// to a table).
//
// Logging: on every successful flush, a concise progress line is emitted with
// running totals and instantaneous rows/sec since the previous flush.

package storage

import (
	"context"
	"fmt"
	"log"
	"time"
)

// FlushFn writes one batch of rows aligned to columns and returns the number
// of rows reported as written. It must be safe for repeated calls.
type FlushFn func(ctx context.Context, columns []string, rows [][]any) (int64, error)

// Batch accumulates rows and flushes them through a FlushFn every time size
// rows are buffered. Callers must call Flush once more after the last Add.
type Batch struct {
	name    string
	columns []string
	size    int
	flush   FlushFn

	rows      [][]any
	total     int64
	batches   int64
	start     time.Time
	lastFlush time.Time
	lastTotal int64
}

// NewBatch returns a Batch that logs under name.
func NewBatch(name string, columns []string, size int, flush FlushFn) (*Batch, error) {
	if size <= 0 {
		return nil, fmt.Errorf("batch size must be > 0")
	}
	if flush == nil {
		return nil, fmt.Errorf("flush must not be nil")
	}
	now := time.Now()
	return &Batch{
		name:      name,
		columns:   columns,
		size:      size,
		flush:     flush,
		rows:      make([][]any, 0, min(size, 4096)),
		start:     now,
		lastFlush: now,
	}, nil
}

// Add buffers row and flushes when the batch is full.
func (b *Batch) Add(ctx context.Context, row []any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(row) != len(b.columns) {
		return fmt.Errorf("%s: row length %d != columns length %d", b.name, len(row), len(b.columns))
	}
	b.rows = append(b.rows, row)
	if len(b.rows) >= b.size {
		return b.Flush(ctx)
	}
	return nil
}

// Flush writes any buffered rows. It is a no-op when the buffer is empty.
func (b *Batch) Flush(ctx context.Context) error {
	if len(b.rows) == 0 {
		return nil
	}
	n, err := b.flush(ctx, b.columns, b.rows)
	b.total += n

	// Reuse the backing array; the flush function must not retain rows.
	b.rows = b.rows[:0]

	if err != nil {
		log.Printf("%s: flush failed after=%d total=%d err=%v", b.name, n, b.total, err)
		return err
	}

	b.batches++
	now := time.Now()
	sinceLast := now.Sub(b.lastFlush)
	rps := float64(0)
	if sinceLast > 0 {
		rps = float64(b.total-b.lastTotal) / sinceLast.Seconds()
	}
	log.Printf(
		"%s: batch #%d: rps=%.0f written=%d total_written=%d elapsed=%s since_last=%s",
		b.name,
		b.batches,
		rps,
		n,
		b.total,
		now.Sub(b.start).Truncate(time.Millisecond),
		sinceLast.Truncate(time.Millisecond),
	)
	b.lastFlush = now
	b.lastTotal = b.total
	return nil
}

func (b *Batch) pending() int { return len(b.rows) }

// Total returns the number of rows reported written so far.
func (b *Batch) Total() int64 { return b.total }

// Batches returns the number of successful flushes.
func (b *Batch) Batches() int64 { return b.batches }
