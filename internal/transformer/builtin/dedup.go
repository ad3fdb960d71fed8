// Package builtin contains reusable row transformers.
//
// DeDup collapses duplicate rows of a batch by one key column before the
// batch reaches the database, and chooses a winner according to a policy:
//
//   - "keep-first": keep the earliest occurrence in the batch
//   - "keep-last" : keep the latest occurrence in the batch (default)
//
// Keys are bucketed by their xxh3 hash and compared in full inside a bucket,
// so a hash collision never merges distinct keys. The database should still
// enforce its PRIMARY KEY as a backstop.
package builtin

import (
	"fmt"
	"strings"

	"github.com/zeebo/xxh3"
)

// DeDup implements in-memory de-duplication of [][]any rows.
type DeDup struct {
	// Key is the index of the key column in each row.
	Key int

	// Policy selects the winner among duplicates: "keep-first" or
	// "keep-last" (default).
	Policy string
}

// Apply returns the winning rows, one per key, in order of each key's first
// appearance. Rows whose key cell is nil or missing cannot be keyed and are
// appended unchanged after the winners.
func (d DeDup) Apply(in [][]any) [][]any {
	if len(in) < 2 {
		return in
	}
	keepFirst := strings.EqualFold(strings.TrimSpace(d.Policy), "keep-first")

	out := make([][]any, 0, len(in))
	keys := make([]string, 0, len(in))
	buckets := make(map[uint64][]int, len(in))
	var passthrough [][]any

	for _, row := range in {
		key, ok := d.keyOf(row)
		if !ok {
			passthrough = append(passthrough, row)
			continue
		}
		h := xxh3.HashString(key)
		winner := -1
		for _, i := range buckets[h] {
			if keys[i] == key {
				winner = i
				break
			}
		}
		switch {
		case winner < 0:
			buckets[h] = append(buckets[h], len(out))
			out = append(out, row)
			keys = append(keys, key)
		case !keepFirst:
			out[winner] = row
		}
	}
	return append(out, passthrough...)
}

func (d DeDup) keyOf(row []any) (string, bool) {
	if d.Key < 0 || d.Key >= len(row) {
		return "", false
	}
	switch t := row[d.Key].(type) {
	case nil:
		return "", false
	case string:
		return t, true
	default:
		return fmt.Sprint(t), true
	}
}
