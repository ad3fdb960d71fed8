package tsv

// Chunk is a bounded slice of rows sharing one header.
type Chunk struct {
	Header []string
	Rows   [][]any
	index  map[string]int
}

func newChunk(header []string, rows [][]any) *Chunk {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		if _, ok := idx[h]; !ok {
			idx[h] = i
		}
	}
	return &Chunk{Header: header, Rows: rows, index: idx}
}

// Len returns the number of rows.
func (c *Chunk) Len() int { return len(c.Rows) }

// Index returns the position of column name, or -1.
func (c *Chunk) Index(name string) int {
	if i, ok := c.index[name]; ok {
		return i
	}
	return -1
}

// Has reports whether the chunk carries column name.
func (c *Chunk) Has(name string) bool { return c.Index(name) >= 0 }

// Present returns the names from want that the chunk carries, in want's
// order.
func (c *Chunk) Present(want []string) []string {
	out := make([]string, 0, len(want))
	for _, w := range want {
		if c.Has(w) {
			out = append(out, w)
		}
	}
	return out
}

// Project returns rows restricted to cols (which must all be present), in
// cols order.
func (c *Chunk) Project(rows [][]any, cols []string) [][]any {
	pos := make([]int, len(cols))
	for i, name := range cols {
		pos[i] = c.Index(name)
	}
	out := make([][]any, len(rows))
	for r, row := range rows {
		p := make([]any, len(pos))
		for i, j := range pos {
			if j >= 0 {
				p[i] = row[j]
			}
		}
		out[r] = p
	}
	return out
}
