package variant

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"strconv"
)

// AlleleKey is the canonical description of a variant allele.
type AlleleKey struct {
	Chromosome string
	Position   string
	Reference  string
	Alternate  string
}

// String renders the key as "chrom:pos:ref:alt".
func (k AlleleKey) String() string {
	return k.Chromosome + ":" + k.Position + ":" + k.Reference + ":" + k.Alternate
}

// ID returns the identifier of the key.
func (k AlleleKey) ID() string { return Identifier(k.String()) }

// Identifier returns the lowercase hex SHA-256 of the UTF-8 bytes of key.
func Identifier(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

// Schema records which of NormalizeColumns a source table carries and
// resolves key parts from rows selected in Columns order.
type Schema struct {
	cols []string
	idx  map[string]int
}

// NewSchema keeps the NormalizeColumns found in present, in NormalizeColumns
// order.
func NewSchema(present []string) Schema {
	have := make(map[string]bool, len(present))
	for _, c := range present {
		have[c] = true
	}
	s := Schema{idx: make(map[string]int, len(NormalizeColumns))}
	for _, c := range NormalizeColumns {
		if have[c] {
			s.idx[c] = len(s.cols)
			s.cols = append(s.cols, c)
		}
	}
	return s
}

// Columns returns the columns to select from the source, in row order.
func (s Schema) Columns() []string { return s.cols }

// Has reports whether the source carries column name.
func (s Schema) Has(name string) bool {
	_, ok := s.idx[name]
	return ok
}

// Usable reports whether identifiers can be derived at all.
func (s Schema) Usable() bool {
	return s.Has(ColVariationID) && s.Has(ColChromosome)
}

// Missing lists the required columns the source lacks.
func (s Schema) Missing() []string {
	var out []string
	for _, c := range []string{ColVariationID, ColChromosome} {
		if !s.Has(c) {
			out = append(out, c)
		}
	}
	return out
}

// Value returns the cell of column name in row, or nil.
func (s Schema) Value(row []any, name string) any {
	i, ok := s.idx[name]
	if !ok || i >= len(row) {
		return nil
	}
	return row[i]
}

// Key resolves the allele key of row. The position column is chosen per
// table: PositionVCF when the table has it, Start otherwise. Alleles prefer
// the VCF column when the row has a value there. ok is false when any part
// is null or empty.
func (s Schema) Key(row []any) (AlleleKey, bool) {
	posCol := ColStart
	if s.Has(ColPositionVCF) {
		posCol = ColPositionVCF
	}
	k := AlleleKey{
		Chromosome: text(s.Value(row, ColChromosome)),
		Position:   text(s.Value(row, posCol)),
		Reference:  s.allele(row, ColReferenceAlleleVCF, ColReferenceAllele),
		Alternate:  s.allele(row, ColAlternateAlleleVCF, ColAlternateAllele),
	}
	if k.Chromosome == "" || k.Position == "" || k.Reference == "" || k.Alternate == "" {
		return AlleleKey{}, false
	}
	return k, true
}

func (s Schema) allele(row []any, vcf, generic string) string {
	if v := text(s.Value(row, vcf)); v != "" {
		return v
	}
	return text(s.Value(row, generic))
}

// text renders a cell for key building. Null becomes "".
func text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case int:
		return strconv.Itoa(t)
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return ""
		}
		if t == math.Trunc(t) && math.Abs(t) < 1e15 {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}
