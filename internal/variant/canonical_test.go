package variant

import (
	"testing"
)

func TestIdentifier_Deterministic(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"1:100:A:T", "e55c392273018632e32f389c0a1919e916abac52407abe2ba205d58fe6520412"},
		{"X:300:C:G", "4c8cca4338f0d2f89cf6a1463bcf1154763b15c18f279c4e18d4f84e7fb5ece9"},
		{"", "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"},
	}
	for _, tt := range tests {
		for i := 0; i < 2; i++ {
			if got := Identifier(tt.in); got != tt.want {
				t.Fatalf("Identifier(%q) = %s, want %s", tt.in, got, tt.want)
			}
		}
		if len(tt.want) != 64 {
			t.Fatalf("identifier length = %d, want 64", len(tt.want))
		}
	}
}

func TestAlleleKey_StringAndID(t *testing.T) {
	t.Parallel()

	k := AlleleKey{Chromosome: "1", Position: "100", Reference: "A", Alternate: "T"}
	if got := k.String(); got != "1:100:A:T" {
		t.Fatalf("String() = %q", got)
	}
	if got := k.ID(); got != Identifier("1:100:A:T") {
		t.Fatalf("ID() = %q", got)
	}
}

func TestSchema_Usable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		present []string
		want    bool
		missing []string
	}{
		{"both", []string{"Chromosome", "VariationID", "Other"}, true, nil},
		{"no chromosome", []string{"VariationID", "Start"}, false, []string{"Chromosome"}},
		{"no variation id", []string{"Chromosome"}, false, []string{"VariationID"}},
		{"absent table", nil, false, []string{"VariationID", "Chromosome"}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := NewSchema(tt.present)
			if got := s.Usable(); got != tt.want {
				t.Fatalf("Usable() = %v, want %v", got, tt.want)
			}
			if got := s.Missing(); len(got) != len(tt.missing) {
				t.Fatalf("Missing() = %v, want %v", got, tt.missing)
			}
		})
	}
}

func TestSchema_ColumnsFollowNormalizeOrder(t *testing.T) {
	t.Parallel()

	s := NewSchema([]string{"AlternateAllele", "Extra", "Chromosome", "VariationID"})
	want := []string{"VariationID", "Chromosome", "AlternateAllele"}
	got := s.Columns()
	if len(got) != len(want) {
		t.Fatalf("Columns() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Columns() = %v, want %v", got, want)
		}
	}
}

// rowFor builds a row aligned to s.Columns() from a name->value map.
func rowFor(s Schema, vals map[string]any) []any {
	row := make([]any, len(s.Columns()))
	for i, c := range s.Columns() {
		row[i] = vals[c]
	}
	return row
}

func TestSchema_Key(t *testing.T) {
	t.Parallel()

	generic := []string{"VariationID", "Chromosome", "Start", "ReferenceAllele", "AlternateAllele"}
	withVCF := append(append([]string{}, generic...), "PositionVCF", "ReferenceAlleleVCF", "AlternateAlleleVCF")

	tests := []struct {
		name    string
		present []string
		vals    map[string]any
		want    string
		ok      bool
	}{
		{
			name:    "generic columns",
			present: generic,
			vals:    map[string]any{"Chromosome": "1", "Start": int64(100), "ReferenceAllele": "A", "AlternateAllele": "T"},
			want:    "1:100:A:T",
			ok:      true,
		},
		{
			name:    "PositionVCF column wins over Start",
			present: withVCF,
			vals:    map[string]any{"Chromosome": "1", "Start": int64(100), "PositionVCF": int64(150), "ReferenceAllele": "A", "AlternateAllele": "T"},
			want:    "1:150:A:T",
			ok:      true,
		},
		{
			name:    "null PositionVCF does not fall back to Start",
			present: withVCF,
			vals:    map[string]any{"Chromosome": "1", "Start": int64(100), "ReferenceAllele": "A", "AlternateAllele": "T"},
			ok:      false,
		},
		{
			name:    "VCF alleles preferred when non-empty",
			present: withVCF,
			vals: map[string]any{
				"Chromosome": "2", "PositionVCF": int64(500),
				"ReferenceAllele": "na", "AlternateAllele": "na",
				"ReferenceAlleleVCF": "AT", "AlternateAlleleVCF": "A",
			},
			want: "2:500:AT:A",
			ok:   true,
		},
		{
			name:    "empty VCF allele falls back to generic",
			present: withVCF,
			vals: map[string]any{
				"Chromosome": "X", "PositionVCF": "300",
				"ReferenceAllele": "C", "AlternateAllele": "G",
				"ReferenceAlleleVCF": "", "AlternateAlleleVCF": nil,
			},
			want: "X:300:C:G",
			ok:   true,
		},
		{
			name:    "null reference in both columns rejected",
			present: withVCF,
			vals: map[string]any{
				"Chromosome": "1", "PositionVCF": int64(100),
				"AlternateAllele": "T", "AlternateAlleleVCF": "T",
			},
			ok: false,
		},
		{
			name:    "empty reference in both columns rejected",
			present: withVCF,
			vals: map[string]any{
				"Chromosome": "1", "PositionVCF": int64(100),
				"ReferenceAllele": "", "ReferenceAlleleVCF": "",
				"AlternateAllele": "T", "AlternateAlleleVCF": "T",
			},
			ok: false,
		},
		{
			name:    "null reference rejected",
			present: generic,
			vals:    map[string]any{"Chromosome": "1", "Start": int64(100), "AlternateAllele": "T"},
			ok:      false,
		},
		{
			name:    "empty alternate rejected",
			present: generic,
			vals:    map[string]any{"Chromosome": "1", "Start": int64(100), "ReferenceAllele": "A", "AlternateAllele": ""},
			ok:      false,
		},
		{
			name:    "empty chromosome rejected",
			present: generic,
			vals:    map[string]any{"Chromosome": "", "Start": int64(100), "ReferenceAllele": "A", "AlternateAllele": "T"},
			ok:      false,
		},
		{
			name:    "integral float position",
			present: generic,
			vals:    map[string]any{"Chromosome": "1", "Start": float64(100), "ReferenceAllele": "A", "AlternateAllele": "T"},
			want:    "1:100:A:T",
			ok:      true,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := NewSchema(tt.present)
			k, ok := s.Key(rowFor(s, tt.vals))
			if ok != tt.ok {
				t.Fatalf("Key() ok = %v, want %v (key %q)", ok, tt.ok, k.String())
			}
			if ok && k.String() != tt.want {
				t.Fatalf("Key() = %q, want %q", k.String(), tt.want)
			}
		})
	}
}
