// Package variant loads tab-separated variant annotation dumps (ClinVar
// variant_summary layout) into the store and derives content-addressed
// identifiers from them.
//
// Three stages live here:
//
//   - LoadVariants copies a handful of descriptive columns into "variant".
//   - FilterTable keeps the rows whose clinical significance contains a
//     substring and appends them to "variant_pathogenic".
//   - NormalizeIdentifiers turns filtered rows into "chrom:pos:ref:alt" keys,
//     hashes them, and inserts them into "variant_vrs" without overwriting
//     identifiers that already exist.
//
// Source files differ between releases, so every stage probes which of its
// desired columns are present and works with that subset.
package variant

import "clinetl/internal/ddl"

// Default table names.
const (
	VariantTable    = "variant"
	FilteredTable   = "variant_pathogenic"
	IdentifierTable = "variant_vrs"
)

// Stage names used for skip records and metrics.
const (
	StageLoad      = "load"
	StageFilter    = "filter"
	StageNormalize = "normalize"
)

// Source column names.
const (
	ColVariationID          = "VariationID"
	ColGeneSymbol           = "GeneSymbol"
	ColClinicalSignificance = "ClinicalSignificance"
	ColType                 = "Type"
	ColReviewStatus         = "ReviewStatus"
	ColChromosome           = "Chromosome"
	ColStart                = "Start"
	ColReferenceAllele      = "ReferenceAllele"
	ColAlternateAllele      = "AlternateAllele"
	ColPositionVCF          = "PositionVCF"
	ColReferenceAlleleVCF   = "ReferenceAlleleVCF"
	ColAlternateAlleleVCF   = "AlternateAlleleVCF"
)

// LoadColumns are copied into VariantTable by LoadVariants.
var LoadColumns = []string{
	ColVariationID,
	ColGeneSymbol,
	ColClinicalSignificance,
	ColType,
	ColReviewStatus,
}

// FilteredColumns are kept by FilterTable, in this order, when present.
var FilteredColumns = []string{
	ColVariationID,
	ColGeneSymbol,
	ColClinicalSignificance,
	ColChromosome,
	ColStart,
	ColReferenceAllele,
	ColAlternateAllele,
	ColPositionVCF,
	ColReferenceAlleleVCF,
	ColAlternateAlleleVCF,
}

// NormalizeColumns are read back by NormalizeIdentifiers, when present.
var NormalizeColumns = []string{
	ColVariationID,
	ColGeneSymbol,
	ColChromosome,
	ColStart,
	ColPositionVCF,
	ColReferenceAllele,
	ColAlternateAllele,
	ColReferenceAlleleVCF,
	ColAlternateAlleleVCF,
}

// IntColumns hold integer-like values and are parsed to int64 on read.
var IntColumns = []string{ColVariationID, ColStart, ColPositionVCF}

// Identifier table columns.
const (
	ColVrsID    = "vrs_id"
	ColVrsInput = "vrs_input"
)

// IdentifierColumns is the write order of identifier rows.
var IdentifierColumns = []string{ColVrsID, ColVariationID, ColGeneSymbol, ColVrsInput}

// IdentifierDef returns the definition of the identifier table named fqn.
func IdentifierDef(fqn string) ddl.TableDef {
	return ddl.TableDef{
		FQN: fqn,
		Columns: []ddl.ColumnDef{
			{Name: ColVrsID, Type: ddl.Text, PrimaryKey: true},
			{Name: ColVariationID, Type: ddl.Integer, Nullable: true},
			{Name: ColGeneSymbol, Type: ddl.Text, Nullable: true},
			{Name: ColVrsInput, Type: ddl.Text, Nullable: true},
		},
	}
}
