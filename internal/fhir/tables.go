// Package fhir maps directories of FHIR-shaped JSON documents into flat
// clinical tables. Bundles are unpacked entry by entry; Patient, Observation,
// Condition and Encounter resources each upsert one row keyed by their own id
// (last write wins), and a few of them are mirrored into OMOP-style tables.
package fhir

import "clinetl/internal/ddl"

// Table names.
const (
	PersonTable              = "person"
	ObservationTable         = "observation"
	ConditionTable           = "condition"
	MeasurementTable         = "measurement"
	VisitOccurrenceTable     = "visit_occurrence"
	ConditionOccurrenceTable = "condition_occurrence"
)

func table(fqn string, cols ...ddl.ColumnDef) ddl.TableDef {
	return ddl.TableDef{FQN: fqn, Columns: cols}
}

func keyCol(name string) ddl.ColumnDef { return ddl.ColumnDef{Name: name, Type: ddl.Text, PrimaryKey: true} }

func textCol(name string) ddl.ColumnDef { return ddl.ColumnDef{Name: name, Type: ddl.Text, Nullable: true} }

func realCol(name string) ddl.ColumnDef { return ddl.ColumnDef{Name: name, Type: ddl.Real, Nullable: true} }

// Tables lists the target table definitions in creation order. The first
// column of each is its primary key.
var Tables = []ddl.TableDef{
	table(PersonTable,
		keyCol("person_id"), textCol("given_name"), textCol("family_name"), textCol("gender"), textCol("birth_date")),
	table(ObservationTable,
		keyCol("obs_id"), textCol("person_id"), textCol("code"), textCol("value"), textCol("unit"), textCol("effective_date")),
	table(ConditionTable,
		keyCol("cond_id"), textCol("person_id"), textCol("code"), textCol("onset_date")),
	table(MeasurementTable,
		keyCol("measurement_id"), textCol("person_id"), textCol("measurement_concept"), realCol("value_as_number"),
		textCol("unit_concept"), textCol("measurement_date")),
	table(VisitOccurrenceTable,
		keyCol("visit_id"), textCol("person_id"), textCol("visit_start_date"), textCol("visit_concept")),
	table(ConditionOccurrenceTable,
		keyCol("condition_occurrence_id"), textCol("person_id"), textCol("condition_concept"), textCol("condition_start_date")),
}

// TableDef returns the definition of one of Tables.
func TableDef(name string) (ddl.TableDef, bool) {
	for _, t := range Tables {
		if t.FQN == name {
			return t, true
		}
	}
	return ddl.TableDef{}, false
}
