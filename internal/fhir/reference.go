package fhir

import "strings"

// PatientID extracts the id from a "Patient/<id>" reference. Any other
// reference, or none, yields nil.
func PatientID(ref string) any {
	kind, id, ok := strings.Cut(ref, "/")
	if !ok || kind != "Patient" {
		return nil
	}
	return id
}
