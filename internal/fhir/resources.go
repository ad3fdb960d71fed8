package fhir

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// Resource types handled by the mapper.
const (
	TypeBundle      = "Bundle"
	TypePatient     = "Patient"
	TypeObservation = "Observation"
	TypeCondition   = "Condition"
	TypeEncounter   = "Encounter"
)

type reference struct {
	Reference string `mapstructure:"reference"`
}

type coding struct {
	Code *string `mapstructure:"code"`
}

type codeableConcept struct {
	Coding []coding `mapstructure:"coding"`
}

// firstCode returns the code of the first coding, or nil.
func (c *codeableConcept) firstCode() any {
	if c == nil || len(c.Coding) == 0 {
		return nil
	}
	return str(c.Coding[0].Code)
}

type quantity struct {
	Value any     `mapstructure:"value"`
	Unit  *string `mapstructure:"unit"`
}

type period struct {
	Start *string `mapstructure:"start"`
}

type humanName struct {
	Given  []string `mapstructure:"given"`
	Family *string  `mapstructure:"family"`
}

type patient struct {
	ID        string      `mapstructure:"id"`
	Name      []humanName `mapstructure:"name"`
	Gender    *string     `mapstructure:"gender"`
	BirthDate *string     `mapstructure:"birthDate"`
}

type observation struct {
	ID                string           `mapstructure:"id"`
	Subject           reference        `mapstructure:"subject"`
	Code              *codeableConcept `mapstructure:"code"`
	ValueQuantity     *quantity        `mapstructure:"valueQuantity"`
	EffectiveDateTime *string          `mapstructure:"effectiveDateTime"`
}

type condition struct {
	ID            string           `mapstructure:"id"`
	Subject       reference        `mapstructure:"subject"`
	Code          *codeableConcept `mapstructure:"code"`
	OnsetDateTime *string          `mapstructure:"onsetDateTime"`
}

type encounter struct {
	ID      string    `mapstructure:"id"`
	Subject reference `mapstructure:"subject"`
	Period  *period   `mapstructure:"period"`
	Class   *coding   `mapstructure:"class"`
}

// decode copies a generic JSON object into out. Scalars of the wrong JSON
// type are converted where mapstructure can (numbers to strings and back).
func decode(in, out any) error {
	d, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	return d.Decode(in)
}

func str(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

// valueText renders a quantity value the way it appeared in the document.
// Numbers keep their source text, so "7.50" is stored as "7.50" and not
// re-rendered as "7.5". A missing value is null, never a placeholder string
// such as "None".
func valueText(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case json.Number:
		return t.String()
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}

// numeric parses a value text as a finite float.
func numeric(v any) (float64, bool) {
	s, ok := v.(string)
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func (p patient) row() []any {
	var given, family any
	if len(p.Name) > 0 {
		given = strings.Join(p.Name[0].Given, " ")
		family = str(p.Name[0].Family)
	}
	return []any{p.ID, given, family, str(p.Gender), str(p.BirthDate)}
}

func (o observation) rows() (obs []any, meas []any) {
	person := PatientID(o.Subject.Reference)
	code := o.Code.firstCode()
	var value, unit any
	if o.ValueQuantity != nil {
		value = valueText(o.ValueQuantity.Value)
		unit = str(o.ValueQuantity.Unit)
	}
	effective := str(o.EffectiveDateTime)

	obs = []any{o.ID, person, code, value, unit, effective}
	if f, ok := numeric(value); ok {
		meas = []any{o.ID, person, code, f, unit, effective}
	}
	return obs, meas
}

func (c condition) row() []any {
	return []any{c.ID, PatientID(c.Subject.Reference), c.Code.firstCode(), str(c.OnsetDateTime)}
}

func (e encounter) row() []any {
	var start, concept any
	if e.Period != nil {
		start = str(e.Period.Start)
	}
	if e.Class != nil {
		concept = str(e.Class.Code)
	}
	return []any{e.ID, PatientID(e.Subject.Reference), start, concept}
}
