package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// MissingValue is the value reported for a declaration that was not found
const MissingValue = "Missing"

// Field identifies one of the seven mandatory label declarations
type Field int

const (
	FieldManufacturerDetails Field = iota
	FieldCommonName
	FieldNetQuantity
	FieldMRP
	FieldDateOfMfg
	FieldConsumerCare
	FieldCountryOfOrigin

	// FieldCount is the number of mandatory declarations
	FieldCount = 7
)

var fieldKeys = [FieldCount]string{
	FieldManufacturerDetails: "manufacturer_details",
	FieldCommonName:          "common_name",
	FieldNetQuantity:         "net_quantity",
	FieldMRP:                 "mrp",
	FieldDateOfMfg:           "date_of_mfg",
	FieldConsumerCare:        "consumer_care",
	FieldCountryOfOrigin:     "country_of_origin",
}

var fieldLabels = [FieldCount]string{
	FieldManufacturerDetails: "Name & Address of Manufacturer",
	FieldCommonName:          "Common or Generic Name of Commodity",
	FieldNetQuantity:         "Net Quantity",
	FieldMRP:                 "Maximum Retail Price (MRP)",
	FieldDateOfMfg:           "Date of Manufacture / Packing",
	FieldConsumerCare:        "Consumer Care Details",
	FieldCountryOfOrigin:     "Country of Origin",
}

// Fields returns all declaration fields in report order
func Fields() []Field {
	fields := make([]Field, FieldCount)
	for i := range fields {
		fields[i] = Field(i)
	}
	return fields
}

// Valid reports whether f is one of the seven declaration fields
func (f Field) Valid() bool {
	return f >= 0 && int(f) < FieldCount
}

// Key returns the wire key of the field (e.g. "net_quantity")
func (f Field) Key() string {
	if !f.Valid() {
		return fmt.Sprintf("field(%d)", int(f))
	}
	return fieldKeys[f]
}

// Label returns the human-readable name of the field
func (f Field) Label() string {
	if !f.Valid() {
		return ""
	}
	return fieldLabels[f]
}

func (f Field) String() string { return f.Key() }

// ParseField maps a wire key back to its Field
func ParseField(key string) (Field, bool) {
	for i, k := range fieldKeys {
		if k == key {
			return Field(i), true
		}
	}
	return 0, false
}

// Declaration is the verdict for a single mandatory declaration
type Declaration struct {
	Found bool   `json:"found"`
	Value string `json:"value"`
	Label string `json:"label"`
}

// Declarations holds exactly one verdict per Field, indexed by Field
type Declarations [FieldCount]Declaration

// NewDeclarations returns a set with every field marked missing
func NewDeclarations() Declarations {
	var d Declarations
	for _, f := range Fields() {
		d[f] = Declaration{Found: false, Value: MissingValue, Label: f.Label()}
	}
	return d
}

// Set records a found declaration for field f
func (d *Declarations) Set(f Field, value string) {
	d[f] = Declaration{Found: true, Value: value, Label: f.Label()}
}

// Get returns the declaration for field f
func (d Declarations) Get(f Field) Declaration {
	return d[f]
}

// FoundCount returns the number of declarations marked found
func (d Declarations) FoundCount() int {
	n := 0
	for _, decl := range d {
		if decl.Found {
			n++
		}
	}
	return n
}

// MarshalJSON encodes the set as an object keyed by field key, in field order
func (d Declarations) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range Fields() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, _ := json.Marshal(f.Key())
		buf.Write(key)
		buf.WriteByte(':')
		value, err := json.Marshal(d[f])
		if err != nil {
			return nil, err
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an object keyed by field key. Absent keys are
// reported missing; unknown keys are rejected.
func (d *Declarations) UnmarshalJSON(data []byte) error {
	var raw map[string]Declaration
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	decoded := NewDeclarations()
	for key, decl := range raw {
		f, ok := ParseField(key)
		if !ok {
			return fmt.Errorf("unknown declaration field %q", key)
		}
		decl.Label = f.Label()
		decoded[f] = decl
	}
	*d = decoded
	return nil
}
