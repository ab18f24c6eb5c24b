// README: Intake form schema and field store (fixed field set, defaults, completeness).
package form

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidField = errors.New("invalid field")

type Field string

const (
	FullName                Field = "full_name"
	ContactNumber           Field = "contact_number"
	EmailAddress            Field = "email_address"
	VehicleModel            Field = "vehicle_model"
	VINNumber               Field = "vin_number"
	LicensePlate            Field = "license_plate"
	VehicleColor            Field = "vehicle_color"
	AccidentLocationAddress Field = "accident_location_address"
	IsVehicleOperable       Field = "is_vehicle_operable"
	DamageDescription       Field = "damage_description"
	ReasonForTowing         Field = "reason_for_towing"
	InsuranceCompanyName    Field = "insurance_company_name"
	InsurancePolicyNumber   Field = "insurance_policy_number"
)

// Schema is the complete field set in display order.
var Schema = []Field{
	FullName,
	ContactNumber,
	EmailAddress,
	VehicleModel,
	VINNumber,
	LicensePlate,
	VehicleColor,
	AccidentLocationAddress,
	IsVehicleOperable,
	DamageDescription,
	ReasonForTowing,
	InsuranceCompanyName,
	InsurancePolicyNumber,
}

var schemaSet = func() map[Field]struct{} {
	m := make(map[Field]struct{}, len(Schema))
	for _, f := range Schema {
		m[f] = struct{}{}
	}
	return m
}()

func (f Field) Valid() bool {
	_, ok := schemaSet[f]
	return ok
}

// ParseField maps a wire name onto a schema field.
func ParseField(name string) (Field, error) {
	f := Field(strings.TrimSpace(name))
	if !f.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidField, name)
	}
	return f, nil
}

// ParseFields validates a configured field list, dropping duplicates.
func ParseFields(names []string) ([]Field, error) {
	out := make([]Field, 0, len(names))
	seen := make(map[Field]bool, len(names))
	for _, n := range names {
		f, err := ParseField(n)
		if err != nil {
			return nil, err
		}
		if seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	return out, nil
}

// Values maps every schema field to an optional string. nil means unset.
type Values map[Field]*string

// Clone deep-copies v.
func (v Values) Clone() Values {
	out := make(Values, len(v))
	for k, val := range v {
		out[k] = copyPtr(val)
	}
	return out
}

// Value returns the field as a plain string ("" when unset).
func (v Values) Value(f Field) string {
	if p := v[f]; p != nil {
		return *p
	}
	return ""
}

// IsSet reports whether f holds a non-blank value.
func (v Values) IsSet(f Field) bool {
	p := v[f]
	return p != nil && strings.TrimSpace(*p) != ""
}

func Str(s string) *string {
	return &s
}

func copyPtr(p *string) *string {
	if p == nil {
		return nil
	}
	s := *p
	return &s
}
