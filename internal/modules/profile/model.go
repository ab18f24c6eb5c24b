// README: Known-user profile (contact, vehicle, insurance) that pre-fills intake forms.
package profile

import (
	"errors"
	"strings"

	"fria/internal/modules/form"
)

var ErrNotFound = errors.New("profile not found")

type Profile struct {
	UserID          string `mapstructure:"user_id"`
	FullName        string `mapstructure:"full_name"`
	ContactNumber   string `mapstructure:"contact_number"`
	EmailAddress    string `mapstructure:"email_address"`
	VehicleModel    string `mapstructure:"vehicle_model"`
	VINNumber       string `mapstructure:"vin_number"`
	LicensePlate    string `mapstructure:"license_plate"`
	VehicleColor    string `mapstructure:"vehicle_color"`
	InsuranceName   string `mapstructure:"insurance_company_name"`
	InsurancePolicy string `mapstructure:"insurance_policy_number"`
}

// Default is the demo account used when no stored profile matches.
var Default = Profile{
	UserID:          "demo",
	FullName:        "Sarah Chen",
	ContactNumber:   "+1-312-555-2098",
	EmailAddress:    "sarah.chen@tesla.com",
	VehicleModel:    "Model 3 Long Range",
	VINNumber:       "5YJ3E1EA7JF123456",
	LicensePlate:    "IL 93Z882",
	VehicleColor:    "White",
	InsuranceName:   "Tesla Insurance",
	InsurancePolicy: "TI-882934",
}

// FirstName returns the first word of FullName.
func (p Profile) FirstName() string {
	if f := strings.Fields(p.FullName); len(f) > 0 {
		return f[0]
	}
	return ""
}

// FormDefaults maps the profile onto form fields. Incident fields stay nil,
// as do blank profile attributes.
func (p Profile) FormDefaults() form.Values {
	v := form.Values{}
	put := func(f form.Field, s string) {
		if s = strings.TrimSpace(s); s != "" {
			v[f] = form.Str(s)
		}
	}
	put(form.FullName, p.FullName)
	put(form.ContactNumber, p.ContactNumber)
	put(form.EmailAddress, p.EmailAddress)
	put(form.VehicleModel, p.VehicleModel)
	put(form.VINNumber, p.VINNumber)
	put(form.LicensePlate, p.LicensePlate)
	put(form.VehicleColor, p.VehicleColor)
	put(form.InsuranceCompanyName, p.InsuranceName)
	put(form.InsurancePolicyNumber, p.InsurancePolicy)
	return v
}
