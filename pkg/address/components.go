package address

import (
	"ordernorm/pkg/locale"
	"ordernorm/pkg/value"
)

type Components struct {
	StreetName   string `json:"street_name"`
	StreetNumber string `json:"street_number"`
	Box          string `json:"box"`
	PostalCode   string `json:"postal_code"`
	City         string `json:"city"`
	Country      string `json:"country"`
	CountryCode  string `json:"country_code,omitempty"`
}

const (
	fieldStreetName   = "streetname"
	fieldStreetNumber = "streetnumber"
	fieldBox          = "box"
	fieldPostalZone   = "postalzone"
	fieldCity         = "city"
	fieldCountry      = "country"
)

// FieldName is the template placeholder for one address field, for example
// P_supplier_address_postalzone.
func FieldName(kind Kind, field string) string {
	return "P_" + string(kind) + "_address_" + field
}

// TemplateFields renders c under the kind-prefixed placeholder names.
func (c Components) TemplateFields(kind Kind) *value.Object {
	out := value.NewObject()
	out.Set(FieldName(kind, fieldStreetName), value.String(c.StreetName))
	out.Set(FieldName(kind, fieldStreetNumber), value.String(c.StreetNumber))
	out.Set(FieldName(kind, fieldBox), value.String(c.Box))
	out.Set(FieldName(kind, fieldPostalZone), value.String(c.PostalCode))
	out.Set(FieldName(kind, fieldCity), value.String(c.City))
	out.Set(FieldName(kind, fieldCountry), value.String(c.Country))
	return out
}

// Object renders c with its JSON field names, as used in billing payloads.
func (c Components) Object() *value.Object {
	out := value.NewObject()
	out.Set("street_name", value.String(c.StreetName))
	out.Set("street_number", value.String(c.StreetNumber))
	out.Set("box", value.String(c.Box))
	out.Set("postal_code", value.String(c.PostalCode))
	out.Set("city", value.String(c.City))
	out.Set("country", value.String(c.Country))
	if c.CountryCode != "" {
		out.Set("country_code", value.String(c.CountryCode))
	}
	return out
}

func (c *Components) resolveCountry() {
	if c.Country != "" {
		c.CountryCode = locale.CountryCode(c.Country)
	}
}
