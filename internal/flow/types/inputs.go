package types

import (
	"ordernorm/pkg/mapping"
	"ordernorm/pkg/value"
)

type AddressInput struct {
	Address string `json:"address" validate:"required"`
	Kind    string `json:"kind" validate:"required"`
	Mode    string `json:"mode,omitempty" validate:"omitempty,oneof=strict advanced simple"`
}

type MapInput struct {
	Record *value.Object      `json:"record" validate:"required"`
	Rules  []mapping.RuleSpec `json:"rules" validate:"required,min=1,dive"`
}

// DocumentInput is an order plus the two free-text addresses a billing
// document needs. Rules, when given, rename the order fields before
// cleaning.
type DocumentInput struct {
	Order           *value.Object      `json:"order" validate:"required"`
	CustomerAddress string             `json:"customer_address" validate:"required"`
	SupplierAddress string             `json:"supplier_address" validate:"required"`
	AddressMode     string             `json:"address_mode,omitempty" validate:"omitempty,oneof=strict advanced simple"`
	Rules           []mapping.RuleSpec `json:"rules,omitempty" validate:"omitempty,dive"`
}

// SubmitInput is a DocumentInput that is also posted to the billing API.
type SubmitInput struct {
	DocumentInput
	Transport  string `json:"transport,omitempty"`
	WaitForPDF bool   `json:"wait_for_pdf,omitempty"`
}

type TableRowsInput struct {
	Table        string         `json:"table" validate:"required"`
	Action       string         `json:"action" validate:"required,oneof=Add Edit Delete Find"`
	Rows         []value.Value  `json:"rows"`
	Selector     string         `json:"selector,omitempty"`
	UserSettings map[string]any `json:"user_settings,omitempty"`
}
