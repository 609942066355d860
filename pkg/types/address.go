package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// ShippingAddress is the delivery address captured at checkout.
// It is persisted as a JSON document on the order row.
type ShippingAddress struct {
	FullName string `json:"full_name" validate:"required,personname"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"required,phone"`
	Address  string `json:"address" validate:"required,min=5"`
	City     string `json:"city" validate:"required"`
	State    string `json:"state" validate:"required"`
	Pincode  string `json:"pincode" validate:"required,pincode"`
	Country  string `json:"country,omitempty"`
}

// Normalize trims every field and defaults the country.
func (a ShippingAddress) Normalize() ShippingAddress {
	out := ShippingAddress{
		FullName: strings.TrimSpace(a.FullName),
		Email:    strings.ToLower(strings.TrimSpace(a.Email)),
		Phone:    strings.TrimSpace(a.Phone),
		Address:  strings.TrimSpace(a.Address),
		City:     strings.TrimSpace(a.City),
		State:    strings.TrimSpace(a.State),
		Pincode:  strings.TrimSpace(a.Pincode),
		Country:  strings.TrimSpace(a.Country),
	}
	if out.Country == "" {
		out.Country = "IN"
	}
	return out
}

// Value marshals the address into JSON for storage.
func (a ShippingAddress) Value() (driver.Value, error) {
	if strings.TrimSpace(a.Address) == "" {
		return nil, fmt.Errorf("shipping address: missing address")
	}
	raw, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("shipping address: %w", err)
	}
	return string(raw), nil
}

// Scan decodes a stored JSON address.
func (a *ShippingAddress) Scan(value interface{}) error {
	if value == nil {
		*a = ShippingAddress{}
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("shipping address: unsupported scan type %T", value)
	}
	if err := json.Unmarshal(raw, a); err != nil {
		return fmt.Errorf("shipping address: %w", err)
	}
	return nil
}
