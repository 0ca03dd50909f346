package types

import "strings"

// ShippingAddress is the postal part of a shipping snapshot.
type ShippingAddress struct {
	Line1      string `json:"line1" validate:"required,max=200"`
	Line2      string `json:"line2,omitempty" validate:"max=200"`
	City       string `json:"city" validate:"required,max=100"`
	State      string `json:"state,omitempty" validate:"max=100"`
	PostalCode string `json:"postal_code" validate:"required,max=20"`
	Country    string `json:"country" validate:"required,max=60"`
}

// ShippingInfo is the recipient snapshot copied onto an order at placement.
type ShippingInfo struct {
	FullName string          `json:"full_name" validate:"required,max=120"`
	Email    string          `json:"email" validate:"required,email"`
	Phone    string          `json:"phone" validate:"required,min=7,max=20"`
	Address  ShippingAddress `json:"address" validate:"required"`
}

// Normalize trims whitespace and lowercases the email.
func (s ShippingInfo) Normalize() ShippingInfo {
	s.FullName = strings.TrimSpace(s.FullName)
	s.Email = strings.ToLower(strings.TrimSpace(s.Email))
	s.Phone = strings.TrimSpace(s.Phone)
	s.Address.Line1 = strings.TrimSpace(s.Address.Line1)
	s.Address.Line2 = strings.TrimSpace(s.Address.Line2)
	s.Address.City = strings.TrimSpace(s.Address.City)
	s.Address.State = strings.TrimSpace(s.Address.State)
	s.Address.PostalCode = strings.TrimSpace(s.Address.PostalCode)
	s.Address.Country = strings.TrimSpace(s.Address.Country)
	return s
}

// MissingFields lists the required fields that are blank.
func (s ShippingInfo) MissingFields() []string {
	var missing []string
	check := func(name, value string) {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}
	check("full_name", s.FullName)
	check("email", s.Email)
	check("phone", s.Phone)
	check("address.line1", s.Address.Line1)
	check("address.city", s.Address.City)
	check("address.postal_code", s.Address.PostalCode)
	check("address.country", s.Address.Country)
	return missing
}
