package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// ShippingAddress is the delivery destination captured at checkout time. All
// fields are required.
type ShippingAddress struct {
	FirstName  string `json:"first_name" validate:"required"`
	LastName   string `json:"last_name" validate:"required"`
	Address    string `json:"address" validate:"required"`
	City       string `json:"city" validate:"required"`
	PostalCode string `json:"postal_code" validate:"required"`
	Country    string `json:"country" validate:"required"`
	Phone      string `json:"phone" validate:"required"`
}

// Validate reports the first missing field by name.
func (s ShippingAddress) Validate() error {
	fields := []struct {
		name  string
		value string
	}{
		{"first_name", s.FirstName},
		{"last_name", s.LastName},
		{"address", s.Address},
		{"city", s.City},
		{"postal_code", s.PostalCode},
		{"country", s.Country},
		{"phone", s.Phone},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return fmt.Errorf("shipping address: missing %s", f.name)
		}
	}
	return nil
}

// Value stores the address as JSON.
func (s ShippingAddress) Value() (driver.Value, error) {
	encoded, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(encoded), nil
}

// Scan restores the address from its stored JSON form.
func (s *ShippingAddress) Scan(value interface{}) error {
	if value == nil {
		*s = ShippingAddress{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	}
	return fmt.Errorf("shipping address: unsupported scan type %T", value)
}
