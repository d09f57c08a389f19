package valueobject

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Address is a postal address used for shipping and invoicing
type Address struct {
	FullName   string `json:"full_name"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"` // ISO 3166-1 alpha-2
	Phone      string `json:"phone,omitempty"`
}

// NewAddress trims and validates an address
func NewAddress(fullName, line1, line2, city, postalCode, country, phone string) (Address, error) {
	a := Address{
		FullName:   strings.TrimSpace(fullName),
		Line1:      strings.TrimSpace(line1),
		Line2:      strings.TrimSpace(line2),
		City:       strings.TrimSpace(city),
		PostalCode: strings.ToUpper(strings.TrimSpace(postalCode)),
		Country:    strings.ToUpper(strings.TrimSpace(country)),
		Phone:      strings.TrimSpace(phone),
	}
	if err := a.Validate(); err != nil {
		return Address{}, err
	}
	return a, nil
}

// Validate checks required fields and lengths
func (a Address) Validate() error {
	required := map[string]string{
		"full name":   a.FullName,
		"line1":       a.Line1,
		"city":        a.City,
		"postal code": a.PostalCode,
	}
	for field, v := range required {
		if v == "" {
			return fmt.Errorf("address %s is required", field)
		}
		if utf8.RuneCountInString(v) > 200 {
			return fmt.Errorf("address %s cannot exceed 200 characters", field)
		}
	}
	if !IsCountryCode(a.Country) {
		return fmt.Errorf("invalid country code %q", a.Country)
	}
	return nil
}

// IsZero reports whether the address is empty
func (a Address) IsZero() bool {
	return a == Address{}
}

// Anonymize returns the address with personal data removed. Country is kept
// for tax reporting.
func (a Address) Anonymize() Address {
	return Address{
		FullName:   "Deleted user",
		Line1:      "-",
		City:       "-",
		PostalCode: "-",
		Country:    a.Country,
	}
}

// String formats the address on one line
func (a Address) String() string {
	parts := []string{a.FullName, a.Line1}
	if a.Line2 != "" {
		parts = append(parts, a.Line2)
	}
	parts = append(parts, a.PostalCode+" "+a.City, a.Country)
	return strings.Join(parts, ", ")
}

// IsCountryCode checks the ISO 3166-1 alpha-2 shape
func IsCountryCode(code string) bool {
	if len(code) != 2 {
		return false
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}
