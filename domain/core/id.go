package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to v4 if v7 fails
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// Domain-specific ID types
type (
	RunID       ID
	ModelID     ID
	CountryCode string
	FeatureKey  string
)

func (id RunID) String() string     { return ID(id).String() }
func (id ModelID) String() string   { return ID(id).String() }
func (c CountryCode) String() string { return string(c) }
func (k FeatureKey) String() string  { return string(k) }

// ParseCountryCode validates an ISO-3 country code
func ParseCountryCode(s string) (CountryCode, error) {
	s = strings.TrimSpace(s)
	if len(s) != 3 || s != strings.ToUpper(s) {
		return "", fmt.Errorf("country code must be 3 uppercase letters, got %q", s)
	}
	return CountryCode(s), nil
}
