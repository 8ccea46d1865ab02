package enums

import "fmt"

// VisibilityMode selects which cart attribute a visibility rule inspects.
type VisibilityMode string

const (
	VisibilityModeAlways       VisibilityMode = "always"
	VisibilityModeByProducts   VisibilityMode = "by_products"
	VisibilityModeByCategories VisibilityMode = "by_categories"
)

var validVisibilityModes = []VisibilityMode{
	VisibilityModeAlways,
	VisibilityModeByProducts,
	VisibilityModeByCategories,
}

// String implements fmt.Stringer.
func (v VisibilityMode) String() string {
	return string(v)
}

// IsValid reports whether the value is a known VisibilityMode.
func (v VisibilityMode) IsValid() bool {
	for _, candidate := range validVisibilityModes {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParseVisibilityMode converts raw strings into VisibilityMode.
func ParseVisibilityMode(value string) (VisibilityMode, error) {
	for _, candidate := range validVisibilityModes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid visibility mode %q", value)
}
