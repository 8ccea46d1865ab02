package enums

import "fmt"

// VisibilityPolarity decides whether a cart match shows or hides a field.
type VisibilityPolarity string

const (
	VisibilityPolarityShowOnMatch VisibilityPolarity = "show_on_match"
	VisibilityPolarityHideOnMatch VisibilityPolarity = "hide_on_match"
)

var validVisibilityPolarities = []VisibilityPolarity{
	VisibilityPolarityShowOnMatch,
	VisibilityPolarityHideOnMatch,
}

// String implements fmt.Stringer.
func (v VisibilityPolarity) String() string {
	return string(v)
}

// IsValid reports whether the value is a known VisibilityPolarity.
func (v VisibilityPolarity) IsValid() bool {
	for _, candidate := range validVisibilityPolarities {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParseVisibilityPolarity converts raw strings into VisibilityPolarity.
func ParseVisibilityPolarity(value string) (VisibilityPolarity, error) {
	for _, candidate := range validVisibilityPolarities {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid visibility polarity %q", value)
}
