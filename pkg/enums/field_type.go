package enums

import "fmt"

// FieldType maps to the checkout_field_type enum in Postgres.
type FieldType string

const (
	FieldTypeText          FieldType = "text"
	FieldTypeTextarea      FieldType = "textarea"
	FieldTypeCheckbox      FieldType = "checkbox"
	FieldTypeSelect        FieldType = "select"
	FieldTypeDate          FieldType = "date"
	FieldTypeTimeWindow    FieldType = "time_window"
	FieldTypeStoreLocation FieldType = "store_location"
)

var validFieldTypes = []FieldType{
	FieldTypeText,
	FieldTypeTextarea,
	FieldTypeCheckbox,
	FieldTypeSelect,
	FieldTypeDate,
	FieldTypeTimeWindow,
	FieldTypeStoreLocation,
}

// String implements fmt.Stringer.
func (f FieldType) String() string {
	return string(f)
}

// IsValid reports whether the value is a known FieldType.
func (f FieldType) IsValid() bool {
	for _, candidate := range validFieldTypes {
		if candidate == f {
			return true
		}
	}
	return false
}

// HasOptions reports whether the type is backed by an option list.
func (f FieldType) HasOptions() bool {
	return f == FieldTypeSelect || f == FieldTypeStoreLocation
}

// ParseFieldType converts raw strings into FieldType.
func ParseFieldType(value string) (FieldType, error) {
	for _, candidate := range validFieldTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid field type %q", value)
}
