package checkout

import (
	"fmt"
	"strings"

	pkgerrors "github.com/dispatchday/dispatchday-backend/pkg/errors"
)

// FieldRule is the subset of a checkout field definition needed to validate
// one submitted value.
type FieldRule struct {
	Key      string
	Label    string
	Required bool
	Options  []string
}

// FieldViolation exposes the data returned to callers when validation fails.
type FieldViolation struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidateFieldValues checks submitted values against the visible field rules.
// Values for unknown keys are rejected; hidden fields must be filtered out by
// the caller before validation.
func ValidateFieldValues(rules []FieldRule, values map[string]string) []FieldViolation {
	var violations []FieldViolation
	known := make(map[string]FieldRule, len(rules))
	for _, rule := range rules {
		known[rule.Key] = rule
	}

	for key := range values {
		if _, ok := known[key]; !ok {
			violations = append(violations, FieldViolation{Field: key, Reason: "unknown field"})
		}
	}

	for _, rule := range rules {
		value := strings.TrimSpace(values[rule.Key])
		if value == "" {
			if rule.Required {
				violations = append(violations, FieldViolation{Field: rule.Key, Reason: "is required"})
			}
			continue
		}
		if len(rule.Options) > 0 && !containsOption(rule.Options, value) {
			violations = append(violations, FieldViolation{Field: rule.Key, Reason: "is not an allowed option"})
		}
	}
	return violations
}

// ViolationError wraps violations into a structured validation error.
func ViolationError(violations []FieldViolation) error {
	if len(violations) == 0 {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("submission failed validation for %d field(s)", len(violations))).WithDetails(map[string]any{
		"violations": violations,
	})
}

func containsOption(options []string, value string) bool {
	for _, option := range options {
		if strings.TrimSpace(option) == value {
			return true
		}
	}
	return false
}
