package dbtypes

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// FieldValueMap stores submitted checkout field values as JSONB, keyed by
// field key.
type FieldValueMap map[string]string

// Value marshals the map into JSON for Postgres.
func (m FieldValueMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	buf, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return buf, nil
}

// Scan decodes JSONB into the map.
func (m *FieldValueMap) Scan(value interface{}) error {
	if value == nil {
		*m = nil
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("field values: unsupported scan type %T", value)
	}

	result := make(FieldValueMap)
	if err := json.Unmarshal(raw, &result); err != nil {
		return err
	}
	*m = result
	return nil
}
