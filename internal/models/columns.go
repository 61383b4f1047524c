package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/famnudger/fam/backend/internal/types"
)

// JSONBStringArray is a custom type for handling string arrays in JSONB
type JSONBStringArray []string

// Value implements the driver.Valuer interface
func (a JSONBStringArray) Value() (driver.Value, error) {
	if len(a) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface
func (a *JSONBStringArray) Scan(value interface{}) error {
	data, err := columnBytes(value)
	if err != nil || data == nil {
		*a = JSONBStringArray{}
		return err
	}
	return json.Unmarshal(data, a)
}

// ConditionSet stores health conditions as a JSON array of their wire
// ordinals. Ordinals this build does not recognise are dropped on read.
type ConditionSet types.HealthConditions

// Value implements the driver.Valuer interface
func (c ConditionSet) Value() (driver.Value, error) {
	if len(c) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(types.HealthConditions(c))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface
func (c *ConditionSet) Scan(value interface{}) error {
	data, err := columnBytes(value)
	if err != nil || data == nil {
		*c = ConditionSet{}
		return err
	}
	var hc types.HealthConditions
	if err := json.Unmarshal(data, &hc); err != nil {
		return err
	}
	*c = ConditionSet(hc)
	return nil
}

func columnBytes(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("unsupported column type %T", value)
	}
}
