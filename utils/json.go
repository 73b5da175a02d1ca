package utils

import (
	"encoding/json"

	"gorm.io/datatypes"
)

// DecodeStringList reads a JSON array column, returning nil on anything that
// is not a string array.
func DecodeStringList(raw datatypes.JSON) []string {
	if len(raw) == 0 {
		return nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}

// MustJSON marshals v for a JSON column, degrading to an empty object.
func MustJSON(v any) datatypes.JSON {
	b, err := json.Marshal(v)
	if err != nil {
		return datatypes.JSON("{}")
	}
	return datatypes.JSON(b)
}
