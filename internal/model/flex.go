package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// FlexString accepts a JSON string, number, boolean or null and keeps its text.
// The upstream folio API is inconsistent about quoting numeric columns.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*f = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
	case len(data) > 0 && (data[0] == '{' || data[0] == '['):
		return fmt.Errorf("expected a string or number, got %s", data)
	default:
		*f = FlexString(data)
	}
	return nil
}
