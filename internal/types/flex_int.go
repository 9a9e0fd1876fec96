package types

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// FlexInt is an int that can be unmarshaled from either a JSON number or a
// JSON string. Form-filling clients tend to post numeric fields as strings.
type FlexInt int

// UnmarshalJSON implements the json.Unmarshaler interface.
func (f *FlexInt) UnmarshalJSON(data []byte) error {
	if len(data) == 0 {
		return nil
	}

	// Try unmarshaling as a number first
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*f = FlexInt(n)
		return nil
	}

	// Try unmarshaling as a string
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		val, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("FlexInt: invalid int string %q: %w", s, err)
		}
		*f = FlexInt(val)
		return nil
	}

	return fmt.Errorf("FlexInt: unexpected type, expected number or string")
}

// MarshalJSON implements the json.Marshaler interface.
func (f FlexInt) MarshalJSON() ([]byte, error) {
	return json.Marshal(int(f))
}

// Int converts FlexInt back to int.
func (f FlexInt) Int() int {
	return int(f)
}
