package models

import (
	"encoding/json"
)

// OptionalString distinguishes an absent field from an explicit null in
// update bodies. Absent leaves the stored value alone; null clears it.
type OptionalString struct {
	Present bool
	Value   *string
}

// UnmarshalJSON only runs for keys present in the body.
func (o *OptionalString) UnmarshalJSON(data []byte) error {
	var v *string
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Present, o.Value = true, v
	return nil
}

// Apply returns current when the field was absent, else the sent value.
func (o OptionalString) Apply(current *string) *string {
	if o.Present {
		return o.Value
	}
	return current
}
