package domain

import "encoding/json"

// Optional is a JSON field that distinguishes "absent" from "null" from
// "set to a value". Partial-update requests need all three states: an
// absent field is left alone, an explicit null clears a nullable column.
type Optional[T any] struct {
	Set   bool
	Valid bool
	Value T
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Valid = false
		return nil
	}
	o.Valid = true
	return json.Unmarshal(data, &o.Value)
}
