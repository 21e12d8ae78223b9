package internal

import "encoding/json"

// Optional is a patch field that distinguishes three states: absent from the
// request body (Set=false), explicitly null (Set=true, Valid=false), and set
// to a value (Set=true, Valid=true). Plain pointers collapse the first two,
// which makes "leave unchanged" and "clear the field" indistinguishable.
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
	if err := json.Unmarshal(data, &o.Value); err != nil {
		return err
	}
	o.Valid = true
	return nil
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Set || !o.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// SomeOptional builds a present, non-null Optional. Mostly for tests and
// internal callers that bypass JSON decoding.
func SomeOptional[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Valid: true, Value: v}
}

// NullOptional builds a present-but-null Optional, i.e. "clear the field".
func NullOptional[T any]() Optional[T] {
	return Optional[T]{Set: true}
}
