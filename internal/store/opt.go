package store

import (
	"bytes"
	"encoding/json"
)

// Opt is a patch field. A zero Opt is absent and leaves the column alone;
// Set marks it present, and Null additionally asks for the column to be
// cleared.
type Opt[T any] struct {
	Value T
	Set   bool
	Null  bool
}

// Some returns a present Opt holding v.
func Some[T any](v T) Opt[T] {
	return Opt[T]{Value: v, Set: true}
}

// Clear returns a present Opt that empties the column.
func Clear[T any]() Opt[T] {
	return Opt[T]{Set: true, Null: true}
}

// UnmarshalJSON is only invoked for keys present in the document, which
// is what lets a missing key stay absent while an explicit null clears.
func (o *Opt[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Null = true
		var zero T
		o.Value = zero
		return nil
	}
	o.Null = false
	return json.Unmarshal(data, &o.Value)
}

// MarshalJSON writes null for absent and cleared values.
func (o Opt[T]) MarshalJSON() ([]byte, error) {
	if !o.Set || o.Null {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// sqlValue returns the value to bind for a present Opt.
func (o Opt[T]) sqlValue() any {
	if o.Null {
		return nil
	}
	return o.Value
}
