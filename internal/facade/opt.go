package facade

import "encoding/json"

// Opt is a patch field that is either absent or carries a value, so "set to
// the zero value" and "leave alone" stay distinguishable.
type Opt[T any] struct {
	Value T
	Set   bool
}

// Some returns a present option holding v.
func Some[T any](v T) Opt[T] { return Opt[T]{Value: v, Set: true} }

// Get returns the value and whether it was provided.
func (o Opt[T]) Get() (T, bool) { return o.Value, o.Set }

// UnmarshalJSON marks the option present whenever the key appears, including
// an explicit null.
func (o *Opt[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		var zero T
		o.Value = zero
		return nil
	}
	return json.Unmarshal(data, &o.Value)
}
