package sng

import (
	"encoding/json"

	"golang.org/x/exp/constraints"
)

// Opt is an integer field that may be absent. The chart format encodes an
// absent value as the all-ones pattern of the field width (-1 for signed
// fields, the maximum for unsigned ones); Raw produces that encoding.
type Opt[T constraints.Integer] struct {
	value T
	ok    bool
}

// Some wraps a present value.
func Some[T constraints.Integer](v T) Opt[T] {
	return Opt[T]{value: v, ok: true}
}

// None returns an absent value.
func None[T constraints.Integer]() Opt[T] {
	return Opt[T]{}
}

// Get returns the value and whether it is present.
func (o Opt[T]) Get() (T, bool) {
	return o.value, o.ok
}

// Valid reports whether the value is present.
func (o Opt[T]) Valid() bool {
	return o.ok
}

// Raw returns the on-disk encoding.
func (o Opt[T]) Raw() T {
	if !o.ok {
		var zero T
		return ^zero
	}
	return o.value
}

// MarshalJSON encodes the raw value.
func (o Opt[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.Raw())
}

// MarshalYAML encodes the raw value.
func (o Opt[T]) MarshalYAML() (any, error) {
	return o.Raw(), nil
}

// optUint8 maps the document's -1 convention onto an unsigned field.
func optUint8(v int8) Opt[uint8] {
	if v < 0 {
		return None[uint8]()
	}
	return Some(uint8(v))
}
