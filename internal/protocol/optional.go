package protocol

import (
	"encoding/json"
	"fmt"
)

// Optional holds a decoded field that may not have been reported.
type Optional[T any] struct {
	value T
	known bool
}

// Known wraps a reported value.
func Known[T any](v T) Optional[T] {
	return Optional[T]{value: v, known: true}
}

// Unknown returns an Optional with no value.
func Unknown[T any]() Optional[T] {
	return Optional[T]{}
}

// Get returns the value and whether it was reported.
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.known
}

// IsKnown reports whether the printer sent a value for this field.
func (o Optional[T]) IsKnown() bool {
	return o.known
}

// Or returns the value, or fallback when unknown.
func (o Optional[T]) Or(fallback T) T {
	if !o.known {
		return fallback
	}
	return o.value
}

// String renders the value, or "unknown".
func (o Optional[T]) String() string {
	if !o.known {
		return "unknown"
	}
	return fmt.Sprint(o.value)
}

// MarshalJSON renders unknown values as null.
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.known {
		return []byte("null"), nil
	}
	return json.Marshal(o.value)
}
