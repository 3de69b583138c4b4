package model

import (
	"bytes"
	"encoding/json"
)

// Field is an optional value in a partial update. It distinguishes a key that
// was never sent (Set == false) from one explicitly sent as null (Null == true)
// and from one carrying a value.
type Field[T any] struct {
	Set   bool
	Null  bool
	Value T
}

// Some returns a Field holding v.
func Some[T any](v T) Field[T] {
	return Field[T]{Set: true, Value: v}
}

// Null returns a Field that explicitly clears its target.
func Null[T any]() Field[T] {
	return Field[T]{Set: true, Null: true}
}

// HasValue reports whether the field was sent with a non-null value.
func (f Field[T]) HasValue() bool {
	return f.Set && !f.Null
}

// UnmarshalJSON is only invoked for keys present in the document, which is
// what makes the absent case observable.
func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		f.Null = true
		var zero T
		f.Value = zero
		return nil
	}
	f.Null = false
	return json.Unmarshal(data, &f.Value)
}

func (f Field[T]) MarshalJSON() ([]byte, error) {
	if !f.Set || f.Null {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

// apply writes the field onto dst when it was sent. Null resets dst to the
// zero value.
func (f Field[T]) apply(dst *T) {
	if !f.Set {
		return
	}
	if f.Null {
		var zero T
		*dst = zero
		return
	}
	*dst = f.Value
}

// applyPtr is apply for nullable destinations: null stores nil.
func (f Field[T]) applyPtr(dst **T) {
	if !f.Set {
		return
	}
	if f.Null {
		*dst = nil
		return
	}
	v := f.Value
	*dst = &v
}
