package events

import (
	"bytes"
	"encoding/json"
)

// Field is a value a client may omit, send as null, or send. Set is false
// when the key was absent; a set field with a nil Value was sent as null.
type Field[T any] struct {
	Set   bool
	Value *T
}

func Some[T any](v T) Field[T] {
	return Field[T]{Set: true, Value: &v}
}

func Null[T any]() Field[T] {
	return Field[T]{Set: true}
}

// UnmarshalJSON only runs for keys present in the document, which is what
// separates an explicit null from an absent key.
func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		f.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	f.Value = &v
	return nil
}
