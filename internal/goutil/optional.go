// Copyright 2025 Jetify Inc. and contributors. All rights reserved.
// Use of this source code is governed by the license in the LICENSE file.

package goutil

import (
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
)

var ErrNotPresent = errors.New("optional value is not present")

// Optional represents a value that may or may not be present. An Optional of
// a comparable type is itself comparable.
type Optional[T any] struct {
	value T
	isSet bool
}

// NewOptional creates a new Optional with the given value.
func NewOptional[T any](value T) Optional[T] {
	return Optional[T]{
		value: value,
		isSet: true,
	}
}

// Empty returns an empty Optional.
func Empty[T any]() Optional[T] {
	return Optional[T]{}
}

func (o Optional[T]) IsPresent() bool {
	return o.isSet
}

// Get returns the value, or ErrNotPresent if there is none.
func (o Optional[T]) Get() (T, error) {
	if !o.isSet {
		var zero T
		return zero, ErrNotPresent
	}
	return o.value, nil
}

func (o Optional[T]) OrElse(defaultValue T) T {
	if o.isSet {
		return o.value
	}
	return defaultValue
}

func (o Optional[T]) String() string {
	if !o.isSet {
		return "Optional.Empty"
	}
	return fmt.Sprintf("Optional[%v]", o.value)
}

// MarshalJSON encodes an empty Optional as null.
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.isSet {
		return []byte("null"), nil
	}
	return json.Marshal(o.value)
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*o = Empty[T]()
		return nil
	}

	var value T
	if err := json.Unmarshal(data, &value); err != nil {
		return fmt.Errorf("cannot unmarshal %s into Optional[T]", string(data))
	}
	*o = NewOptional(value)
	return nil
}
