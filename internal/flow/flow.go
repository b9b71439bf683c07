// Copyright 2025 Jetify Inc. and contributors. All rights reserved.
// Use of this source code is governed by the license in the LICENSE file.

// Package flow implements cold, lazily started sequences of values.
//
// A Flow does nothing until it is called. Calling it runs the producer, which
// passes each value to emit in order and returns when the sequence completes
// (nil), fails (the error), or ctx is cancelled (ctx.Err()). If emit returns
// an error the producer stops and returns that error.
//
// Every call is an independent subscription: producers must not share state
// between calls unless that is the point (a file being watched, say).
package flow

import (
	"context"
)

type Flow[T any] func(ctx context.Context, emit func(T) error) error

// Of returns a flow that emits values in order and completes.
func Of[T any](values ...T) Flow[T] {
	return func(ctx context.Context, emit func(T) error) error {
		for _, v := range values {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := emit(v); err != nil {
				return err
			}
		}
		return nil
	}
}

// Empty returns a flow that completes without emitting.
func Empty[T any]() Flow[T] {
	return func(ctx context.Context, _ func(T) error) error {
		return ctx.Err()
	}
}

// Fail returns a flow that fails with err without emitting.
func Fail[T any](err error) Flow[T] {
	return func(context.Context, func(T) error) error {
		return err
	}
}

// Defer calls build on every subscription and runs the flow it returns.
func Defer[T any](build func() Flow[T]) Flow[T] {
	return func(ctx context.Context, emit func(T) error) error {
		return build()(ctx, emit)
	}
}

func Map[T, R any](f Flow[T], fn func(T) R) Flow[R] {
	return func(ctx context.Context, emit func(R) error) error {
		return f(ctx, func(v T) error {
			return emit(fn(v))
		})
	}
}

// MapErr is Map for fallible transformations. An error from fn terminates the
// flow.
func MapErr[T, R any](f Flow[T], fn func(T) (R, error)) Flow[R] {
	return func(ctx context.Context, emit func(R) error) error {
		return f(ctx, func(v T) error {
			r, err := fn(v)
			if err != nil {
				return err
			}
			return emit(r)
		})
	}
}

// Distinct drops values equal to the one emitted just before them.
func Distinct[T comparable](f Flow[T]) Flow[T] {
	return func(ctx context.Context, emit func(T) error) error {
		var last T
		first := true
		return f(ctx, func(v T) error {
			if !first && v == last {
				return nil
			}
			first = false
			last = v
			return emit(v)
		})
	}
}

// Collect runs f to completion and returns everything it emitted.
func Collect[T any](ctx context.Context, f Flow[T]) ([]T, error) {
	var out []T
	err := f(ctx, func(v T) error {
		out = append(out, v)
		return nil
	})
	return out, err
}
