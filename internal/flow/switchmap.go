// Copyright 2025 Jetify Inc. and contributors. All rights reserved.
// Use of this source code is governed by the license in the LICENSE file.

package flow

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// SwitchMap maps every value of f to an inner flow and emits the values of
// the most recent inner flow only.
//
// When f emits, the running inner flow is cancelled and SwitchMap waits for it
// to return before subscribing to the next one. Once a newer value has been
// received, nothing from an older inner flow reaches emit. The result
// completes when f and the last inner flow have both completed. The first
// error from f, any inner flow, or emit cancels everything and is returned;
// an inner flow that stops because it was superseded is not an error.
//
// emit is never called concurrently.
func SwitchMap[T, R any](f Flow[T], fn func(T) Flow[R]) Flow[R] {
	return func(ctx context.Context, emit func(R) error) error {
		g, ctx := errgroup.WithContext(ctx)

		var (
			mu         sync.Mutex
			generation uint64
			stopInner  context.CancelFunc = func() {}
		)
		// Only touched by the outer goroutine.
		var innerDone chan struct{}

		g.Go(func() error {
			return f(ctx, func(v T) error {
				mu.Lock()
				generation++
				gen := generation
				stopInner()
				mu.Unlock()

				if innerDone != nil {
					select {
					case <-innerDone:
					case <-ctx.Done():
						return ctx.Err()
					}
				}

				innerCtx, cancel := context.WithCancel(ctx)
				done := make(chan struct{})
				mu.Lock()
				stopInner = cancel
				mu.Unlock()
				innerDone = done

				inner := fn(v)
				g.Go(func() error {
					defer close(done)
					defer cancel()
					err := inner(innerCtx, func(r R) error {
						mu.Lock()
						defer mu.Unlock()
						if gen != generation {
							return context.Canceled
						}
						return emit(r)
					})
					if err != nil && innerCtx.Err() != nil && ctx.Err() == nil {
						// Superseded by a newer value of f.
						return nil
					}
					return err
				})
				return nil
			})
		})

		return g.Wait()
	}
}
