// Copyright 2025 Jetify Inc. and contributors. All rights reserved.
// Use of this source code is governed by the license in the LICENSE file.

package filewatch

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"

	"go.jetify.com/nps/internal/debug"
	"go.jetify.com/nps/internal/fileutil"
	"go.jetify.com/nps/internal/flow"
)

const changeOps = fsnotify.Create | fsnotify.Write | fsnotify.Remove | fsnotify.Rename

// Changes returns a flow that emits once as soon as the watch is in place and
// again every time path is created, written, removed or renamed. The parent
// directory is watched rather than the file itself, so path doesn't need to
// exist and atomic replacements are seen. The flow only ends when ctx is
// cancelled or the watcher fails.
func Changes(path string) flow.Flow[struct{}] {
	return func(ctx context.Context, emit func(struct{}) error) error {
		path := filepath.Clean(path)
		dir := filepath.Dir(path)
		if err := fileutil.EnsureDirExists(dir, 0o755); err != nil {
			return err
		}

		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return errors.WithStack(err)
		}
		defer watcher.Close()

		if err := watcher.Add(dir); err != nil {
			return errors.WithStack(err)
		}

		if err := emit(struct{}{}); err != nil {
			return err
		}
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case event, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				if filepath.Clean(event.Name) != path || event.Op&changeOps == 0 {
					continue
				}
				debug.Log("filewatch: %s", event)
				if err := emit(struct{}{}); err != nil {
					return err
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				return errors.WithStack(err)
			}
		}
	}
}
