package main

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const _watchSettle = 100 * time.Millisecond

// watchFile calls fn each time name is written or replaced, until ctx is
// done. Bursts of events within _watchSettle of each other count once.
func watchFile(ctx context.Context, name string, logger *zap.Logger, fn func() error) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// Editors often replace files instead of writing them, which drops a
	// watch on the file itself.
	if err := watcher.Add(filepath.Dir(name)); err != nil {
		return err
	}
	target := filepath.Clean(name)

	logger.Info("watching", zap.String("file", name))

	var settle <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target || ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			settle = time.After(_watchSettle)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", zap.Error(err))
		case <-settle:
			settle = nil
			logger.Debug("file changed", zap.String("file", name))
			if err := fn(); err != nil {
				logger.Warn("solve failed", zap.String("file", name), zap.Error(err))
			}
		}
	}
}
