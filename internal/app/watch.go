package app

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/hotardaw/hyperliquid-perps-automation/internal/logger"
)

// watchLogLevel reapplies app.log_level when the config file changes on
// disk. Only the log level is hot; everything else requires a restart.
func watchLogLevel(ctx context.Context, path string) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Warnf("config watch unavailable: %v", err)
		return
	}
	defer watcher.Close()

	// watch the directory: editors replace the file, which loses an
	// inode-level watch
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		logger.Warnf("config watch failed for %s: %v", path, err)
		return
	}
	target := filepath.Clean(path)

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			applyLogLevel(path)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Warnf("config watch error: %v", err)
		}
	}
}

func applyLogLevel(path string) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		logger.Warnf("config reload skipped, file unreadable: %v", err)
		return
	}
	level := strings.TrimSpace(v.GetString("app.log_level"))
	if level == "" {
		return
	}
	logger.SetLevel(level)
	logger.Infof("log level set to %s", level)
}
