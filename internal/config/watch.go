package config

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/hpungsan/pastedock/internal/logging"
)

// watchDebounce coalesces editor write bursts into one reload.
const watchDebounce = 100 * time.Millisecond

// Watch reloads baseDir/config.json whenever it changes and hands the result
// to onChange. It watches the directory since editors replace the file on save.
// Blocks until ctx is done. A file that fails to parse is logged and skipped.
func Watch(ctx context.Context, baseDir string, onChange func(*Config)) error {
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsw.Close()

	if err := fsw.Add(baseDir); err != nil {
		return err
	}

	logger := logging.L("config")
	target := filepath.Clean(Path(baseDir))
	reload := make(chan struct{}, 1)

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(watchDebounce, func() {
				select {
				case reload <- struct{}{}:
				default:
				}
			})

		case <-reload:
			cfg, err := Load(baseDir)
			if err != nil {
				logger.Warn().Err(err).Str("path", target).Msg("config reload failed, keeping previous settings")
				continue
			}
			logger.Info().Str("path", target).Msg("config reloaded")
			onChange(cfg)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn().Err(err).Msg("config watcher error")
		}
	}
}
