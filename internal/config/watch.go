package config

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// Watch calls onChange with freshly loaded settings each time the file at
// path is written, created or renamed into place. It watches the parent
// directory so editors that replace the file are seen too. Watch blocks until
// ctx is done.
func Watch(ctx context.Context, path string, onChange func(*Settings)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating settings watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(path), err)
	}

	target := filepath.Clean(path)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			s, _, err := LoadFrom(path)
			if err != nil {
				log.Warn().Err(err).Str("path", path).Msg("ignoring unreadable settings")
				continue
			}
			if err := s.Validate(); err != nil {
				log.Warn().Err(err).Str("path", path).Msg("ignoring invalid settings")
				continue
			}
			log.Info().Str("path", path).Msg("settings reloaded")
			onChange(s)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Error().Err(err).Msg("settings watcher")
		}
	}
}
