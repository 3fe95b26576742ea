package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// FileStore keeps one JSON file per mosque under Dir. The default mosque
// uses the same settings.json the CLI edits.
type FileStore struct {
	Dir string
}

// Path returns the file backing id.
func (f FileStore) Path(id string) string {
	if id == DefaultID {
		return filepath.Join(f.Dir, "settings.json")
	}
	return filepath.Join(f.Dir, "mosques", id+".json")
}

// Get implements Store.
func (f FileStore) Get(_ context.Context, id string) ([]byte, error) {
	if err := ValidateID(id); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.Path(id))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading settings file: %w", err)
	}
	return data, nil
}

// Save implements Store.
func (f FileStore) Save(_ context.Context, id string, doc []byte) error {
	if err := ValidateID(id); err != nil {
		return err
	}
	path := f.Path(id)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("cannot create settings directory: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, doc, 0o644); err != nil {
		return fmt.Errorf("writing settings file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("writing settings file: %w", err)
	}
	return nil
}
