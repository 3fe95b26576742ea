// Package store persists mosque settings documents. Documents are stored as
// the raw JSON the admin saved; defaults are merged in on load so stored
// documents stay small and survive new settings being added.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"

	"github.com/smokyabdulrahman/masjid-display/internal/config"
)

// DefaultID names the mosque a single-screen install uses.
const DefaultID = "default"

var (
	// ErrNotFound is returned when no document is stored for a mosque.
	ErrNotFound = errors.New("settings not found")
	// ErrInvalidID is returned for mosque ids that are not url and file safe.
	ErrInvalidID = errors.New("invalid mosque id")
)

var idPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// ValidateID checks that id can be used as a key, topic segment and file name.
func ValidateID(id string) error {
	if !idPattern.MatchString(id) {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}

// Store reads and writes settings documents by mosque id.
type Store interface {
	Get(ctx context.Context, id string) ([]byte, error)
	Save(ctx context.Context, id string, doc []byte) error
}

// Load returns the settings for id merged over the defaults, with unknown
// method or madhab values replaced by their defaults. found is false when
// nothing is stored yet.
func Load(ctx context.Context, s Store, id string) (*config.Settings, bool, error) {
	if err := ValidateID(id); err != nil {
		return nil, false, err
	}

	doc, err := s.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		d := config.Defaults()
		return &d, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("loading settings for %s: %w", id, err)
	}

	settings, err := config.Decode(doc)
	if err != nil {
		return nil, true, fmt.Errorf("decoding settings for %s: %w", id, err)
	}
	settings.Normalize()
	return &settings, true, nil
}

// Save validates settings and stores them for id.
func Save(ctx context.Context, s Store, id string, settings *config.Settings) error {
	if err := ValidateID(id); err != nil {
		return err
	}
	if err := settings.Validate(); err != nil {
		return err
	}

	doc, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}
	if err := s.Save(ctx, id, doc); err != nil {
		return fmt.Errorf("saving settings for %s: %w", id, err)
	}
	return nil
}
