package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/pelletier/go-toml/v2"
)

// ErrLocked is returned when another editor holds the sidecar lock.
var ErrLocked = errors.New("card file is locked by another editor")

// Project is the on-disk sidecar for one media file.
type Project struct {
	Media   string    `toml:"media"`
	Card    Card      `toml:"card"`
	Start   float64   `toml:"start"`
	End     float64   `toml:"end"`
	SavedAt time.Time `toml:"saved_at"`
}

func sidecarPath(mediaPath string) string {
	return mediaPath + ".card.toml"
}

// SaveProject writes the card and window next to the media file.
func SaveProject(mediaPath string, card Card, w MediaWindow) (string, error) {
	path := sidecarPath(mediaPath)
	lock := flock.New(path + ".lock")
	ok, err := lock.TryLock()
	if err != nil {
		return "", fmt.Errorf("failed to lock card file: %w", err)
	}
	if !ok {
		return "", ErrLocked
	}
	// The lock file stays on disk; removing it would let a second writer
	// lock a fresh inode while the first still holds the old one.
	defer func() { _ = lock.Unlock() }()

	project := Project{
		Media:   filepath.Base(mediaPath),
		Card:    card,
		Start:   w.Start,
		End:     w.End,
		SavedAt: time.Now().UTC().Truncate(time.Second),
	}
	data, err := toml.Marshal(project)
	if err != nil {
		return "", fmt.Errorf("failed to encode card file: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write card file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("failed to write card file: %w", err)
	}
	return path, nil
}

// LoadProject reads the sidecar for mediaPath. The bool is false when no
// sidecar exists.
func LoadProject(mediaPath string) (Project, bool, error) {
	data, err := os.ReadFile(sidecarPath(mediaPath))
	if errors.Is(err, fs.ErrNotExist) {
		return Project{}, false, nil
	}
	if err != nil {
		return Project{}, false, fmt.Errorf("failed to read card file: %w", err)
	}
	var project Project
	if err := toml.Unmarshal(data, &project); err != nil {
		return Project{}, false, fmt.Errorf("failed to parse card file: %w", err)
	}
	project.Card = project.Card.Normalize()
	return project, true, nil
}
