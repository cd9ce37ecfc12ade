package store

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
)

// File stores snapshots as an indented JSON map on disk.
type File struct {
	path   string
	logger *slog.Logger
}

// NewFile creates a file-backed snapshot store, creating parent directories
// as needed.
func NewFile(path string, logger *slog.Logger) (*File, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, err
		}
	}
	return &File{path: path, logger: logger}, nil
}

// Load reads the snapshot file. A missing or empty file is an empty
// snapshot, not an error.
func (f *File) Load(_ context.Context) (map[string]float64, error) {
	raw, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]float64{}, nil
		}
		return nil, err
	}
	if len(raw) == 0 {
		return map[string]float64{}, nil
	}
	var out map[string]float64
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Save writes the snapshot, replacing any previous contents. The write goes
// through a temp file and rename so a crash mid-write never leaves a
// half-written snapshot behind.
func (f *File) Save(_ context.Context, prices map[string]float64) error {
	raw, err := json.MarshalIndent(prices, "", "  ")
	if err != nil {
		return err
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return err
	}
	if err := os.Rename(tmp, f.path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

// Close is a no-op for the file store.
func (f *File) Close() {}
