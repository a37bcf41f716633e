package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ruteri/snowflake-keypair-provisioner/interfaces"
)

// currentVersionFile holds the value of a secret inside its directory.
// Using a directory per secret lets "/a" and "/a/b" coexist as in hierarchical stores.
const currentVersionFile = "current"

// FileBackend implements a secret store on the local file system.
// It is intended for development and testing; secrets must be created out of band.
type FileBackend struct {
	baseDir     string
	log         *slog.Logger
	locationURI string
}

// NewFileBackend creates a new file secret store rooted at baseDir.
// The directory is created if it doesn't exist.
func NewFileBackend(baseDir string, log *slog.Logger) (*FileBackend, error) {
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	return &FileBackend{
		baseDir:     baseDir,
		log:         log,
		locationURI: fmt.Sprintf("file://%s", baseDir),
	}, nil
}

// Fetch reads the current value of a secret.
// Returns ErrSecretNotFound if the secret doesn't exist.
func (b *FileBackend) Fetch(ctx context.Context, name string) (string, error) {
	filePath, err := b.getFilePath(name)
	if err != nil {
		return "", err
	}

	data, err := os.ReadFile(filePath)
	if errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("%w: %s", interfaces.ErrSecretNotFound, name)
	} else if err != nil {
		return "", fmt.Errorf("%w: %v", interfaces.ErrBackendUnavailable, err)
	}

	b.log.Debug("Fetched secret from file",
		slog.String("path", filePath),
		slog.Int("size", len(data)))

	return string(data), nil
}

// Store replaces the value of an existing secret.
// The new value is written to a temporary file and renamed over the old one.
func (b *FileBackend) Store(ctx context.Context, name string, value string) error {
	filePath, err := b.getFilePath(name)
	if err != nil {
		return err
	}

	if _, err := os.Stat(filePath); errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %s", interfaces.ErrSecretNotFound, name)
	}

	tmp, err := os.CreateTemp(filepath.Dir(filePath), ".current-*")
	if err != nil {
		return fmt.Errorf("%w: %v", interfaces.ErrBackendUnavailable, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(value); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: %v", interfaces.ErrBackendUnavailable, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: %v", interfaces.ErrBackendUnavailable, err)
	}

	if err := os.Rename(tmp.Name(), filePath); err != nil {
		return fmt.Errorf("%w: %v", interfaces.ErrBackendUnavailable, err)
	}

	b.log.Debug("Stored secret in file",
		slog.String("path", filePath),
		slog.Int("size", len(value)))

	return nil
}

// Available checks if the file backend is accessible by verifying the base directory exists.
func (b *FileBackend) Available(ctx context.Context) bool {
	_, err := os.Stat(b.baseDir)
	if err != nil {
		b.log.Debug("File backend unavailable", "err", err)
		return false
	}
	return true
}

// Name returns a unique identifier for this secret store.
func (b *FileBackend) Name() string {
	return fmt.Sprintf("file-%s", filepath.Base(b.baseDir))
}

// LocationURI returns the URI that identifies this secret store.
func (b *FileBackend) LocationURI() string {
	return b.locationURI
}

// getFilePath maps a secret name to its value file, refusing names that escape baseDir.
func (b *FileBackend) getFilePath(name string) (string, error) {
	dir := filepath.Join(b.baseDir, filepath.FromSlash(name))
	if dir != b.baseDir && !strings.HasPrefix(dir, filepath.Clean(b.baseDir)+string(filepath.Separator)) {
		return "", fmt.Errorf("secret name %q escapes store directory", name)
	}
	return filepath.Join(dir, currentVersionFile), nil
}
