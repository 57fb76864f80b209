package stopstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ovtracker-map/internal/common/logger"
	"github.com/ovtracker-map/pkg/ovtrips/models"
)

// FileStore keeps the store as a single JSON document.
type FileStore struct {
	path   string
	logger logger.Logger
}

func NewFileStore(path string, logger logger.Logger) *FileStore {
	return &FileStore{path: path, logger: logger}
}

func (f *FileStore) Path() string {
	return f.path
}

// Load reads the document. A missing file is an empty store so a first run
// can start from nothing.
func (f *FileStore) Load(ctx context.Context) (models.StopStore, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		f.logger.Info("No stop store yet, starting empty", "path", f.path)
		return models.NewStopStore(), nil
	}
	if err != nil {
		return models.StopStore{}, fmt.Errorf("reading stop store: %w", err)
	}

	var store models.StopStore
	if err := json.Unmarshal(data, &store); err != nil {
		return models.StopStore{}, fmt.Errorf("decoding stop store %s: %w", f.path, err)
	}
	store = normalize(store, f.logger)

	f.logger.Debug("Stop store loaded",
		"path", f.path,
		"stops", len(store.Stops),
		"unmatched", len(store.Unmatched))

	return store, nil
}

// Save writes to a temporary file in the same directory and renames it over
// the old document, so readers see either the previous or the new store.
func (f *FileStore) Save(ctx context.Context, store models.StopStore) error {
	store = normalize(store, f.logger)
	data, err := json.MarshalIndent(store, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding stop store: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating store directory: %w", err)
	}

	tempFile, err := os.CreateTemp(dir, ".stops_*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tempPath := tempFile.Name()
	defer os.Remove(tempPath) // no-op once renamed

	if _, err := tempFile.Write(data); err != nil {
		tempFile.Close()
		return fmt.Errorf("writing stop store: %w", err)
	}
	if err := tempFile.Sync(); err != nil {
		tempFile.Close()
		return fmt.Errorf("syncing stop store: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("closing stop store: %w", err)
	}

	if err := os.Rename(tempPath, f.path); err != nil {
		return fmt.Errorf("moving stop store into place: %w", err)
	}
	return nil
}
