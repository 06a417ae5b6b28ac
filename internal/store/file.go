package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"wondesk/internal/game"
)

// FileStore keeps the snapshot as a JSON file, used when no database is
// configured.
type FileStore struct {
	path string
}

func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		dir := filepath.Join(home, ".wdk")
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, err
		}
		path = filepath.Join(dir, SnapshotName+".json")
	} else if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	return &FileStore{path: path}, nil
}

func (s *FileStore) Load(_ context.Context) (game.Snapshot, bool, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return game.Snapshot{}, false, nil
		}
		return game.Snapshot{}, false, err
	}
	if len(raw) == 0 {
		return game.Snapshot{}, false, nil
	}
	var snap game.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return game.Snapshot{}, false, err
	}
	return snap, true, nil
}

func (s *FileStore) Save(_ context.Context, snap game.Snapshot) error {
	raw, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, raw, 0o600)
}

func (s *FileStore) Close() {}
