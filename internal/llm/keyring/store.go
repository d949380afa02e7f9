package keyring

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// State is the persisted portion of the key rotation bookkeeping. Session
// failures are deliberately not stored; only daily quota exhaustion
// survives restarts.
type State struct {
	// QuotaExhaustedKeys maps a key slot (env var name) to the quota day
	// (YYYY-MM-DD) on which it ran out.
	QuotaExhaustedKeys map[string]string `json:"quota_exhausted_keys"`
	LastUpdated        string            `json:"last_updated,omitempty"`
}

// NewState returns an empty state with an allocated map.
func NewState() State {
	return State{QuotaExhaustedKeys: make(map[string]string)}
}

// StateStore persists rotation state between runs.
type StateStore interface {
	Load(ctx context.Context) (State, error)
	Save(ctx context.Context, state State) error
}

// FileStore keeps rotation state in a JSON file. A missing file is an
// empty state, not an error.
type FileStore struct {
	path string
}

// NewFileStore creates a file-backed state store at the given path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Load(_ context.Context) (State, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewState(), nil
		}
		return NewState(), fmt.Errorf("failed to read key state file: %w", err)
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		// A corrupt state file only costs us one day of quota memory.
		return NewState(), nil
	}
	if state.QuotaExhaustedKeys == nil {
		state.QuotaExhaustedKeys = make(map[string]string)
	}
	return state, nil
}

func (s *FileStore) Save(_ context.Context, state State) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create key state directory: %w", err)
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal key state: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write key state file: %w", err)
	}
	return os.Rename(tmp, s.path)
}
