package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/qstep/qsee/core"
)

// callLog is the JSON file holding finished calls per connection. Results
// themselves stay in the archive.
type callLog struct {
	path string
}

func (l callLog) load() (map[core.ConnectionID][]*core.Call, error) {
	b, err := os.ReadFile(l.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("os.ReadFile: %w", err)
	}

	var store map[core.ConnectionID][]*core.Call
	if err := json.Unmarshal(b, &store); err != nil {
		return nil, fmt.Errorf("json.Unmarshal: %w", err)
	}

	return store, nil
}

func (l callLog) save(store map[core.ConnectionID][]*core.Call) error {
	b, err := json.MarshalIndent(store, "", "  ")
	if err != nil {
		return fmt.Errorf("json.MarshalIndent: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("os.MkdirAll: %w", err)
	}

	// replace atomically, a crash must not truncate the history
	tmp := l.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("os.WriteFile: %w", err)
	}
	if err := os.Rename(tmp, l.path); err != nil {
		return fmt.Errorf("os.Rename: %w", err)
	}

	return nil
}
