package resilience

import (
	"encoding/json"
	"os"
	"path/filepath"
)

const circuitBreakerFile = "circuit-breakers.json"

// loadSnapshots reads a previously persisted breaker-state file. A missing
// file is not an error: every breaker simply starts Closed.
func loadSnapshots(stateDir string) (map[string]BreakerSnapshot, error) {
	path := filepath.Join(stateDir, circuitBreakerFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]BreakerSnapshot{}, nil
		}
		return nil, err
	}
	snapshots := map[string]BreakerSnapshot{}
	if err := json.Unmarshal(data, &snapshots); err != nil {
		return nil, err
	}
	return snapshots, nil
}

// saveSnapshots writes the current breaker states with a temp-file-then-
// rename so a crash mid-write never leaves a truncated state file.
func saveSnapshots(stateDir string, snapshots map[string]BreakerSnapshot) error {
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(snapshots, "", "  ")
	if err != nil {
		return err
	}
	path := filepath.Join(stateDir, circuitBreakerFile)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
