package release

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// journalFile lives in the temporary area while a run is in flight.
const journalFile = ".sdkbuild-journal.json"

// journal records the state of a packaging run.
type journal struct {
	RunID    string    `json:"run_id"`
	Version  string    `json:"version"`
	Platform string    `json:"platform"`
	Started  time.Time `json:"started"`
	Updated  time.Time `json:"updated"`
}

func loadJournal(dir string) (*journal, error) {
	data, err := os.ReadFile(filepath.Join(dir, journalFile))
	if err != nil {
		return nil, err
	}
	var j journal
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, err
	}
	return &j, nil
}

func saveJournal(dir string, j *journal) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(j, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, journalFile), data, 0o644)
}

func removeJournal(dir string) error {
	err := os.Remove(filepath.Join(dir, journalFile))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
