package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const metadataFileName = "metadata.json"

// Metadata is the slice of the engine's per-project metadata file this layer
// cares about: the configured interval and the most recent backup time.
type Metadata struct {
	IntervalMinutes int
	LastBackupAt    time.Time
}

type metadataFile struct {
	IntervalMinutes int            `json:"interval_minutes"`
	Backups         []backupRecord `json:"backups"`
}

type backupRecord struct {
	Timestamp   flexTime `json:"timestamp"`
	Description string   `json:"description"`
}

// flexTime accepts both epoch numbers and timestamp strings; the engine has
// written both shapes across versions.
type flexTime struct {
	time.Time
}

func (t *flexTime) UnmarshalJSON(data []byte) error {
	var epoch float64
	if err := json.Unmarshal(data, &epoch); err == nil {
		sec := int64(epoch)
		nsec := int64((epoch - float64(sec)) * float64(time.Second))
		t.Time = time.Unix(sec, nsec)
		return nil
	}

	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for _, layout := range append([]string{time.RFC3339Nano}, startedAtLayouts...) {
		if ts, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			t.Time = ts
			return nil
		}
	}
	return fmt.Errorf("unrecognized timestamp %q", raw)
}

// ReadMetadata reads the engine's metadata file under
// projectPath/stateDirName. The file belongs to the engine; callers treat a
// returned error as "no fresher values", never as fatal.
func ReadMetadata(projectPath, stateDirName string) (*Metadata, error) {
	if stateDirName == "" {
		stateDirName = DefaultStateDirName
	}

	data, err := os.ReadFile(filepath.Join(projectPath, stateDirName, metadataFileName))
	if err != nil {
		return nil, err
	}

	var file metadataFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("malformed metadata: %w", err)
	}

	meta := &Metadata{IntervalMinutes: file.IntervalMinutes}
	for _, rec := range file.Backups {
		if rec.Timestamp.After(meta.LastBackupAt) {
			meta.LastBackupAt = rec.Timestamp.Time
		}
	}
	return meta, nil
}
