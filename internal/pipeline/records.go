package pipeline

import (
	"encoding/json"
	"os"
	"path/filepath"

	"trainnames/internal"
)

func WriteRecordsJSON(path string, records []internal.TrainRecord) error {
	if records == nil {
		records = []internal.TrainRecord{}
	}
	blob, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, blob, 0o644)
}

func ReadRecordsJSON(path string) ([]internal.TrainRecord, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var records []internal.TrainRecord
	if err := json.Unmarshal(blob, &records); err != nil {
		return nil, err
	}
	return records, nil
}
