package seed

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"trainnames/internal"
)

// DefaultClasses are the ICE classes the sources cover.
var DefaultClasses = []internal.ClassRecord{
	{ID: 401, Name: "ICE 1"},
	{ID: 402, Name: "ICE 2"},
	{ID: 411, Name: "ICE T"},
	{ID: 415, Name: "ICE T"},
	{ID: 605, Name: "ICE TD"},
	{ID: 403, Name: "ICE 3"},
	{ID: 406, Name: "ICE 3M"},
	{ID: 407, Name: "ICE 3"},
	{ID: 412, Name: "ICE 4"},
	{ID: 408, Name: "ICE 3neo"},
	{ID: 105, Name: "ICE L"},
	{ID: 4011, Name: "ICE T"},
}

type classFile struct {
	Classes []internal.ClassRecord `yaml:"classes"`
}

// LoadClasses reads a class list from YAML. An empty path yields DefaultClasses.
func LoadClasses(path string) ([]internal.ClassRecord, error) {
	if path == "" {
		return DefaultClasses, nil
	}

	blob, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var file classFile
	if err := yaml.Unmarshal(blob, &file); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	for _, c := range file.Classes {
		if c.ID <= 0 || c.Name == "" {
			return nil, fmt.Errorf("parse %s: invalid class entry id=%d name=%q", path, c.ID, c.Name)
		}
	}
	return file.Classes, nil
}

func (s *Service) SeedClasses(classes []internal.ClassRecord) error {
	if err := s.db.UpsertClasses(classes); err != nil {
		return fmt.Errorf("upsert classes: %w", err)
	}
	s.log.Info("classes seeded", zap.Int("classes", len(classes)))
	return nil
}
