package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/drift/pkg/core"
)

// definitionsFile is the YAML shape of an asset definitions file.
type definitionsFile struct {
	Tables   []tableDefinition   `yaml:"tables"`
	Segments []segmentDefinition `yaml:"segments"`
	Cards    []cardDefinition    `yaml:"cards"`
}

type tableDefinition struct {
	Table   string        `yaml:"table"`
	Columns []core.Column `yaml:"columns"`
}

type segmentDefinition struct {
	Name        string `yaml:"name"`
	Table       string `yaml:"table"`
	Predicate   string `yaml:"predicate"`
	Description string `yaml:"description"`
}

type cardDefinition struct {
	Name        string   `yaml:"name"`
	Table       string   `yaml:"table"`
	SQL         string   `yaml:"sql"`
	Metrics     []string `yaml:"metrics"`
	Dimensions  []string `yaml:"dimensions"`
	Description string   `yaml:"description"`
}

// ImportStats counts what an import touched.
type ImportStats struct {
	Tables   int
	Segments int
	Cards    int
}

// Add accumulates another import's counts.
func (s *ImportStats) Add(other ImportStats) {
	s.Tables += other.Tables
	s.Segments += other.Segments
	s.Cards += other.Cards
}

// ImportFile loads asset definitions from a YAML file into the catalog.
func (s *Store) ImportFile(path string) (ImportStats, error) {
	var stats ImportStats

	data, err := os.ReadFile(path)
	if err != nil {
		return stats, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var defs definitionsFile
	if err := yaml.Unmarshal(data, &defs); err != nil {
		return stats, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	for _, td := range defs.Tables {
		if td.Table == "" {
			return stats, fmt.Errorf("%s: table definition needs a table name", path)
		}
		if err := s.UpsertTable(parseTableRef(td.Table), td.Columns); err != nil {
			return stats, fmt.Errorf("%s: %w", path, err)
		}
		stats.Tables++
	}

	for _, sd := range defs.Segments {
		seg := &Segment{
			Name:        sd.Name,
			Table:       parseTableRef(sd.Table),
			Predicate:   sd.Predicate,
			Description: sd.Description,
		}
		if err := s.SaveSegment(seg); err != nil {
			return stats, fmt.Errorf("%s: %w", path, err)
		}
		stats.Segments++
	}

	for _, cd := range defs.Cards {
		card := &Card{
			Name:        cd.Name,
			Table:       parseTableRef(cd.Table),
			Description: cd.Description,
			Query: core.QueryDef{
				SQL:        cd.SQL,
				Metrics:    cd.Metrics,
				Dimensions: cd.Dimensions,
			},
		}
		if err := s.SaveCard(card); err != nil {
			return stats, fmt.Errorf("%s: %w", path, err)
		}
		stats.Cards++
	}

	s.logger.Debug("definitions imported", "path", path,
		"tables", stats.Tables, "segments", stats.Segments, "cards", stats.Cards)
	return stats, nil
}

// ImportDir imports every .yaml and .yml file directly under dir, in name
// order.
func (s *Store) ImportDir(dir string) (ImportStats, error) {
	var stats ImportStats

	entries, err := os.ReadDir(dir)
	if err != nil {
		return stats, fmt.Errorf("failed to read %s: %w", dir, err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch filepath.Ext(entry.Name()) {
		case ".yaml", ".yml":
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(paths)

	for _, path := range paths {
		fileStats, err := s.ImportFile(path)
		if err != nil {
			return stats, err
		}
		stats.Add(fileStats)
	}
	return stats, nil
}
