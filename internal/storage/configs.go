package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/mpoirier/tagflow/internal/config"
	"github.com/mpoirier/tagflow/internal/engine"
)

// CompletedMonths records which periods have been force-completed.
type CompletedMonths struct {
	Completed     []string `json:"completed"`
	LastCompleted string   `json:"last_completed"`
}

// Contains reports whether month has been completed.
func (c CompletedMonths) Contains(month string) bool {
	for _, m := range c.Completed {
		if m == month {
			return true
		}
	}
	return false
}

// LoadTagFrequencies reads the global tag usage table; a missing file yields
// an empty table.
func (s *FileStore) LoadTagFrequencies(ctx context.Context) (*engine.Counts, error) {
	counts := engine.NewCounts()
	if err := s.loadJSON(ctx, config.TagsFile, counts); err != nil {
		return nil, err
	}
	return counts, nil
}

// SaveTagFrequencies persists the global tag usage table.
func (s *FileStore) SaveTagFrequencies(ctx context.Context, counts *engine.Counts) error {
	return s.saveJSON(ctx, config.TagsFile, counts)
}

// LoadVendorTags reads the vendor association table; a missing file yields
// an empty table.
func (s *FileStore) LoadVendorTags(ctx context.Context) (*engine.VendorTable, error) {
	table := engine.NewVendorTable()
	if err := s.loadJSON(ctx, config.VendorTagsFile, table); err != nil {
		return nil, err
	}
	return table, nil
}

// SaveVendorTags persists the vendor association table.
func (s *FileStore) SaveVendorTags(ctx context.Context, table *engine.VendorTable) error {
	return s.saveJSON(ctx, config.VendorTagsFile, table)
}

// SaveUsageTables writes both frequency tables. Each file is written
// independently and atomically; a crash between the two writes can leave
// them inconsistent, which is accepted.
func (s *FileStore) SaveUsageTables(ctx context.Context, eng *engine.Engine) error {
	if err := s.SaveTagFrequencies(ctx, eng.Tags()); err != nil {
		return err
	}
	return s.SaveVendorTags(ctx, eng.VendorTags())
}

// LoadMainCategories reads the ordered list of primary category tags. The
// list is read-only configuration; the engine never mutates it.
func (s *FileStore) LoadMainCategories(ctx context.Context) ([]string, error) {
	var categories []string
	if err := s.loadJSON(ctx, config.MainCategoriesFile, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// LoadCompletedMonths reads the completed-months record; a missing file
// yields an empty record.
func (s *FileStore) LoadCompletedMonths(ctx context.Context) (CompletedMonths, error) {
	var months CompletedMonths
	if err := s.loadJSON(ctx, config.CompletedMonthsFile, &months); err != nil {
		return CompletedMonths{}, err
	}
	return months, nil
}

// MarkMonthCompleted records month as completed and persists the record.
func (s *FileStore) MarkMonthCompleted(ctx context.Context, month string) error {
	months, err := s.LoadCompletedMonths(ctx)
	if err != nil {
		return err
	}
	if !months.Contains(month) {
		months.Completed = append(months.Completed, month)
	}
	months.LastCompleted = month
	return s.saveJSON(ctx, config.CompletedMonthsFile, months)
}

func (s *FileStore) loadJSON(ctx context.Context, name string, v any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := os.ReadFile(s.layout.ConfigFile(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read %s: %w", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", name, err)
	}
	return nil
}

func (s *FileStore) saveJSON(ctx context.Context, name string, v any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", name, err)
	}
	return writeFileAtomic(s.layout.ConfigFile(name), append(data, '\n'))
}
