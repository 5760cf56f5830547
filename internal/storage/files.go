// Package storage implements the flat-file store: raw exports awaiting
// tagging, the unified CSV store of tagged transactions and the JSON
// configuration tables.
package storage

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/mpoirier/tagflow/internal/config"
	"github.com/mpoirier/tagflow/internal/model"
)

// FileStore reads and writes the on-disk data layout. Files are read at
// command start and written at command end; there is no locking, and
// concurrent multi-user access is out of scope.
type FileStore struct {
	layout config.Layout
}

// NewFileStore creates a store over the given layout, creating the raw and
// config directories when missing.
func NewFileStore(layout config.Layout) (*FileStore, error) {
	if layout.DataDir == "" {
		return nil, fmt.Errorf("data directory cannot be empty")
	}
	for _, dir := range []string{layout.RawDir, layout.ConfigDir} {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return &FileStore{layout: layout}, nil
}

// Layout returns the store's on-disk layout.
func (s *FileStore) Layout() config.Layout { return s.layout }

// RawPath returns the full path of a raw export file.
func (s *FileStore) RawPath(name string) string {
	return filepath.Join(s.layout.RawDir, filepath.Base(name))
}

// RawFileInfo describes one raw export available for tagging.
type RawFileInfo struct {
	Modified time.Time
	Name     string
	Size     int64
	Rows     int // Data rows, header excluded
}

// ListRawFiles lists raw CSV exports, newest first.
func (s *FileStore) ListRawFiles() ([]RawFileInfo, error) {
	entries, err := os.ReadDir(s.layout.RawDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list raw files: %w", err)
	}

	var files []RawFileInfo
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".csv" {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, RawFileInfo{
			Name:     entry.Name(),
			Size:     info.Size(),
			Modified: info.ModTime(),
			Rows:     s.countRawRows(entry.Name()),
		})
	}
	sort.Slice(files, func(i, j int) bool {
		return files[i].Modified.After(files[j].Modified)
	})
	return files, nil
}

func (s *FileStore) countRawRows(name string) int {
	f, err := os.Open(s.RawPath(name))
	if err != nil {
		return 0
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows := -1 // header
	for {
		if _, err := r.Read(); err != nil {
			break
		}
		rows++
	}
	if rows < 0 {
		return 0
	}
	return rows
}

// rawHeader is the column set raw exports are rewritten with on import.
// Incoming files may use locale header variants; once inside the raw
// directory every file carries this one schema.
var rawHeader = []string{"Type", "Started Date", "Description", "Amount", "Currency", "State"}

// WriteRawCSV writes normalized rows back out as a raw export awaiting
// tagging. Returns the file name inside the raw directory.
func (s *FileStore) WriteRawCSV(name string, rows []model.Transaction) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(rawHeader); err != nil {
		return "", fmt.Errorf("failed to write raw header: %w", err)
	}
	for _, t := range rows {
		rec := []string{
			t.Type,
			t.Date.Format("2006-01-02 15:04:05"),
			t.Vendor,
			t.Amount.String(),
			t.Currency,
			t.Status,
		}
		if err := w.Write(rec); err != nil {
			return "", fmt.Errorf("failed to write raw row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("failed to flush raw file: %w", err)
	}

	base := filepath.Base(name)
	if ext := filepath.Ext(base); ext != ".csv" {
		base = base[:len(base)-len(ext)] + ".csv"
	}
	if err := writeFileAtomic(s.RawPath(base), buf.Bytes()); err != nil {
		return "", err
	}
	return base, nil
}

// writeFileAtomic writes data through a temp file and rename so a crash
// mid-write never leaves a half-written file behind.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
