package storage

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/mpoirier/tagflow/internal/ingest"
	"github.com/mpoirier/tagflow/internal/model"
)

// SavePartial appends the currently-tagged rows to the unified store and
// removes them from the raw export, leaving untagged rows in place for a
// future session. Raw rows are matched by (date, amount, vendor) triple,
// once per saved row. Returns the number of rows saved.
func (s *FileStore) SavePartial(ctx context.Context, rows []model.Transaction, rawName string) (int, error) {
	var tagged []model.Transaction
	for i := range rows {
		if rows[i].Tagged() {
			tagged = append(tagged, rows[i])
		}
	}
	if len(tagged) == 0 {
		return 0, nil
	}

	if err := s.AppendToStore(ctx, tagged); err != nil {
		return 0, err
	}
	if err := s.removeFromRaw(rawName, tagged); err != nil {
		return 0, err
	}

	slog.Info("saved tagging progress", "file", rawName, "rows", len(tagged))
	return len(tagged), nil
}

// FinishMonth writes every remaining row to the unified store regardless of
// tag state, marks the month completed and deletes the raw export. This is
// the only path that persists rows with an empty tag list.
func (s *FileStore) FinishMonth(ctx context.Context, rows []model.Transaction, rawName, month string) error {
	for i := range rows {
		if rows[i].Tags == nil {
			rows[i].Tags = []string{}
		}
	}
	if err := s.AppendToStore(ctx, rows); err != nil {
		return err
	}
	if err := s.MarkMonthCompleted(ctx, month); err != nil {
		return err
	}
	if err := os.Remove(s.RawPath(rawName)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear raw file: %w", err)
	}

	slog.Info("month completed", "month", month, "rows", len(rows))
	return nil
}

// removeFromRaw rewrites the raw export without the saved rows. Each saved
// row removes at most one matching raw record, so duplicate transactions
// within the triple survive until they are themselves tagged.
func (s *FileStore) removeFromRaw(rawName string, saved []model.Transaction) error {
	path := s.RawPath(rawName)
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open raw file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return fmt.Errorf("failed to read raw header: %w", err)
	}
	columns, missing := ingest.MapColumns(header)
	if len(missing) > 0 {
		return fmt.Errorf("raw file %s no longer matches a known schema: missing %v", rawName, missing)
	}

	remove := make(map[string]int, len(saved))
	for i := range saved {
		remove[ingest.TransactionKey(saved[i])]++
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write raw header: %w", err)
	}
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read raw file: %w", err)
		}
		if key, ok := columns.RecordKey(rec); ok && remove[key] > 0 {
			remove[key]--
			continue
		}
		if err := w.Write(rec); err != nil {
			return fmt.Errorf("failed to write raw row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to rewrite raw file: %w", err)
	}

	return writeFileAtomic(path, buf.Bytes())
}
