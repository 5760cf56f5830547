package storage

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mpoirier/tagflow/internal/model"
)

// storeHeader is the unified store schema: one row per transaction, tags
// serialized as a list literal.
var storeHeader = []string{"id", "type", "date", "vendor", "amount", "currency", "status", "month", "tags"}

const storeDateLayout = "2006-01-02 15:04:05"

// AppendToStore appends rows to the unified store file, writing the header
// when the file does not exist yet. The in-memory table is never rolled back
// on failure; the caller may simply retry the save.
func (s *FileStore) AppendToStore(ctx context.Context, rows []model.Transaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}

	_, statErr := os.Stat(s.layout.StoreFile)
	newFile := os.IsNotExist(statErr)

	f, err := os.OpenFile(s.layout.StoreFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o640)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if newFile {
		if err := w.Write(storeHeader); err != nil {
			return fmt.Errorf("failed to write store header: %w", err)
		}
	}
	for i := range rows {
		if err := w.Write(storeRecord(rows[i])); err != nil {
			return fmt.Errorf("failed to write store row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush store: %w", err)
	}

	slog.Debug("appended to unified store", "rows", len(rows))
	return nil
}

// LoadStore reads every transaction from the unified store. Tags are parsed
// exactly once here; downstream code only ever sees the typed list.
func (s *FileStore) LoadStore(ctx context.Context) ([]model.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(s.layout.StoreFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	if _, err := r.Read(); err != nil { // header
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read store header: %w", err)
	}

	var rows []model.Transaction
	line := 1
	for {
		line++
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read store line %d: %w", line, err)
		}
		tx, err := parseStoreRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("store line %d: %w", line, err)
		}
		rows = append(rows, tx)
	}

	slog.Debug("loaded unified store", "rows", len(rows))
	return rows, nil
}

func storeRecord(t model.Transaction) []string {
	return []string{
		t.ID,
		t.Type,
		t.Date.Format(storeDateLayout),
		t.Vendor,
		t.Amount.String(),
		t.Currency,
		t.Status,
		t.Month,
		model.FormatTags(t.Tags),
	}
}

func parseStoreRecord(rec []string) (model.Transaction, error) {
	if len(rec) < len(storeHeader) {
		return model.Transaction{}, fmt.Errorf("expected %d columns, got %d", len(storeHeader), len(rec))
	}
	date, err := time.Parse(storeDateLayout, rec[2])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("bad date %q: %w", rec[2], err)
	}
	amount, err := decimal.NewFromString(rec[4])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("bad amount %q: %w", rec[4], err)
	}

	id := rec[0]
	if id == "" {
		// Rows written before identifiers existed get one on load.
		id = model.NewID()
	}

	return model.Transaction{
		ID:        id,
		Type:      rec[1],
		Date:      date,
		Vendor:    rec[3],
		Amount:    amount,
		AmountAbs: amount.Abs(),
		Currency:  rec[5],
		Status:    rec[6],
		Month:     rec[7],
		Tags:      model.ParseTags(rec[8]),
	}, nil
}
