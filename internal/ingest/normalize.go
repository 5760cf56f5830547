// Package ingest normalizes raw bank exports into the canonical transaction
// schema used by the tagging engine.
package ingest

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mpoirier/tagflow/internal/common"
	"github.com/mpoirier/tagflow/internal/model"
)

// Canonical field names after normalization.
const (
	fieldType     = "type"
	fieldDate     = "date"
	fieldVendor   = "vendor"
	fieldAmount   = "amount"
	fieldCurrency = "currency"
	fieldStatus   = "status"
)

// columnVariants maps known export header names (lowercased) to canonical
// fields. Exports arrive in at least two locale variants; both must yield an
// identical downstream schema.
var columnVariants = map[string]string{
	// English (Revolut-style) export
	"type":         fieldType,
	"started date": fieldDate,
	"description":  fieldVendor,
	"amount":       fieldAmount,
	"currency":     fieldCurrency,
	"state":        fieldStatus,
	// French export
	"date de début": fieldDate,
	"date de debut": fieldDate,
	"libellé":       fieldVendor,
	"libelle":       fieldVendor,
	"montant":       fieldAmount,
	"devise":        fieldCurrency,
	"état":          fieldStatus,
	"etat":          fieldStatus,
}

var requiredFields = []string{fieldType, fieldDate, fieldVendor, fieldAmount, fieldCurrency, fieldStatus}

// dateLayouts are tried in order when parsing export timestamps.
var dateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"02/01/2006 15:04:05",
	"02/01/2006",
}

var monthRe = regexp.MustCompile(`^\d{4}-\d{2}$`)

// Normalizer converts raw export files into expense rows ready for tagging.
type Normalizer struct{}

// NewNormalizer creates a new export normalizer.
func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// NormalizeCSV reads a raw CSV export, maps locale-variant headers onto the
// canonical schema and returns the expense rows (strictly negative amounts),
// sorted ascending by timestamp, each with an empty tag list and a fresh ID.
// A header that cannot be fully mapped is a SchemaError; nothing is ingested.
func (n *Normalizer) NormalizeCSV(ctx context.Context, r io.Reader, sourceName string) ([]model.Transaction, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header of %s: %w", sourceName, err)
	}

	index, missing := MapColumns(header)
	if len(missing) > 0 {
		return nil, &common.SchemaError{File: sourceName, Missing: missing}
	}

	month := MonthFromFilename(sourceName)

	var rows []model.Transaction
	var skipped int
	line := 1
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		line++
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s line %d: %w", sourceName, line, err)
		}

		tx, ok := n.convertRecord(rec, index, sourceName, line)
		if !ok {
			skipped++
			continue
		}
		if month != "" {
			tx.Month = month
		} else {
			tx.Month = tx.Date.Format("2006-01")
		}
		rows = append(rows, tx)
	}

	// Chronological order makes tagging easier to follow; it is a UX
	// requirement, not a correctness one.
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Date.Before(rows[j].Date)
	})

	slog.Info("normalized raw export",
		"file", sourceName,
		"expenses", len(rows),
		"skipped", skipped)

	return rows, nil
}

// convertRecord parses one raw record; only expenses survive.
func (n *Normalizer) convertRecord(rec []string, index Columns, sourceName string, line int) (model.Transaction, bool) {
	field := func(name string) string { return index.Field(rec, name) }

	amount, err := parseAmount(field(fieldAmount))
	if err != nil {
		slog.Warn("skipping row with unparsable amount",
			"file", sourceName, "line", line, "value", field(fieldAmount))
		return model.Transaction{}, false
	}
	if !amount.IsNegative() {
		return model.Transaction{}, false
	}

	date, err := parseDate(field(fieldDate))
	if err != nil {
		slog.Warn("skipping row with unparsable date",
			"file", sourceName, "line", line, "value", field(fieldDate))
		return model.Transaction{}, false
	}

	return model.Transaction{
		ID:        model.NewID(),
		Type:      field(fieldType),
		Date:      date,
		Vendor:    field(fieldVendor),
		Currency:  field(fieldCurrency),
		Status:    field(fieldStatus),
		Amount:    amount,
		AmountAbs: amount.Abs(),
		Tags:      []string{},
	}, true
}

// Columns maps canonical field names to their position in a raw record.
type Columns map[string]int

// Field extracts a canonical field from a raw record, trimmed.
func (c Columns) Field(rec []string, name string) string {
	i, ok := c[name]
	if !ok || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

// RecordKey builds the (date, amount, vendor) identity key of a raw record.
// The raw source and the in-memory table are different representations, so
// rows are matched by this triple rather than by identifier.
func (c Columns) RecordKey(rec []string) (string, bool) {
	amount, err := parseAmount(c.Field(rec, fieldAmount))
	if err != nil {
		return "", false
	}
	date, err := parseDate(c.Field(rec, fieldDate))
	if err != nil {
		return "", false
	}
	return rowKey(date, amount.String(), c.Field(rec, fieldVendor)), true
}

// TransactionKey builds the matching identity key for a normalized row.
func TransactionKey(t model.Transaction) string {
	return rowKey(t.Date, t.Amount.String(), t.Vendor)
}

func rowKey(date time.Time, amount, vendor string) string {
	return date.Format("2006-01-02 15:04:05") + "|" + amount + "|" + vendor
}

// MapColumns resolves export headers to canonical columns. Unknown columns
// are ignored; the missing list names canonical fields not found.
func MapColumns(header []string) (Columns, []string) {
	index := make(Columns, len(requiredFields))
	for i, col := range header {
		key := strings.ToLower(strings.TrimSpace(col))
		if canonical, ok := columnVariants[key]; ok {
			if _, dup := index[canonical]; !dup {
				index[canonical] = i
			}
		}
	}

	var missing []string
	for _, f := range requiredFields {
		if _, ok := index[f]; !ok {
			missing = append(missing, f)
		}
	}
	return index, missing
}

func parseDate(value string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", value)
}

// parseAmount accepts both dot and comma decimal separators.
func parseAmount(value string) (decimal.Decimal, error) {
	value = strings.ReplaceAll(value, " ", "")
	if strings.Contains(value, ",") && !strings.Contains(value, ".") {
		value = strings.ReplaceAll(value, ",", ".")
	}
	return decimal.NewFromString(value)
}

// MonthFromFilename extracts the period key from a raw file named like
// "2025-05.csv"; empty when the name carries no period.
func MonthFromFilename(name string) string {
	base := name
	if i := strings.LastIndexByte(base, '/'); i >= 0 {
		base = base[i+1:]
	}
	if i := strings.LastIndexByte(base, '.'); i >= 0 {
		base = base[:i]
	}
	if monthRe.MatchString(base) {
		return base
	}
	return ""
}
