package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transaction represents a single bank transaction from a raw export.
type Transaction struct {
	Date      time.Time
	ID        string
	Type      string
	Vendor    string // Raw vendor/description text from the export
	Currency  string
	Status    string
	Month     string // Period key, YYYY-MM
	Tags      []string
	Amount    decimal.Decimal // Signed; expenses are negative
	AmountAbs decimal.Decimal // Derived absolute value for display and aggregation
}

// NewID returns a fresh transaction identifier. IDs are assigned once at
// ingestion and stay stable across save/load cycles.
func NewID() string {
	return uuid.NewString()
}

// Tagged reports whether the transaction has at least one tag. An empty tag
// list means untagged; there are no partial states.
func (t *Transaction) Tagged() bool {
	return len(t.Tags) > 0
}

// Day returns the calendar day of the transaction, truncated to midnight UTC.
func (t *Transaction) Day() time.Time {
	return time.Date(t.Date.Year(), t.Date.Month(), t.Date.Day(), 0, 0, 0, 0, time.UTC)
}
