package report

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpoirier/tagflow/internal/model"
)

var mainCategories = []string{"logement", "alimentation", "transport"}

func taggedTx(month, amount string, tags ...string) model.Transaction {
	amt := decimal.RequireFromString(amount)
	if tags == nil {
		tags = []string{}
	}
	return model.Transaction{
		ID:        model.NewID(),
		Date:      time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC),
		Vendor:    "VENDOR",
		Month:     month,
		Amount:    amt.Neg(),
		AmountAbs: amt,
		Tags:      tags,
	}
}

func entryAmount(t *testing.T, entries []Entry, label string) decimal.Decimal {
	t.Helper()
	for _, e := range entries {
		if e.Label == label {
			return e.Amount
		}
	}
	t.Fatalf("no entry labeled %q in %v", label, entries)
	return decimal.Zero
}

func TestCategoryBreakdown(t *testing.T) {
	r := NewReporter(mainCategories)
	rows := []model.Transaction{
		taggedTx("2024-03", "800.00", "logement", "loyer"),
		taggedTx("2024-03", "54.30", "alimentation", "courses"),
		taggedTx("2024-03", "20.00", "alimentation"),
		taggedTx("2024-03", "15.00", "cadeau"),
		taggedTx("2024-03", "9.99"),
		taggedTx("2024-02", "500.00", "logement"),
	}

	entries := r.CategoryBreakdown(rows, "2024-03")
	require.Len(t, entries, 4)
	assert.Equal(t, "logement", entries[0].Label, "largest first")
	assert.True(t, entryAmount(t, entries, "alimentation").Equal(decimal.RequireFromString("74.30")))
	assert.True(t, entryAmount(t, entries, model.CategoryOther).Equal(decimal.RequireFromString("15.00")))
	assert.True(t, entryAmount(t, entries, model.CategoryUntagged).Equal(decimal.RequireFromString("9.99")))

	all := r.CategoryBreakdown(rows, "")
	assert.True(t, entryAmount(t, all, "logement").Equal(decimal.RequireFromString("1300.00")), "empty month spans everything")
}

func TestSubtagBreakdown(t *testing.T) {
	r := NewReporter(mainCategories)
	rows := []model.Transaction{
		taggedTx("2024-03", "54.30", "alimentation", "courses"),
		taggedTx("2024-03", "30.00", "alimentation", "courses", "bio"),
		taggedTx("2024-03", "12.00", "alimentation", "resto"),
		taggedTx("2024-03", "800.00", "logement", "loyer"),
	}

	entries := r.SubtagBreakdown(rows, "2024-03", "alimentation")
	require.Len(t, entries, 3)
	assert.Equal(t, "courses", entries[0].Label)
	assert.True(t, entries[0].Amount.Equal(decimal.RequireFromString("84.30")))
	assert.True(t, entryAmount(t, entries, "bio").Equal(decimal.RequireFromString("30.00")))

	for _, e := range entries {
		assert.NotEqual(t, "alimentation", e.Label, "the main tag itself is excluded")
	}
}

func TestSubtagBreakdownSentinels(t *testing.T) {
	r := NewReporter(mainCategories)
	rows := []model.Transaction{taggedTx("2024-03", "10.00")}

	assert.Nil(t, r.SubtagBreakdown(rows, "2024-03", model.CategoryUntagged))
	assert.Nil(t, r.SubtagBreakdown(rows, "2024-03", model.CategoryOther))
}

func TestMonthlyTrend(t *testing.T) {
	r := NewReporter(mainCategories)
	rows := []model.Transaction{
		taggedTx("2024-03", "60.00", "alimentation"),
		taggedTx("2024-01", "40.00", "alimentation"),
		taggedTx("2024-02", "50.00", "alimentation"),
		taggedTx("2024-02", "800.00", "logement"),
	}

	entries := r.MonthlyTrend(rows, "alimentation")
	require.Len(t, entries, 3)
	assert.Equal(t, "2024-01", entries[0].Label, "chronological order")
	assert.Equal(t, "2024-02", entries[1].Label)
	assert.Equal(t, "2024-03", entries[2].Label)
	assert.True(t, entries[1].Amount.Equal(decimal.RequireFromString("50.00")))
}

func TestTimeseries(t *testing.T) {
	r := NewReporter(mainCategories)
	rows := []model.Transaction{
		taggedTx("2024-02", "100.00", "alimentation"),
		taggedTx("2024-02", "900.00", model.CategoryExceptional, "travaux"),
		taggedTx("2024-01", "80.00", "transport"),
	}

	series := r.Timeseries(rows)
	require.Len(t, series, 2)
	assert.Equal(t, "2024-01", series[0].Month)

	feb := series[1]
	assert.True(t, feb.Regular.Equal(decimal.RequireFromString("100.00")))
	assert.True(t, feb.Exceptional.Equal(decimal.RequireFromString("900.00")))
	assert.True(t, feb.Total.Equal(decimal.RequireFromString("1000.00")))
}
