package ingest

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpoirier/tagflow/internal/common"
)

const englishExport = `Type,Started Date,Description,Amount,Currency,State
CARD_PAYMENT,2024-03-02 09:15:00,CARREFOUR,-54.30,EUR,COMPLETED
TOPUP,2024-03-01 08:00:00,Payroll,2500.00,EUR,COMPLETED
CARD_PAYMENT,2024-03-01 12:30:00,BOULANGERIE,-3.50,EUR,COMPLETED
`

const frenchExport = `Type,Date de début,Libellé,Montant,Devise,État
CARD_PAYMENT,2024-03-02 09:15:00,CARREFOUR,"-54,30",EUR,COMPLETED
TOPUP,2024-03-01 08:00:00,Payroll,"2500,00",EUR,COMPLETED
CARD_PAYMENT,2024-03-01 12:30:00,BOULANGERIE,"-3,50",EUR,COMPLETED
`

func TestNormalizeCSVLocaleVariants(t *testing.T) {
	ctx := context.Background()
	n := NewNormalizer()

	en, err := n.NormalizeCSV(ctx, strings.NewReader(englishExport), "2024-03.csv")
	require.NoError(t, err)
	fr, err := n.NormalizeCSV(ctx, strings.NewReader(frenchExport), "2024-03.csv")
	require.NoError(t, err)

	require.Len(t, en, 2, "credits must be filtered out")
	require.Len(t, fr, 2, "both locale variants must yield the same rows")

	for i := range en {
		assert.Equal(t, en[i].Vendor, fr[i].Vendor)
		assert.True(t, en[i].Amount.Equal(fr[i].Amount), "amount mismatch at row %d", i)
		assert.Equal(t, en[i].Date, fr[i].Date)
	}
}

func TestNormalizeCSVSortsAndShapesRows(t *testing.T) {
	ctx := context.Background()
	rows, err := NewNormalizer().NormalizeCSV(ctx, strings.NewReader(englishExport), "2024-03.csv")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// Ascending by date regardless of file order.
	assert.Equal(t, "BOULANGERIE", rows[0].Vendor)
	assert.Equal(t, "CARREFOUR", rows[1].Vendor)

	for _, row := range rows {
		assert.NotEmpty(t, row.ID)
		assert.Equal(t, "2024-03", row.Month)
		assert.NotNil(t, row.Tags)
		assert.Empty(t, row.Tags)
		assert.True(t, row.Amount.IsNegative())
		assert.True(t, row.AmountAbs.IsPositive())
	}
	assert.NotEqual(t, rows[0].ID, rows[1].ID)
}

func TestNormalizeCSVMissingColumns(t *testing.T) {
	input := `Type,Description,Amount
CARD_PAYMENT,CARREFOUR,-54.30
`
	rows, err := NewNormalizer().NormalizeCSV(context.Background(), strings.NewReader(input), "broken.csv")
	require.Error(t, err)
	assert.Nil(t, rows, "nothing may be ingested on schema failure")

	var schemaErr *common.SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, "broken.csv", schemaErr.File)
	assert.Contains(t, schemaErr.Missing, "date")
	assert.Contains(t, schemaErr.Missing, "currency")
	assert.Contains(t, schemaErr.Missing, "status")
}

func TestNormalizeCSVSkipsMalformedRows(t *testing.T) {
	input := `Type,Started Date,Description,Amount,Currency,State
CARD_PAYMENT,2024-03-01 12:30:00,OK VENDOR,-10.00,EUR,COMPLETED
CARD_PAYMENT,not-a-date,BAD DATE,-5.00,EUR,COMPLETED
CARD_PAYMENT,2024-03-02 12:30:00,BAD AMOUNT,abc,EUR,COMPLETED
`
	rows, err := NewNormalizer().NormalizeCSV(context.Background(), strings.NewReader(input), "2024-03.csv")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "OK VENDOR", rows[0].Vendor)
}

func TestNormalizeCSVCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewNormalizer().NormalizeCSV(ctx, strings.NewReader(englishExport), "2024-03.csv")
	require.ErrorIs(t, err, context.Canceled)
}

func TestMonthFromFilename(t *testing.T) {
	tests := []struct {
		name string
		file string
		want string
	}{
		{name: "plain month file", file: "2024-03.csv", want: "2024-03"},
		{name: "month file with path", file: "/data/raw/2024-12.csv", want: "2024-12"},
		{name: "no month in name", file: "export.csv", want: ""},
		{name: "month not the whole stem", file: "export-2024-03.csv", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MonthFromFilename(tt.file))
		})
	}
}

func TestMapColumnsAccentlessFrenchHeaders(t *testing.T) {
	header := []string{"Type", "Date de debut", "Libelle", "Montant", "Devise", "Etat"}
	cols, missing := MapColumns(header)
	assert.Empty(t, missing)
	assert.Len(t, cols, 6)
}

func TestRecordKeyMatchesTransactionKey(t *testing.T) {
	ctx := context.Background()
	rows, err := NewNormalizer().NormalizeCSV(ctx, strings.NewReader(englishExport), "2024-03.csv")
	require.NoError(t, err)

	cols, missing := MapColumns([]string{"Type", "Started Date", "Description", "Amount", "Currency", "State"})
	require.Empty(t, missing)

	rec := []string{"CARD_PAYMENT", "2024-03-02 09:15:00", "CARREFOUR", "-54.30", "EUR", "COMPLETED"}
	key, ok := cols.RecordKey(rec)
	require.True(t, ok)
	assert.Equal(t, TransactionKey(rows[1]), key)

	// The comma-decimal form of the same row must produce the same key.
	frRec := []string{"CARD_PAYMENT", "2024-03-02 09:15:00", "CARREFOUR", "-54,30", "EUR", "COMPLETED"}
	frKey, ok := cols.RecordKey(frRec)
	require.True(t, ok)
	assert.Equal(t, key, frKey)
}
