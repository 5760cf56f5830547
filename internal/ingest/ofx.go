package ingest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"

	"github.com/mpoirier/tagflow/internal/model"
)

// NormalizeOFX parses an OFX/QFX export and returns the same canonical
// expense rows as NormalizeCSV: debits only, chronological, untagged.
func (n *Normalizer) NormalizeOFX(ctx context.Context, r io.Reader, sourceName string) ([]model.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file %s: %w", sourceName, err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(preprocessOFX(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file %s: %w", sourceName, err)
	}

	currency := "EUR"
	var rows []model.Transaction

	collect := func(list *ofxgo.TransactionList, curdef string) {
		if list == nil {
			return
		}
		if curdef != "" {
			currency = curdef
		}
		for _, ofxTx := range list.Transactions {
			if tx, ok := convertOFXTransaction(ofxTx, currency); ok {
				rows = append(rows, tx)
			}
		}
	}

	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok {
			collect(stmt.BankTranList, stmt.CurDef.String())
		}
	}
	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok {
			collect(stmt.BankTranList, stmt.CurDef.String())
		}
	}

	month := MonthFromFilename(sourceName)
	for i := range rows {
		if month != "" {
			rows[i].Month = month
		} else {
			rows[i].Month = rows[i].Date.Format("2006-01")
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Date.Before(rows[j].Date)
	})

	slog.Info("normalized OFX export", "file", sourceName, "expenses", len(rows))
	return rows, nil
}

// convertOFXTransaction maps one OFX transaction to a canonical expense row.
// OFX uses negative amounts for debits; credits are dropped.
func convertOFXTransaction(ofxTx ofxgo.Transaction, currency string) (model.Transaction, bool) {
	amount, err := decimal.NewFromString(ofxTx.TrnAmt.FloatString(2))
	if err != nil || !amount.IsNegative() {
		return model.Transaction{}, false
	}

	return model.Transaction{
		ID:        model.NewID(),
		Type:      fmt.Sprintf("%v", ofxTx.TrnType),
		Date:      ofxTx.DtPosted.Time,
		Vendor:    ofxVendorName(ofxTx),
		Currency:  currency,
		Status:    "POSTED",
		Amount:    amount,
		AmountAbs: amount.Abs(),
		Tags:      []string{},
	}, true
}

// ofxVendorName picks the cleanest available vendor text.
func ofxVendorName(tx ofxgo.Transaction) string {
	if tx.Payee != nil && tx.Payee.Name != "" {
		return strings.TrimSpace(string(tx.Payee.Name))
	}
	name := strings.TrimSpace(string(tx.Name))
	if name == "" {
		name = strings.TrimSpace(string(tx.Memo))
	}
	return name
}

var ofxSeverityRe = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
var ofxOpenTagRe = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)

// preprocessOFX fixes common formatting defects in bank-issued OFX files:
// stray leading whitespace, mixed-case SEVERITY values and SGML-style tags
// missing their closing bracket.
func preprocessOFX(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")
	content = ofxSeverityRe.ReplaceAllStringFunc(content, strings.ToUpper)
	return ofxOpenTagRe.ReplaceAllString(content, "$1>")
}
