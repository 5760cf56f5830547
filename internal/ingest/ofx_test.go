package ingest

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleBankOFX = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20240315120000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<BANKMSGSRSV1>
<STMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<STMTRS>
<CURDEF>EUR
<BANKACCTFROM>
<BANKID>123456789
<ACCTID>1234567890
<ACCTTYPE>CHECKING
</BANKACCTFROM>
<BANKTRANLIST>
<DTSTART>20240301120000[0:GMT]
<DTEND>20240331120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240315120000[0:GMT]
<TRNAMT>-25.50
<FITID>2024031501
<NAME>CARREFOUR MARKET
</STMTTRN>
<STMTTRN>
<TRNTYPE>CREDIT
<DTPOSTED>20240320120000[0:GMT]
<TRNAMT>2500.00
<FITID>2024032001
<NAME>PAYROLL
</STMTTRN>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240310120000[0:GMT]
<TRNAMT>-80.00
<FITID>2024031001
<NAME>SNCF
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>1000.00
<DTASOF>20240331120000[0:GMT]
</LEDGERBAL>
</STMTRS>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>`

func TestNormalizeOFX(t *testing.T) {
	rows, err := NewNormalizer().NormalizeOFX(context.Background(), strings.NewReader(sampleBankOFX), "2024-03.ofx")
	require.NoError(t, err)
	require.Len(t, rows, 2, "credits are dropped")

	// Chronological order.
	assert.Equal(t, "SNCF", rows[0].Vendor)
	assert.Equal(t, "CARREFOUR MARKET", rows[1].Vendor)

	for _, row := range rows {
		assert.NotEmpty(t, row.ID)
		assert.Equal(t, "EUR", row.Currency)
		assert.Equal(t, "2024-03", row.Month)
		assert.True(t, row.Amount.IsNegative())
		assert.Empty(t, row.Tags)
		assert.NotNil(t, row.Tags)
	}
	assert.Equal(t, "-25.5", rows[1].Amount.String())
}

func TestNormalizeOFXInvalidContent(t *testing.T) {
	_, err := NewNormalizer().NormalizeOFX(context.Background(), strings.NewReader("not ofx at all"), "junk.ofx")
	assert.Error(t, err)
}

func TestPreprocessOFX(t *testing.T) {
	in := "  \n<OFX>\n<SEVERITY>Info</SEVERITY>\n<CODE\n</OFX>"
	out := preprocessOFX(in)
	assert.True(t, strings.HasPrefix(out, "<OFX>"))
	assert.Contains(t, out, "<SEVERITY>INFO</SEVERITY>")
	assert.Contains(t, out, "<CODE>")
}
