package report

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChartRender(t *testing.T) {
	c := Chart{
		Title: "Spending by category",
		Data: []Entry{
			{Label: "logement", Amount: decimal.RequireFromString("800.00")},
			{Label: "alimentation", Amount: decimal.RequireFromString("74.30")},
		},
	}

	out := c.Render(60)
	lines := strings.Split(out, "\n")
	assert.Len(t, lines, 3)
	assert.Contains(t, lines[0], "Spending by category")
	assert.Contains(t, lines[1], "800.00")
	assert.Contains(t, lines[2], "74.30")
	assert.Contains(t, out, "█")

	// A proportionally smaller amount draws a shorter bar, never an empty one.
	assert.Greater(t,
		strings.Count(lines[1], "█"),
		strings.Count(lines[2], "█"))
	assert.GreaterOrEqual(t, strings.Count(lines[2], "█"), 1)
}

func TestChartRenderEmpty(t *testing.T) {
	out := Chart{Title: "Empty"}.Render(40)
	assert.Contains(t, out, "(no data)")
}

func TestChartRenderAlignsAccentedLabels(t *testing.T) {
	c := Chart{
		Title: "Par catégorie",
		Data: []Entry{
			{Label: "Santé", Amount: decimal.RequireFromString("120.00")},
			{Label: "Autre", Amount: decimal.RequireFromString("60.00")},
			{Label: "Éducation", Amount: decimal.RequireFromString("30.00")},
		},
	}

	lines := strings.Split(c.Render(60), "\n")
	require.Len(t, lines, 4)

	// Bars start in the same display column regardless of multi-byte runes
	// in the labels.
	barCol := func(line string) int {
		i := strings.Index(line, "█")
		require.GreaterOrEqual(t, i, 0)
		return utf8.RuneCountInString(line[:i])
	}
	col := barCol(lines[1])
	assert.Equal(t, col, barCol(lines[2]))
	assert.Equal(t, col, barCol(lines[3]))
}

func TestChartRenderZeroAmounts(t *testing.T) {
	c := Chart{
		Title: "Zeroes",
		Data:  []Entry{{Label: "rien", Amount: decimal.Zero}},
	}
	assert.NotPanics(t, func() { c.Render(40) })
}
