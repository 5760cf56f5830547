package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

var (
	chartTitleStyle = lipgloss.NewStyle().Bold(true)
	chartBarStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#4ECDC4"))
	chartLabelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#95E1D3"))
)

// Chart renders labeled amounts as a horizontal bar chart.
type Chart struct {
	Title string
	Data  []Entry
}

// Render draws the chart at the given total width.
func (c Chart) Render(width int) string {
	if width <= 0 {
		width = 80
	}
	if len(c.Data) == 0 {
		return c.Title + "\n(no data)"
	}

	labelWidth := 0
	maxAmount := decimal.Zero
	for _, e := range c.Data {
		if w := lipgloss.Width(e.Label); w > labelWidth {
			labelWidth = w
		}
		if e.Amount.GreaterThan(maxAmount) {
			maxAmount = e.Amount
		}
	}
	if maxAmount.IsZero() {
		maxAmount = decimal.NewFromInt(1)
	}

	barWidth := width - labelWidth - 14
	if barWidth < 8 {
		barWidth = 8
	}

	lines := []string{chartTitleStyle.Render(c.Title)}
	for _, e := range c.Data {
		ratio := e.Amount.Div(maxAmount).InexactFloat64()
		n := int(ratio * float64(barWidth))
		if n < 1 {
			n = 1
		}
		lines = append(lines, fmt.Sprintf("%s %s %s",
			chartLabelStyle.Render(padLabel(e.Label, labelWidth)),
			chartBarStyle.Render(strings.Repeat("█", n)),
			e.Amount.StringFixed(2)))
	}
	return strings.Join(lines, "\n")
}

// padLabel pads by display width, not byte length, so accented labels keep
// the bar column aligned.
func padLabel(label string, width int) string {
	if pad := width - lipgloss.Width(label); pad > 0 {
		return label + strings.Repeat(" ", pad)
	}
	return label
}
