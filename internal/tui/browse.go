// Package tui provides a read-only terminal browser over a raw export:
// untagged vendors on the left, their transactions on the right. Tagging
// itself happens in the interactive CLI session; the browser never mutates.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mpoirier/tagflow/internal/engine"
	"github.com/mpoirier/tagflow/internal/model"
)

var (
	paneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#333")).
			Padding(0, 1)
	detailTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F2A65A"))
	dimStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
)

type vendorItem struct {
	summary engine.VendorSummary
}

func (i vendorItem) Title() string {
	if i.summary.Known {
		return "🟢 " + i.summary.Name
	}
	return i.summary.Name
}

func (i vendorItem) Description() string {
	return fmt.Sprintf("%s · %d transaction(s)", i.summary.Amount.StringFixed(2), i.summary.Count)
}

func (i vendorItem) FilterValue() string { return i.summary.Name }

// Model is the browser's bubbletea model.
type Model struct {
	engine *engine.Engine
	rows   []model.Transaction
	list   list.Model
	detail string
	width  int
	height int
}

// NewModel builds the browser over the given rows.
func NewModel(eng *engine.Engine, rows []model.Transaction) Model {
	vendors := eng.UntaggedVendors(rows)
	items := make([]list.Item, len(vendors))
	for i, v := range vendors {
		items[i] = vendorItem{summary: v}
	}

	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Untagged vendors"
	l.SetShowStatusBar(false)

	return Model{engine: eng, rows: rows, list: l}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd { return nil }

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "enter":
			if item, ok := m.list.SelectedItem().(vendorItem); ok {
				m.detail = m.renderDetail(item.summary.Name)
			}
			return m, nil
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width/2-4, msg.Height-4)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m Model) View() string {
	detail := m.detail
	if detail == "" {
		detail = dimStyle.Render("Select a vendor and press enter.")
	}
	left := paneStyle.Render(m.list.View())
	right := paneStyle.Width(m.width / 2).Render(detail)
	return lipgloss.JoinHorizontal(lipgloss.Top, left, right)
}

func (m Model) renderDetail(vendor string) string {
	details := m.engine.TransactionDetails(m.rows, []string{vendor})
	lines := []string{detailTitleStyle.Render(vendor)}
	for _, tx := range details.Transactions {
		lines = append(lines, fmt.Sprintf("%s  %10s",
			tx.Date.Format("2006-01-02"), tx.AmountAbs.StringFixed(2)))
	}
	if agg, ok := details.Summary[vendor]; ok {
		lines = append(lines, "", dimStyle.Render(fmt.Sprintf(
			"%d transaction(s), %s total", agg.Count, agg.Total.StringFixed(2))))
	}
	return strings.Join(lines, "\n")
}

// Run launches the browser and blocks until the user quits.
func Run(ctx context.Context, eng *engine.Engine, rows []model.Transaction) error {
	p := tea.NewProgram(NewModel(eng, rows), tea.WithContext(ctx), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("failed to run browser: %w", err)
	}
	return nil
}
