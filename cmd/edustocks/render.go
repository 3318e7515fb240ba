package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/atharvakonge/edustocks/internal/models"
)

var (
	colorMuted   = lipgloss.Color("#858392")
	colorPrimary = lipgloss.Color("#6B50FF")
	colorSuccess = lipgloss.Color("#00FFB2")
	colorError   = lipgloss.Color("#E94090")
	colorWarning = lipgloss.Color("#FFD300")

	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)
	mutedStyle  = lipgloss.NewStyle().Foreground(colorMuted)
	upStyle     = lipgloss.NewStyle().Foreground(colorSuccess)
	downStyle   = lipgloss.NewStyle().Foreground(colorError)
	lockedStyle = lipgloss.NewStyle().Foreground(colorWarning)
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(mutedStyle).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

func money(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}

// signed colours a change green when non-negative and red otherwise
func signed(v float64, format string) string {
	s := fmt.Sprintf(format, v)
	if v >= 0 {
		return upStyle.Render("+" + s)
	}
	return downStyle.Render(s)
}

func stocksTable(stocks []models.Stock) string {
	t := newTable("Symbol", "Name", "Price", "Change", "Change %")
	for _, s := range stocks {
		t.Row(s.Symbol, s.Name, money(s.Price), signed(s.Change, "%.2f"), signed(s.ChangePercent, "%.2f%%"))
	}
	return t.Render()
}

func portfolioView(p *models.Portfolio) string {
	if p == nil {
		return mutedStyle.Render("Portfolio unavailable")
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", titleStyle.Render("Total value"), money(p.TotalValue))
	fmt.Fprintf(&b, "%s %s\n", titleStyle.Render("Cash"), money(p.Balance))
	if len(p.Holdings) == 0 {
		b.WriteString(mutedStyle.Render("No holdings yet"))
		return b.String()
	}
	t := newTable("Symbol", "Qty", "Avg price", "Price", "Value", "P/L", "P/L %")
	for _, h := range p.Holdings {
		t.Row(h.Symbol, fmt.Sprint(h.Quantity), money(h.AveragePrice), money(h.CurrentPrice),
			money(h.TotalValue), signed(h.Profit, "%.2f"), signed(h.ProfitPercent, "%.2f%%"))
	}
	b.WriteString(t.Render())
	return b.String()
}

// optionLetter maps 0..3 to A..D
func optionLetter(i int) string {
	return string(rune('A' + i))
}

// parseOption accepts a letter (A-D, any case) or a 1-based number.
func parseOption(s string, n int) (int, bool) {
	s = strings.TrimSpace(strings.ToUpper(s))
	if len(s) != 1 {
		return 0, false
	}
	var i int
	switch c := s[0]; {
	case c >= 'A' && c <= 'Z':
		i = int(c - 'A')
	case c >= '1' && c <= '9':
		i = int(c - '1')
	default:
		return 0, false
	}
	return i, i < n
}

func optionsView(options []string) string {
	var b strings.Builder
	for i, o := range options {
		fmt.Fprintf(&b, "  %s) %s\n", optionLetter(i), o)
	}
	return b.String()
}
