// Package termview renders the dashboard for a terminal.
package termview

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/shopspring/decimal"

	"github.com/vadiminshakov/marti-dashboard/internal/dashboard"
	"github.com/vadiminshakov/marti-dashboard/internal/domain"
	"github.com/vadiminshakov/marti-dashboard/internal/format"
)

var (
	green  = lipgloss.AdaptiveColor{Light: "#2F855A", Dark: "#48BB78"}
	red    = lipgloss.AdaptiveColor{Light: "#C53030", Dark: "#F56565"}
	accent = lipgloss.AdaptiveColor{Light: "#2B6CB0", Dark: "#63B3ED"}
	subtle = lipgloss.AdaptiveColor{Light: "#718096", Dark: "#A0AEC0"}

	titleStyle    = lipgloss.NewStyle().Foreground(accent).Bold(true).MarginBottom(1)
	sectionStyle  = lipgloss.NewStyle().Foreground(accent).Bold(true).MarginTop(1)
	labelStyle    = lipgloss.NewStyle().Foreground(subtle)
	mutedStyle    = lipgloss.NewStyle().Foreground(subtle).Italic(true)
	positiveStyle = lipgloss.NewStyle().Foreground(green).Bold(true)
	negativeStyle = lipgloss.NewStyle().Foreground(red).Bold(true)
	cashStyle     = lipgloss.NewStyle().Foreground(accent).Bold(true)
	errorStyle    = lipgloss.NewStyle().Foreground(red).Bold(true)
	cardStyle     = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(subtle).
			Padding(0, 2).
			MarginRight(1)
	cellStyle = lipgloss.NewStyle().Padding(0, 1)
)

var sparks = []rune("▁▂▃▄▅▆▇█")

// Options controls page level rendering.
type Options struct {
	Title    string
	Currency string
	Location *time.Location
}

func signStyle(v decimal.Decimal) lipgloss.Style {
	if format.SignClass(v) == format.ClassNegative {
		return negativeStyle
	}
	return positiveStyle
}

func sideStyle(s domain.Side) lipgloss.Style {
	if format.SideClass(s) == format.ClassBuy {
		return positiveStyle
	}
	return negativeStyle
}

// PortfolioSummary renders the three account metrics side by side.
// A nil portfolio renders an empty string.
func PortfolioSummary(p *domain.Portfolio, currency string) string {
	if p == nil {
		return ""
	}
	card := func(label string, value string, style lipgloss.Style) string {
		return cardStyle.Render(labelStyle.Render(label) + "\n" + style.Render(value))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		card("Total Portfolio Value", format.Currency(p.TotalValue, currency), positiveStyle),
		card("Cash Balance", format.Currency(p.CashBalance, currency), cashStyle),
		card("Overall Profit/Loss", format.Currency(p.ProfitLoss, currency), signStyle(p.ProfitLoss)),
	)
}

// ProfitChart renders points as a sparkline with the first and last labels.
func ProfitChart(points []domain.ChartPoint) string {
	if len(points) == 0 {
		return mutedStyle.Render(dashboard.EmptyChartText)
	}

	lo, hi := points[0].Value, points[0].Value
	for _, p := range points[1:] {
		lo = decimal.Min(lo, p.Value)
		hi = decimal.Max(hi, p.Value)
	}

	var line strings.Builder
	for _, p := range points {
		line.WriteString(signStyle(p.Value).Render(string(sparks[sparkLevel(p.Value, lo, hi)])))
	}

	first, last := points[0].Label, points[len(points)-1].Label
	axis := first
	if len(points) > 1 {
		axis = fmt.Sprintf("%s → %s", first, last)
	}
	scale := fmt.Sprintf("min %s  max %s", lo.StringFixed(2), hi.StringFixed(2))
	return line.String() + "\n" + labelStyle.Render(axis) + "\n" + labelStyle.Render(scale)
}

func sparkLevel(v, lo, hi decimal.Decimal) int {
	top := len(sparks) - 1
	if hi.Equal(lo) {
		return top / 2
	}
	ratio := v.Sub(lo).Div(hi.Sub(lo)).InexactFloat64()
	level := int(ratio*float64(top) + 0.5)
	if level < 0 {
		return 0
	}
	if level > top {
		return top
	}
	return level
}

// TradeTable renders one row per trade in the given order.
func TradeTable(trades []domain.Trade, currency string, loc *time.Location) string {
	if len(trades) == 0 {
		return mutedStyle.Render(dashboard.EmptyTradesText)
	}

	rows := make([][]string, 0, len(trades))
	for _, t := range trades {
		rows = append(rows, []string{
			format.DateTime(t.Timestamp, loc),
			t.Symbol,
			t.Side.Upper(),
			format.Currency(t.Price, currency),
			format.Quantity(t.Quantity),
			format.Currency(t.ProfitLoss, currency),
		})
	}

	const (
		sideCol = 2
		plCol   = 5
	)
	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(labelStyle).
		Headers("TIMESTAMP", "SYMBOL", "SIDE", "PRICE", "QUANTITY", "P/L").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return cellStyle.Foreground(subtle).Bold(true)
			}
			switch col {
			case sideCol:
				return cellStyle.Inherit(sideStyle(trades[row].Side))
			case plCol:
				return cellStyle.Inherit(signStyle(trades[row].ProfitLoss))
			}
			return cellStyle
		})
	return tbl.Render()
}

// Page renders the whole view for the current phase.
func Page(v dashboard.View, opts Options) string {
	if opts.Title == "" {
		opts.Title = dashboard.DefaultTitle
	}
	if opts.Currency == "" {
		opts.Currency = format.DefaultCurrency
	}

	switch v.Phase {
	case domain.PhaseError:
		return strings.Join([]string{
			errorStyle.Render("Error"),
			v.Message,
			labelStyle.Render(fmt.Sprintf("Make sure your backend server is running at %s.", v.BackendURL)),
		}, "\n") + "\n"
	case domain.PhaseReady:
	default:
		return labelStyle.Render(dashboard.LoadingText) + "\n"
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(opts.Title))
	b.WriteString("\n")
	if summary := PortfolioSummary(v.Portfolio, opts.Currency); summary != "" {
		b.WriteString(summary)
		b.WriteString("\n")
	}
	b.WriteString(sectionStyle.Render("Profit/Loss Over Time"))
	b.WriteString("\n")
	b.WriteString(ProfitChart(v.Chart))
	b.WriteString("\n")
	b.WriteString(sectionStyle.Render("Recent Trades"))
	b.WriteString("\n")
	b.WriteString(TradeTable(v.Trades, opts.Currency, opts.Location))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("Updated " + format.DateTime(v.UpdatedAt, opts.Location)))
	b.WriteString("\n")
	return b.String()
}
