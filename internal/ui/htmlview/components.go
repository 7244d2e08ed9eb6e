// Package htmlview renders the dashboard as server-side HTML. Components are pure
// functions of their input and never perform I/O besides writing to w.
package htmlview

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/vadiminshakov/marti-dashboard/internal/dashboard"
	"github.com/vadiminshakov/marti-dashboard/internal/domain"
	"github.com/vadiminshakov/marti-dashboard/internal/format"
)

const (
	chartWidth   = 640
	chartHeight  = 300
	chartPadding = 40
)

var templates = template.Must(template.New("dashboard").Parse(summaryTmpl + chartTmpl + tableTmpl + pageTmpl))

type summaryModel struct {
	TotalValue  string
	CashBalance string
	ProfitLoss  string
	PLClass     string
}

type chartPointModel struct {
	X, Y  float64
	Title string
}

type chartModel struct {
	Empty     bool
	EmptyText string
	Width     int
	Height    int
	Points    string
	Dots      []chartPointModel
	ZeroY     float64
	MaxLabel  string
	MinLabel  string
	FirstX    string
	LastX     string
	Left      int
	Right     int
	Bottom    int
}

type rowModel struct {
	ID         int64
	Timestamp  string
	Symbol     string
	Side       string
	SideClass  string
	Price      string
	Quantity   string
	ProfitLoss string
	PLClass    string
}

type tableModel struct {
	Empty     bool
	EmptyText string
	Rows      []rowModel
}

// PortfolioSummary renders total value, cash balance and profit/loss.
// A nil portfolio renders nothing.
func PortfolioSummary(w io.Writer, p *domain.Portfolio, currency string) error {
	if p == nil {
		return nil
	}
	return execute(w, "summary", newSummaryModel(*p, currency))
}

// ProfitChart renders points as a line plot, or the empty-state text.
func ProfitChart(w io.Writer, points []domain.ChartPoint) error {
	return execute(w, "chart", newChartModel(points))
}

// TradeTable renders one row per trade, or the empty-state text.
func TradeTable(w io.Writer, trades []domain.Trade, currency string, loc *time.Location) error {
	return execute(w, "table", newTableModel(trades, currency, loc))
}

func execute(w io.Writer, name string, data any) error {
	if err := templates.ExecuteTemplate(w, name, data); err != nil {
		return errors.Wrapf(err, "render %s", name)
	}
	return nil
}

func newSummaryModel(p domain.Portfolio, currency string) summaryModel {
	return summaryModel{
		TotalValue:  format.Currency(p.TotalValue, currency),
		CashBalance: format.Currency(p.CashBalance, currency),
		ProfitLoss:  format.Currency(p.ProfitLoss, currency),
		PLClass:     format.SignClass(p.ProfitLoss),
	}
}

func newTableModel(trades []domain.Trade, currency string, loc *time.Location) tableModel {
	if len(trades) == 0 {
		return tableModel{Empty: true, EmptyText: dashboard.EmptyTradesText}
	}
	rows := make([]rowModel, 0, len(trades))
	for _, t := range trades {
		rows = append(rows, rowModel{
			ID:         t.ID,
			Timestamp:  format.DateTime(t.Timestamp, loc),
			Symbol:     t.Symbol,
			Side:       t.Side.Upper(),
			SideClass:  format.SideClass(t.Side),
			Price:      format.Currency(t.Price, currency),
			Quantity:   format.Quantity(t.Quantity),
			ProfitLoss: format.Currency(t.ProfitLoss, currency),
			PLClass:    format.SignClass(t.ProfitLoss),
		})
	}
	return tableModel{Rows: rows}
}

func newChartModel(points []domain.ChartPoint) chartModel {
	if len(points) == 0 {
		return chartModel{Empty: true, EmptyText: dashboard.EmptyChartText}
	}

	// the value axis always includes zero so the sign of every point is visible
	minV, maxV := decimal.Zero, decimal.Zero
	for _, p := range points {
		minV = decimal.Min(minV, p.Value)
		maxV = decimal.Max(maxV, p.Value)
	}
	lo, hi := minV.InexactFloat64(), maxV.InexactFloat64()
	if hi == lo {
		hi = lo + 1
	}

	plotW := float64(chartWidth - 2*chartPadding)
	plotH := float64(chartHeight - 2*chartPadding)
	y := func(v float64) float64 {
		return float64(chartPadding) + (hi-v)/(hi-lo)*plotH
	}

	m := chartModel{
		Width:    chartWidth,
		Height:   chartHeight,
		ZeroY:    y(0),
		MaxLabel: maxV.StringFixed(2),
		MinLabel: minV.StringFixed(2),
		FirstX:   points[0].Label,
		LastX:    points[len(points)-1].Label,
		Left:     chartPadding,
		Right:    chartWidth - chartPadding,
		Bottom:   chartHeight - chartPadding,
	}

	var coords []byte
	for i, p := range points {
		x := float64(chartPadding) + plotW/2
		if len(points) > 1 {
			x = float64(chartPadding) + float64(i)*plotW/float64(len(points)-1)
		}
		py := y(p.Value.InexactFloat64())
		if i > 0 {
			coords = append(coords, ' ')
		}
		coords = fmt.Appendf(coords, "%.1f,%.1f", x, py)
		m.Dots = append(m.Dots, chartPointModel{X: x, Y: py, Title: fmt.Sprintf("%s: %s", p.Label, p.Value.String())})
	}
	m.Points = string(coords)
	return m
}

const summaryTmpl = `{{define "summary"}}<div class="summary">
  <div class="card"><h3>Total Portfolio Value</h3><p class="value total">{{.TotalValue}}</p></div>
  <div class="card"><h3>Cash Balance</h3><p class="value cash">{{.CashBalance}}</p></div>
  <div class="card"><h3>Overall Profit/Loss</h3><p class="value {{.PLClass}}">{{.ProfitLoss}}</p></div>
</div>{{end}}`

const chartTmpl = `{{define "chart"}}{{if .Empty}}<p class="empty">{{.EmptyText}}</p>{{else}}<svg class="chart" viewBox="0 0 {{.Width}} {{.Height}}" role="img" aria-label="Profit/Loss Over Time">
  <line class="axis" x1="{{.Left}}" y1="{{.Bottom}}" x2="{{.Right}}" y2="{{.Bottom}}"/>
  <line class="zero" x1="{{.Left}}" y1="{{printf "%.1f" .ZeroY}}" x2="{{.Right}}" y2="{{printf "%.1f" .ZeroY}}"/>
  <text class="tick" x="4" y="{{.Left}}">{{.MaxLabel}}</text>
  <text class="tick" x="4" y="{{.Bottom}}">{{.MinLabel}}</text>
  <text class="tick" x="{{.Left}}" y="{{.Height}}">{{.FirstX}}</text>
  <text class="tick end" x="{{.Right}}" y="{{.Height}}">{{.LastX}}</text>
  <polyline class="line" fill="none" points="{{.Points}}"/>
  {{range .Dots}}<circle class="dot" cx="{{printf "%.1f" .X}}" cy="{{printf "%.1f" .Y}}" r="4"><title>{{.Title}}</title></circle>
  {{end}}</svg>{{end}}{{end}}`

const tableTmpl = `{{define "table"}}{{if .Empty}}<p class="empty">{{.EmptyText}}</p>{{else}}<table class="trades">
  <thead><tr><th>Timestamp</th><th>Symbol</th><th>Side</th><th>Price</th><th>Quantity</th><th>P/L</th></tr></thead>
  <tbody>
  {{range .Rows}}<tr data-id="{{.ID}}"><td>{{.Timestamp}}</td><td>{{.Symbol}}</td><td class="{{.SideClass}}">{{.Side}}</td><td>{{.Price}}</td><td>{{.Quantity}}</td><td class="{{.PLClass}}">{{.ProfitLoss}}</td></tr>
  {{end}}</tbody>
</table>{{end}}{{end}}`
